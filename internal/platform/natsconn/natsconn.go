// Package natsconn dials the optional NATS server used for mutation
// events and cache invalidation. The rest of the process must keep
// working when NATS is absent, so callers skip Connect entirely when
// no URL is configured.
package natsconn

import (
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	clientName    = "anitrack"
	maxReconnects = 10
	reconnectWait = 2 * time.Second
)

// Connect dials url and logs connection state changes. The initial
// dial is fail-fast; reconnects after that are handled by the client.
func Connect(url string, log *zap.Logger) (*nats.Conn, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	nc, err := nats.Connect(url,
		nats.Name(clientName),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.RetryOnFailedConnect(false),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	return nc, nil
}
