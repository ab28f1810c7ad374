package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/example/anitrack/internal/catalog"
	"github.com/example/anitrack/internal/platform/api"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

// decodeJSON reads up to maxRequestBodyBytes from r.Body and decodes JSON into dst.
// On failure it writes a 400 response and returns false.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, rid string, dst *T) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(dst); err != nil {
		api.BadRequest(w, "INVALID_JSON", "Invalid JSON", rid, nil)
		return false
	}
	return true
}

// writeDomainError maps the catalog error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, rid string, err error) {
	kind := catalog.KindOf(err)
	switch kind {
	case catalog.KindNotFound:
		api.NotFound(w, string(kind), err.Error(), rid)
	case catalog.KindDuplicateKey, catalog.KindDuplicateNumber:
		api.Conflict(w, string(kind), err.Error(), rid, nil)
	case catalog.KindMissingField:
		api.BadRequest(w, string(kind), err.Error(), rid, nil)
	case catalog.KindProviderUnavailable:
		api.BadGateway(w, string(kind), err.Error(), rid)
	case catalog.KindPersistenceFailure:
		api.WriteError(w, http.StatusInternalServerError, string(kind), err.Error(), rid, nil)
	default:
		api.Internal(w, rid)
	}
}
