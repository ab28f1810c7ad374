// Package jikan queries the Jikan (MyAnimeList) REST API, the external
// metadata provider behind the tracker. Every response field is treated
// as optional; mapping.go applies the documented defaults in one place.
package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/anitrack/internal/ratelimit"
)

// Jikan's public ceiling is 3 requests per second.
const defaultRPS = 3

const userAgent = "anitrack/1.0"

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	limiter    *ratelimit.Limiter
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.jikan.moe/v4"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		limiter:    ratelimit.NewRPS(defaultRPS),
	}
}

// AnimeData is the shared data block returned by single and list endpoints.
type AnimeData struct {
	MalID         int     `json:"mal_id"`
	Title         string  `json:"title"`
	TitleEnglish  string  `json:"title_english"`
	TitleJapanese string  `json:"title_japanese"`
	Synopsis      string  `json:"synopsis"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	Episodes      int     `json:"episodes"`
	Score         float32 `json:"score"`
	Aired         struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"aired"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Studios []struct {
		Name string `json:"name"`
	} `json:"studios"`
	Images struct {
		JPG struct {
			ImageURL      string `json:"image_url"`
			LargeImageURL string `json:"large_image_url"`
		} `json:"jpg"`
	} `json:"images"`
}

type AnimeResponse struct {
	Data AnimeData `json:"data"`
}

type AnimeListResponse struct {
	Data       []AnimeData `json:"data"`
	Pagination struct {
		HasNextPage bool `json:"has_next_page"`
	} `json:"pagination"`
}

// GetAnime fetches one title by its MAL id.
func (c *Client) GetAnime(ctx context.Context, malID int) (*AnimeResponse, error) {
	if malID <= 0 {
		return nil, fmt.Errorf("malID required")
	}
	return getJSON[AnimeResponse](ctx, c, "/anime/"+strconv.Itoa(malID), 2<<20)
}

// Search queries Jikan for anime by title, most popular first.
func (c *Client) Search(ctx context.Context, q string, page, limit int) (*AnimeListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 25 {
		limit = 10
	}
	path := fmt.Sprintf("/anime?q=%s&page=%d&limit=%d&order_by=popularity&sort=asc",
		url.QueryEscape(q), page, limit)
	return getJSON[AnimeListResponse](ctx, c, path, 4<<20)
}

// getJSON performs one paced GET against the API and decodes the body
// into T. maxBody caps how much of the response is read.
func getJSON[T any](ctx context.Context, c *Client, path string, maxBody int64) (*T, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jikan: unexpected status %d: %s", resp.StatusCode, snippet(body))
	}

	out := new(T)
	if err := json.Unmarshal(body, out); err != nil {
		return nil, fmt.Errorf("jikan: decode: %w: %s", err, snippet(body))
	}
	return out, nil
}

// snippet truncates a response body for error messages.
func snippet(b []byte) string {
	const max = 200
	if len(b) > max {
		b = b[:max]
	}
	return string(b)
}
