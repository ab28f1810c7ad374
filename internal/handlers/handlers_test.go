package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/anitrack/internal/catalog"
	"github.com/example/anitrack/internal/jikan"
	"github.com/example/anitrack/internal/metacache"
	"github.com/example/anitrack/internal/platform/httpserver"
	"github.com/example/anitrack/internal/store"
	"github.com/example/anitrack/internal/tracker"
)

type stubProvider struct{}

func (stubProvider) GetAnime(_ context.Context, malID int) (*jikan.AnimeResponse, error) {
	resp := &jikan.AnimeResponse{}
	resp.Data.MalID = malID
	resp.Data.Title = "Example Show"
	return resp, nil
}

func (stubProvider) Search(_ context.Context, q string, page, limit int) (*jikan.AnimeListResponse, error) {
	resp := &jikan.AnimeListResponse{}
	resp.Data = append(resp.Data, jikan.AnimeData{MalID: 101, Title: "Example Show"})
	return resp, nil
}

func newTestAPI(t *testing.T) chi.Router {
	t.Helper()
	st := store.New(t.TempDir(), true, nil)
	tr := tracker.New(tracker.Options{
		Anime:    catalog.NewAnimeRepo(st),
		Episodes: catalog.NewEpisodeRepo(st),
		Schedule: catalog.NewScheduleRepo(st),
		Provider: stubProvider{},
		Cache:    metacache.New(time.Minute, nil, ""),
	})
	if err := tr.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r)
	RegisterRoutes(r, tr)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestAddAnime_CreatedAndConflict(t *testing.T) {
	r := newTestAPI(t)

	rr := doJSON(t, r, http.MethodPost, "/v1/anime", `{"id":"101"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var entry catalog.AnimeEntry
	if err := json.Unmarshal(rr.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.Title != "Example Show" {
		t.Fatalf("expected provider title, got %q", entry.Title)
	}

	rr = doJSON(t, r, http.MethodPost, "/v1/anime", `{"id":"101"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", rr.Code)
	}
}

func TestAddEpisode_MissingLink(t *testing.T) {
	r := newTestAPI(t)
	doJSON(t, r, http.MethodPost, "/v1/anime", `{"id":"101"}`)

	rr := doJSON(t, r, http.MethodPost, "/v1/anime/101/episodes", `{"title":"no link"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestEpisodes_UntrackedAnime(t *testing.T) {
	r := newTestAPI(t)

	rr := doJSON(t, r, http.MethodPost, "/v1/anime/999/episodes", `{"link":"http://x"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestScenario_OverHTTP(t *testing.T) {
	r := newTestAPI(t)
	tmr := time.Now().UTC().AddDate(0, 0, 1).Format(catalog.DateLayout)

	// add anime 101
	if rr := doJSON(t, r, http.MethodPost, "/v1/anime", `{"id":"101"}`); rr.Code != http.StatusCreated {
		t.Fatalf("add anime: %d", rr.Code)
	}

	// add episode 1
	rr := doJSON(t, r, http.MethodPost, "/v1/anime/101/episodes", `{"number":1,"link":"http://x"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add episode: %d: %s", rr.Code, rr.Body.String())
	}
	var ep catalog.Episode
	_ = json.Unmarshal(rr.Body.Bytes(), &ep)
	if ep.Number != 1 || ep.Title != "Episode 1" {
		t.Fatalf("unexpected episode: %+v", ep)
	}

	// listing returns exactly that record
	rr = doJSON(t, r, http.MethodGet, "/v1/anime/101/episodes", "")
	var list struct {
		Episodes []catalog.Episode `json:"episodes"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &list)
	if len(list.Episodes) != 1 {
		t.Fatalf("expected 1 episode, got %+v", list)
	}

	// schedule it for tomorrow
	rr = doJSON(t, r, http.MethodPatch, "/v1/episodes/"+ep.ID, `{"releaseDate":"`+tmr+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("schedule episode: %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, r, http.MethodGet, "/v1/schedule", "")
	var sched struct {
		Scheduled []catalog.ScheduledRelease `json:"scheduled"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &sched)
	if len(sched.Scheduled) != 1 || sched.Scheduled[0].Type != catalog.ReleaseTypeEpisode || sched.Scheduled[0].AnimeID != "101" {
		t.Fatalf("unexpected schedule: %+v", sched.Scheduled)
	}

	// delete the anime; episodes and schedule must both empty out
	if rr := doJSON(t, r, http.MethodDelete, "/v1/anime/101", ""); rr.Code != http.StatusOK {
		t.Fatalf("delete anime: %d", rr.Code)
	}
	rr = doJSON(t, r, http.MethodGet, "/v1/anime/101/episodes", "")
	list.Episodes = nil
	_ = json.Unmarshal(rr.Body.Bytes(), &list)
	if rr.Code != http.StatusOK || len(list.Episodes) != 0 {
		t.Fatalf("expected empty episode array after delete, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, r, http.MethodGet, "/v1/schedule", "")
	sched.Scheduled = nil
	_ = json.Unmarshal(rr.Body.Bytes(), &sched)
	if len(sched.Scheduled) != 0 {
		t.Fatalf("expected empty schedule, got %+v", sched.Scheduled)
	}
}

func TestExportImport_OverHTTP(t *testing.T) {
	r := newTestAPI(t)
	doJSON(t, r, http.MethodPost, "/v1/anime", `{"id":"101"}`)
	doJSON(t, r, http.MethodPost, "/v1/anime/101/episodes", `{"link":"http://x"}`)

	rr := doJSON(t, r, http.MethodGet, "/v1/export", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export: %d", rr.Code)
	}
	exported := rr.Body.String()

	// import into a fresh instance
	r2 := newTestAPI(t)
	rr = doJSON(t, r2, http.MethodPost, "/v1/import", exported)
	if rr.Code != http.StatusOK {
		t.Fatalf("import: %d: %s", rr.Code, rr.Body.String())
	}
	var counts tracker.ImportCounts
	_ = json.Unmarshal(rr.Body.Bytes(), &counts)
	if counts.Anime != 1 || counts.Episodes != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestSearch_RequiresQuery(t *testing.T) {
	r := newTestAPI(t)

	if rr := doJSON(t, r, http.MethodGet, "/v1/search", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without q, got %d", rr.Code)
	}
	rr := doJSON(t, r, http.MethodGet, "/v1/search?q=bebop", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("search: %d", rr.Code)
	}
	var out struct {
		Results []jikan.Summary `json:"results"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	if len(out.Results) != 1 || out.Results[0].Title != "Example Show" {
		t.Fatalf("unexpected results: %+v", out.Results)
	}
}
