package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/voyagen/telehaven/internal/catalog"
	"github.com/voyagen/telehaven/internal/models"
	"github.com/voyagen/telehaven/internal/prefs"
	"github.com/voyagen/telehaven/internal/store"
	"github.com/voyagen/telehaven/internal/tracker"
)

const serverFeed = `[
  {"id": "news", "name": "World News", "description": "Global headlines",
   "language": ["English"], "category": "News", "image": "", "type": "hls",
   "videoLink": "https://stream.example.com/news.m3u8",
   "schedule": [{"time": "00:00", "program": "Rolling Coverage"}]},
  {"id": "cine", "name": "Cine Plus", "description": "Movies all day",
   "language": ["Spanish"], "category": "Movies", "image": "", "type": "youtube",
   "videoLink": "https://youtu.be/x", "schedule": []}
]`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(serverFeed))
	}))
	t.Cleanup(feed.Close)

	cat := catalog.New(feed.URL, "", 5*time.Second)
	if _, err := cat.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	kv := store.NewMemory()
	tr := tracker.New(kv, zerolog.Nop())
	tr.Load(context.Background())
	pf := prefs.New(kv, zerolog.Nop())
	pf.Load(context.Background())
	return New(cat, tr, pf, nil, "0", zerolog.Nop())
}

func doJSON(t *testing.T, s *Server, method, path, body string, wantStatus int, out any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d (%s)", method, path, wantStatus, rec.Code, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
}

func TestListChannelsWithCriteria(t *testing.T) {
	s := newTestServer(t)

	var all []models.Channel
	doJSON(t, s, http.MethodGet, "/api/channels", "", http.StatusOK, &all)
	if len(all) != 2 {
		t.Fatalf("expected full catalog, got %d", len(all))
	}

	var filtered []models.Channel
	doJSON(t, s, http.MethodGet, "/api/channels?search=movies&language=Spanish", "", http.StatusOK, &filtered)
	if len(filtered) != 1 || filtered[0].ID != "cine" {
		t.Fatalf("expected only cine, got %v", filtered)
	}

	var none []models.Channel
	doJSON(t, s, http.MethodGet, "/api/channels?category=Sports", "", http.StatusOK, &none)
	if len(none) != 0 {
		t.Fatalf("expected empty result, got %v", none)
	}
}

func TestGetChannel(t *testing.T) {
	s := newTestServer(t)
	var ch models.Channel
	doJSON(t, s, http.MethodGet, "/api/channels/news", "", http.StatusOK, &ch)
	if ch.Name != "World News" {
		t.Fatalf("unexpected channel: %+v", ch)
	}
	doJSON(t, s, http.MethodGet, "/api/channels/ghost", "", http.StatusNotFound, nil)
}

func TestCurrentProgramEndpoint(t *testing.T) {
	s := newTestServer(t)
	var resp struct {
		ChannelID string              `json:"channelId"`
		Program   *models.ProgramSlot `json:"program"`
	}
	// The news schedule starts at 00:00, so some slot is always active.
	doJSON(t, s, http.MethodGet, "/api/channels/news/now", "", http.StatusOK, &resp)
	if resp.Program == nil || resp.Program.Program != "Rolling Coverage" {
		t.Fatalf("expected rolling coverage, got %+v", resp.Program)
	}
	// An empty schedule resolves to no program, not an error.
	doJSON(t, s, http.MethodGet, "/api/channels/cine/now", "", http.StatusOK, &resp)
	if resp.Program != nil {
		t.Fatalf("expected null program, got %+v", resp.Program)
	}
}

func TestWatchRecordsRecency(t *testing.T) {
	s := newTestServer(t)
	var resp struct {
		Channel models.Channel `json:"channel"`
	}
	doJSON(t, s, http.MethodPost, "/api/channels/cine/watch", "", http.StatusOK, &resp)
	if resp.Channel.VideoLink == "" {
		t.Fatal("watch response should carry the playback link")
	}
	doJSON(t, s, http.MethodPost, "/api/channels/news/watch", "", http.StatusOK, nil)

	var recent []models.Channel
	doJSON(t, s, http.MethodGet, "/api/recent", "", http.StatusOK, &recent)
	if len(recent) != 2 || recent[0].ID != "news" || recent[1].ID != "cine" {
		t.Fatalf("expected most-recent-first [news cine], got %v", recent)
	}
	doJSON(t, s, http.MethodPost, "/api/channels/ghost/watch", "", http.StatusNotFound, nil)
}

func TestFavoriteToggle(t *testing.T) {
	s := newTestServer(t)
	var resp map[string]bool
	doJSON(t, s, http.MethodPost, "/api/channels/news/favorite", "", http.StatusOK, &resp)
	if !resp["favorite"] {
		t.Fatal("first toggle should favorite the channel")
	}

	var favs []models.Channel
	doJSON(t, s, http.MethodGet, "/api/favorites", "", http.StatusOK, &favs)
	if len(favs) != 1 || favs[0].ID != "news" {
		t.Fatalf("expected [news], got %v", favs)
	}

	doJSON(t, s, http.MethodPost, "/api/channels/news/favorite", "", http.StatusOK, &resp)
	if resp["favorite"] {
		t.Fatal("second toggle should unfavorite the channel")
	}
}

func TestPreferencesEndpoints(t *testing.T) {
	s := newTestServer(t)

	var p models.Preferences
	doJSON(t, s, http.MethodGet, "/api/preferences", "", http.StatusOK, &p)
	if p.Theme.Mode != "light" {
		t.Fatalf("expected default theme, got %+v", p.Theme)
	}

	doJSON(t, s, http.MethodPut, "/api/preferences/language", `"German"`, http.StatusOK, &p)
	if p.Language != "German" {
		t.Fatalf("expected German, got %s", p.Language)
	}

	doJSON(t, s, http.MethodPut, "/api/preferences/volume", `5`, http.StatusNotFound, nil)
	doJSON(t, s, http.MethodPut, "/api/preferences/theme", `not json`, http.StatusBadRequest, nil)
}

func TestSavedFilterEndpoints(t *testing.T) {
	s := newTestServer(t)

	var saved models.SavedFilter
	doJSON(t, s, http.MethodPost, "/api/preferences/filters",
		`{"name": "spanish movies", "language": "Spanish", "category": "Movies"}`,
		http.StatusCreated, &saved)
	if saved.ID == "" {
		t.Fatal("expected assigned filter id")
	}

	doJSON(t, s, http.MethodPost, "/api/preferences/filters", `{"language": "Spanish"}`, http.StatusBadRequest, nil)

	doJSON(t, s, http.MethodDelete, "/api/preferences/filters/"+saved.ID, "", http.StatusNoContent, nil)
	doJSON(t, s, http.MethodDelete, "/api/preferences/filters/"+saved.ID, "", http.StatusNotFound, nil)
}

func TestFilterOptionEndpoints(t *testing.T) {
	s := newTestServer(t)
	var langs []string
	doJSON(t, s, http.MethodGet, "/api/languages", "", http.StatusOK, &langs)
	if len(langs) != 2 || langs[0] != "English" || langs[1] != "Spanish" {
		t.Fatalf("unexpected languages: %v", langs)
	}
	var cats []string
	doJSON(t, s, http.MethodGet, "/api/categories", "", http.StatusOK, &cats)
	if len(cats) != 2 || cats[0] != "Movies" || cats[1] != "News" {
		t.Fatalf("unexpected categories: %v", cats)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	var resp map[string]string
	doJSON(t, s, http.MethodGet, "/api/health", "", http.StatusOK, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("unexpected health response: %v", resp)
	}
}
