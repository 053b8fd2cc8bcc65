package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/voyagen/telehaven/internal/models"
)

const feedJSON = `[
  {
    "id": 1,
    "name": "World News",
    "description": "Global headlines",
    "language": ["English", "French"],
    "category": "News",
    "image": "https://cdn.example.com/news.png",
    "type": "hls",
    "videoLink": "https://stream.example.com/news.m3u8",
    "themeColor": "#aa0000",
    "schedule": [
      {"time": "12:00", "program": "Noon Report"},
      {"time": "08:00", "program": "Morning Brief"}
    ]
  },
  {
    "id": "cine-2",
    "name": "Cine Plus",
    "description": "Movies all day",
    "language": ["Spanish"],
    "category": "Movies",
    "image": "https://cdn.example.com/cine.png",
    "type": "m3u8",
    "videoLink": "https://stream.example.com/cine.m3u8",
    "schedule": []
  }
]`

func serveFeed(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func loadCatalog(t *testing.T, body string) *Catalog {
	t.Helper()
	srv := serveFeed(t, body, http.StatusOK)
	cat := New(srv.URL, "test-agent", 5*time.Second)
	if _, err := cat.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return cat
}

func TestLoadNormalizesFeed(t *testing.T) {
	cat := loadCatalog(t, feedJSON)
	if cat.Len() != 2 {
		t.Fatalf("expected 2 channels, got %d", cat.Len())
	}

	// Numeric ids normalize to strings.
	ch, ok := cat.Lookup("1")
	if !ok {
		t.Fatal("channel 1 not found")
	}
	// Schedules come back sorted by start time.
	if ch.Schedule[0].Program != "Morning Brief" || ch.Schedule[1].Program != "Noon Report" {
		t.Fatalf("schedule not sorted: %v", ch.Schedule)
	}

	// Legacy "m3u8" spelling normalizes to hls.
	cine, ok := cat.Lookup("cine-2")
	if !ok {
		t.Fatal("channel cine-2 not found")
	}
	if cine.Type != models.ChannelTypeHLS {
		t.Fatalf("expected hls, got %s", cine.Type)
	}
}

func TestLoadFailsOnTransportError(t *testing.T) {
	srv := serveFeed(t, "oops", http.StatusInternalServerError)
	cat := New(srv.URL, "", 5*time.Second)
	_, err := cat.Load(context.Background())
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
}

func TestLoadFailsOnMalformedPayload(t *testing.T) {
	for name, body := range map[string]string{
		"not json":       "<html>",
		"not an array":   `{"id": 1}`,
		"empty id":       `[{"id": "", "name": "x", "type": "hls"}]`,
		"duplicate id":   `[{"id": "a", "name": "x", "type": "hls"}, {"id": "a", "name": "y", "type": "hls"}]`,
		"unknown type":   `[{"id": "a", "name": "x", "type": "dash"}]`,
		"bad slot time":  `[{"id": "a", "name": "x", "type": "hls", "schedule": [{"time": "25:00", "program": "p"}]}]`,
		"duplicate slot": `[{"id": "a", "name": "x", "type": "hls", "schedule": [{"time": "08:00", "program": "p"}, {"time": "08:00", "program": "q"}]}]`,
	} {
		srv := serveFeed(t, body, http.StatusOK)
		cat := New(srv.URL, "", 5*time.Second)
		if _, err := cat.Load(context.Background()); err == nil {
			t.Fatalf("%s: expected load error", name)
		}
	}
}

func TestLoadFailureKeepsPriorCatalog(t *testing.T) {
	status := http.StatusOK
	body := feedJSON
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	cat := New(srv.URL, "", 5*time.Second)
	if _, err := cat.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	status = http.StatusBadGateway
	if _, err := cat.Load(context.Background()); err == nil {
		t.Fatal("expected reload to fail")
	}
	if cat.Len() != 2 {
		t.Fatalf("failed reload should keep prior catalog, got %d channels", cat.Len())
	}
}

func TestLoadReplacesPriorCatalog(t *testing.T) {
	body := feedJSON
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	cat := New(srv.URL, "", 5*time.Second)
	if _, err := cat.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	body = `[{"id": "solo", "name": "Solo", "type": "youtube", "videoLink": "https://youtu.be/x"}]`
	if _, err := cat.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("expected replacement catalog of 1, got %d", cat.Len())
	}
	if _, ok := cat.Lookup("1"); ok {
		t.Fatal("old channel should be gone after replacement")
	}
}

func TestLookupMissIsNotAnError(t *testing.T) {
	cat := loadCatalog(t, feedJSON)
	if _, ok := cat.Lookup("ghost"); ok {
		t.Fatal("expected not found")
	}
}

func TestResolveDropsDanglingIDs(t *testing.T) {
	cat := loadCatalog(t, feedJSON)
	got := cat.Resolve([]models.ChannelID{"cine-2", "removed-channel", "1"})
	if len(got) != 2 {
		t.Fatalf("expected 2 resolved channels, got %d", len(got))
	}
	if got[0].ID != "cine-2" || got[1].ID != "1" {
		t.Fatalf("order not preserved: %v", got)
	}
}

func TestLanguagesAndCategories(t *testing.T) {
	cat := loadCatalog(t, feedJSON)
	langs := cat.Languages()
	if len(langs) != 3 || langs[0] != "English" || langs[1] != "French" || langs[2] != "Spanish" {
		t.Fatalf("unexpected languages: %v", langs)
	}
	cats := cat.Categories()
	if len(cats) != 2 || cats[0] != "Movies" || cats[1] != "News" {
		t.Fatalf("unexpected categories: %v", cats)
	}
}
