// Package tracker maintains the per-user favorites set and the bounded
// recently-watched queue, persisting both through the key-value store.
package tracker

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/voyagen/telehaven/internal/metrics"
	"github.com/voyagen/telehaven/internal/models"
	"github.com/voyagen/telehaven/internal/store"
)

// Storage keys. Each list owns its key exclusively.
const (
	KeyFavorites       = "favorites"
	KeyRecentlyWatched = "recentlyWatched"
)

// Tracker mutates the favorites and recently-watched id lists. In-memory
// state is authoritative for the session: every mutation persists
// synchronously, and a failed persist is logged and counted but never rolled
// back.
type Tracker struct {
	kv  store.Store
	log zerolog.Logger

	mu        sync.Mutex
	favorites []models.ChannelID
	recent    []models.ChannelID
}

// New creates a Tracker with empty lists. Call Load to pick up persisted state.
func New(kv store.Store, logger zerolog.Logger) *Tracker {
	return &Tracker{kv: kv, log: logger}
}

// Load reads both lists from the store. An absent or unparsable value leaves
// the corresponding list empty; Load never fails.
func (t *Tracker) Load(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.favorites = t.loadList(ctx, KeyFavorites)
	t.recent = t.loadList(ctx, KeyRecentlyWatched)
}

func (t *Tracker) loadList(ctx context.Context, key string) []models.ChannelID {
	ids, err := store.GetJSON[[]models.ChannelID](ctx, t.kv, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			t.log.Warn().Err(err).Str("key", key).Msg("tracker: load failed, starting empty")
		}
		return nil
	}
	return ids
}

// ToggleFavorite flips membership of id and returns the new state: true when
// id was added, false when it was removed. The rest of the set is unaffected.
func (t *Tracker) ToggleFavorite(ctx context.Context, id models.ChannelID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	member := false
	for i, fav := range t.favorites {
		if fav == id {
			t.favorites = append(t.favorites[:i], t.favorites[i+1:]...)
			member = true
			break
		}
	}
	if !member {
		t.favorites = append(t.favorites, id)
	}
	t.persist(ctx, KeyFavorites, t.favorites)
	return !member
}

// RecordWatched moves id to the front of the recently-watched queue, removing
// any prior occurrence, and truncates the queue to MaxRecentChannels entries.
func (t *Tracker) RecordWatched(ctx context.Context, id models.ChannelID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := make([]models.ChannelID, 0, len(t.recent)+1)
	next = append(next, id)
	for _, r := range t.recent {
		if r != id {
			next = append(next, r)
		}
	}
	if len(next) > models.MaxRecentChannels {
		next = next[:models.MaxRecentChannels]
	}
	t.recent = next
	t.persist(ctx, KeyRecentlyWatched, t.recent)
}

// Favorites returns a copy of the favorites list in insertion order.
func (t *Tracker) Favorites() []models.ChannelID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.ChannelID(nil), t.favorites...)
}

// IsFavorite reports membership of id.
func (t *Tracker) IsFavorite(id models.ChannelID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, fav := range t.favorites {
		if fav == id {
			return true
		}
	}
	return false
}

// Recent returns a copy of the recently-watched queue, most recent first.
func (t *Tracker) Recent() []models.ChannelID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.ChannelID(nil), t.recent...)
}

// persist writes a list through to the store. Failures are swallowed: the
// session continues on the in-memory state in best-effort durability mode.
func (t *Tracker) persist(ctx context.Context, key string, ids []models.ChannelID) {
	if ids == nil {
		ids = []models.ChannelID{}
	}
	if err := store.SetJSON(ctx, t.kv, key, ids); err != nil {
		metrics.StorageErrors.Inc()
		t.log.Warn().Err(err).Str("key", key).Msg("tracker: persist failed, keeping in-memory state")
	}
}
