// Package catalog holds the session's channel directory, loaded once from an
// external JSON feed and replaced wholesale on refresh.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/voyagen/telehaven/internal/models"
)

// LoadError reports a transport or parse failure during catalog load. It is
// fatal to the startup flow and must be handled by the caller; an empty
// catalog is a distinct, valid state from a failed load.
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load catalog from %s: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Catalog is the set of known channels for the current session. Channels are
// immutable after load; Load replaces the whole set.
type Catalog struct {
	feedURL   string
	userAgent string
	timeout   time.Duration

	mu       sync.RWMutex
	channels []models.Channel
	byID     map[models.ChannelID]int
}

// New creates an empty catalog bound to a feed URL. Call Load to populate it.
func New(feedURL, userAgent string, timeout time.Duration) *Catalog {
	return &Catalog{
		feedURL:   feedURL,
		userAgent: userAgent,
		timeout:   timeout,
		byID:      make(map[models.ChannelID]int),
	}
}

// Load fetches and parses the channel feed once. On success the result
// replaces any prior catalog; on failure the prior catalog is kept and a
// *LoadError is returned. A single attempt, no retries.
func (c *Catalog) Load(ctx context.Context) (int, error) {
	channels, err := Fetch(ctx, c.feedURL, c.userAgent, c.timeout)
	if err != nil {
		return 0, &LoadError{URL: c.feedURL, Err: err}
	}
	byID := make(map[models.ChannelID]int, len(channels))
	for i := range channels {
		byID[channels[i].ID] = i
	}
	c.mu.Lock()
	c.channels = channels
	c.byID = byID
	c.mu.Unlock()
	return len(channels), nil
}

// All returns the full catalog in feed order.
func (c *Catalog) All() []models.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channels
}

// Len returns the number of channels.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.channels)
}

// Lookup returns the channel with the given id. Absence is not an error:
// callers holding stale ids get ok=false and move on.
func (c *Catalog) Lookup(id models.ChannelID) (models.Channel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return models.Channel{}, false
	}
	return c.channels[i], true
}

// Resolve maps ids to channel records, silently dropping ids no longer in
// the catalog. Order is preserved.
func (c *Catalog) Resolve(ids []models.ChannelID) []models.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Channel, 0, len(ids))
	for _, id := range ids {
		if i, ok := c.byID[id]; ok {
			out = append(out, c.channels[i])
		}
	}
	return out
}

// Languages returns the sorted set of languages appearing across the catalog.
func (c *Catalog) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, ch := range c.channels {
		for _, lang := range ch.Language {
			seen[lang] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Categories returns the sorted set of categories appearing across the catalog.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, ch := range c.channels {
		if ch.Category != "" {
			seen[ch.Category] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
