// Package prefs holds the user-settings object and its persistence contract.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voyagen/telehaven/internal/metrics"
	"github.com/voyagen/telehaven/internal/models"
	"github.com/voyagen/telehaven/internal/store"
)

// KeyPreferences is the storage key owning the preferences blob.
const KeyPreferences = "userPreferences"

// ErrUnknownKey is returned by Set and SetJSON for a key outside the
// preferences schema.
var ErrUnknownKey = errors.New("unknown preference key")

// Store holds the user preferences, merged from defaults and the persisted
// blob at load time. Every mutation writes through to the key-value store
// synchronously; persistence failures are logged and swallowed.
type Store struct {
	kv  store.Store
	log zerolog.Logger

	mu    sync.Mutex
	prefs models.Preferences
}

// New creates a preference store holding the hard-coded defaults.
// Call Load to merge persisted values over them.
func New(kv store.Store, logger zerolog.Logger) *Store {
	return &Store{kv: kv, log: logger, prefs: models.DefaultPreferences()}
}

// Load reads the persisted blob and shallow-merges it over the defaults:
// a persisted top-level key replaces the default value wholesale, including
// nested sub-keys the persisted version does not carry. Corrupt or absent
// data falls back fully to defaults; Load never fails.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = models.DefaultPreferences()

	raw, err := s.kv.Get(ctx, KeyPreferences)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn().Err(err).Msg("prefs: load failed, using defaults")
		}
		return
	}
	merged, err := shallowMerge(s.prefs, raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("prefs: persisted blob unusable, using defaults")
		return
	}
	s.prefs = merged
}

// shallowMerge overlays the persisted blob's top-level JSON keys onto the
// defaults and decodes the result. Replacement is by whole top-level value,
// never a field-level deep merge of nested objects.
func shallowMerge(defaults models.Preferences, raw []byte) (models.Preferences, error) {
	base, err := json.Marshal(defaults)
	if err != nil {
		return defaults, fmt.Errorf("marshal defaults: %w", err)
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return defaults, fmt.Errorf("decode defaults: %w", err)
	}
	var persisted map[string]json.RawMessage
	if err := json.Unmarshal(raw, &persisted); err != nil {
		return defaults, fmt.Errorf("decode persisted: %w", err)
	}
	for k, v := range persisted {
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return defaults, fmt.Errorf("marshal merged: %w", err)
	}
	var prefs models.Preferences
	if err := json.Unmarshal(out, &prefs); err != nil {
		return defaults, fmt.Errorf("decode merged: %w", err)
	}
	return prefs, nil
}

// Preferences returns a snapshot of the current settings.
func (s *Store) Preferences() models.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// snapshot copies prefs so callers cannot alias the saved-filters slice.
// Caller must hold mu.
func (s *Store) snapshot() models.Preferences {
	p := s.prefs
	p.SavedFilters = append([]models.SavedFilter(nil), s.prefs.SavedFilters...)
	return p
}

// Get returns the value under a top-level preference key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch key {
	case "theme":
		return s.prefs.Theme, true
	case "language":
		return s.prefs.Language, true
	case "savedFilters":
		return append([]models.SavedFilter(nil), s.prefs.SavedFilters...), true
	case "accessibility":
		return s.prefs.Accessibility, true
	case "notifications":
		return s.prefs.Notifications, true
	default:
		return nil, false
	}
}

// Set updates a top-level preference key and persists immediately. It
// returns ErrUnknownKey for keys outside the schema and an error when the
// value type does not match the key; a storage failure is not an error to
// the caller.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch key {
	case "theme":
		v, ok := value.(models.ThemePrefs)
		if !ok {
			return fmt.Errorf("set %s: want ThemePrefs, got %T", key, value)
		}
		s.prefs.Theme = v
	case "language":
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("set %s: want string, got %T", key, value)
		}
		s.prefs.Language = v
	case "savedFilters":
		v, ok := value.([]models.SavedFilter)
		if !ok {
			return fmt.Errorf("set %s: want []SavedFilter, got %T", key, value)
		}
		s.prefs.SavedFilters = v
	case "accessibility":
		v, ok := value.(models.AccessibilityPrefs)
		if !ok {
			return fmt.Errorf("set %s: want AccessibilityPrefs, got %T", key, value)
		}
		s.prefs.Accessibility = v
	case "notifications":
		v, ok := value.(models.NotificationPrefs)
		if !ok {
			return fmt.Errorf("set %s: want NotificationPrefs, got %T", key, value)
		}
		s.prefs.Notifications = v
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	s.persist(ctx)
	return nil
}

// SetJSON updates a top-level preference key from its raw JSON encoding.
// Used by the API layer, which receives values over the wire.
func (s *Store) SetJSON(ctx context.Context, key string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	switch key {
	case "theme":
		err = json.Unmarshal(raw, &s.prefs.Theme)
	case "language":
		err = json.Unmarshal(raw, &s.prefs.Language)
	case "savedFilters":
		err = json.Unmarshal(raw, &s.prefs.SavedFilters)
	case "accessibility":
		err = json.Unmarshal(raw, &s.prefs.Accessibility)
	case "notifications":
		err = json.Unmarshal(raw, &s.prefs.Notifications)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	s.persist(ctx)
	return nil
}

// AddSavedFilter appends a named filter, assigning an id when the caller did
// not provide one, and persists. The stored filter is returned.
func (s *Store) AddSavedFilter(ctx context.Context, f models.SavedFilter) models.SavedFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	s.prefs.SavedFilters = append(s.prefs.SavedFilters, f)
	s.persist(ctx)
	return f
}

// RemoveSavedFilter removes the filter with the given id and persists.
// Returns false when no filter matched.
func (s *Store) RemoveSavedFilter(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.prefs.SavedFilters {
		if f.ID == id {
			s.prefs.SavedFilters = append(s.prefs.SavedFilters[:i], s.prefs.SavedFilters[i+1:]...)
			s.persist(ctx)
			return true
		}
	}
	return false
}

// persist writes the whole preferences blob through to the store. Caller
// must hold mu. Failures are swallowed: in-memory state stays authoritative.
func (s *Store) persist(ctx context.Context) {
	if err := store.SetJSON(ctx, s.kv, KeyPreferences, s.prefs); err != nil {
		metrics.StorageErrors.Inc()
		s.log.Warn().Err(err).Msg("prefs: persist failed, keeping in-memory state")
	}
}
