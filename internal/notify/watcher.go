// Package notify polls the schedule resolver for program transitions on the
// channel currently being watched.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/voyagen/telehaven/internal/catalog"
	"github.com/voyagen/telehaven/internal/metrics"
	"github.com/voyagen/telehaven/internal/models"
	"github.com/voyagen/telehaven/internal/prefs"
	"github.com/voyagen/telehaven/internal/schedule"
)

// Notifier delivers a program-start alert. The delivery channel (browser
// notification, push, log line) lives outside this core.
type Notifier interface {
	Notify(channel models.Channel, slot models.ProgramSlot)
}

// LogNotifier writes alerts to the application log.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(ch models.Channel, slot models.ProgramSlot) {
	n.Log.Info().
		Str("channel", ch.Name).
		Str("program", slot.Program).
		Str("start", slot.Time).
		Msg("now playing")
}

// Watcher re-resolves the active program of the current channel on a fixed
// interval and fires the notifier once per slot. A slot's Notified flag
// stays set until a new slot becomes active, so no duplicate alerts and no
// explicit reset.
type Watcher struct {
	catalog  *catalog.Catalog
	prefs    *prefs.Store
	notifier Notifier
	interval time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	current models.ChannelID
}

// NewWatcher creates a Watcher. interval should be large relative to the
// resolver's cost; the default cadence is one minute.
func NewWatcher(cat *catalog.Catalog, pf *prefs.Store, n Notifier, interval time.Duration, logger zerolog.Logger) *Watcher {
	return &Watcher{catalog: cat, prefs: pf, notifier: n, interval: interval, log: logger}
}

// SetCurrent records the channel being watched. An empty id clears it.
func (w *Watcher) SetCurrent(id models.ChannelID) {
	w.mu.Lock()
	w.current = id
	w.mu.Unlock()
}

// Run polls until ctx is cancelled. Ticks never overlap: each tick is a
// single synchronous resolver call.
func (w *Watcher) Run(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("program watcher started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("program watcher stopping")
			return
		case <-ticker.C:
			w.tick(time.Now())
		}
	}
}

// tick resolves the current program and fires the notifier when a not-yet
// announced slot is active.
func (w *Watcher) tick(now time.Time) {
	if !w.prefs.Preferences().Notifications.ProgramStart {
		return
	}
	w.mu.Lock()
	id := w.current
	w.mu.Unlock()
	if id == "" {
		return
	}
	ch, ok := w.catalog.Lookup(id)
	if !ok {
		return
	}
	slot := schedule.CurrentProgram(ch.Schedule, schedule.MinutesSinceMidnight(now))
	if slot == nil || slot.Notified {
		return
	}
	slot.Notified = true
	metrics.NotificationsSent.Inc()
	w.notifier.Notify(ch, *slot)
}
