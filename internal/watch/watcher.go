package watch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"chargebook/internal/models"
)

// SnapshotSource produces the current availability view for all active
// stations.
type SnapshotSource interface {
	Snapshot(ctx context.Context) ([]models.StationSnapshot, error)
}

// Subscription is a cancellable handle on the live feed. Every delivery is
// a full replacement snapshot, never a diff; consumers that fall behind
// skip snapshots rather than blocking the watcher.
type Subscription struct {
	ch     chan []models.StationSnapshot
	cancel func()
	once   sync.Once
}

// Updates returns the delivery channel. It is closed when the
// subscription is cancelled or the watcher stops.
func (s *Subscription) Updates() <-chan []models.StationSnapshot {
	return s.ch
}

// Close cancels the subscription.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// Watcher polls the source on an interval and fans full snapshots out to
// subscribers. It replaces push-style storage listeners with an explicit
// polling feed; deliveries carry no ordering or staleness guarantee.
type Watcher struct {
	source   SnapshotSource
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]chan []models.StationSnapshot
	closed bool
}

// NewWatcher builds watcher.
func NewWatcher(source SnapshotSource, interval time.Duration, logger *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{
		source:   source,
		interval: interval,
		logger:   logger,
		subs:     make(map[int]chan []models.StationSnapshot),
	}
}

// Subscribe registers a new consumer.
func (w *Watcher) Subscribe() *Subscription {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	ch := make(chan []models.StationSnapshot, 1)
	if w.closed {
		close(ch)
		return &Subscription{ch: ch, cancel: func() {}}
	}
	w.subs[id] = ch

	return &Subscription{
		ch: ch,
		cancel: func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if sub, ok := w.subs[id]; ok {
				delete(w.subs, id)
				close(sub)
			}
		},
	}
}

// Run polls until the context is cancelled, then closes every
// subscription.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer w.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	snapshot, err := w.source.Snapshot(ctx)
	if err != nil {
		w.logger.Warn("snapshot poll failed", zap.Error(err))
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.subs {
		select {
		case ch <- snapshot:
		default:
			// Slow consumer: drop the stale snapshot and replace it.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func (w *Watcher) shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for id, ch := range w.subs {
		delete(w.subs, id)
		close(ch)
	}
}
