package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"order_manager/internal/apperrors"
	"order_manager/internal/models"
)

// Watcher surfaces unseen pending orders to a single operator session.
// The seen set is seeded with the pending backlog at construction so
// that only orders placed after the session started raise alerts.
type Watcher struct {
	orders   OrderService
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	seen    map[uint]struct{}
	current *models.Order

	// expired is consulted each tick; set by WatchManager to tie the
	// watch to its operator session.
	expired func() bool

	cancel context.CancelFunc
	done   chan struct{}
}

func NewWatcher(orders OrderService, interval time.Duration, logger *zap.Logger) (*Watcher, error) {
	w := &Watcher{
		orders:   orders,
		interval: interval,
		logger:   logger,
		seen:     make(map[uint]struct{}),
	}

	existing, err := orders.GetAllOrders()
	if err != nil {
		return nil, err
	}
	for _, order := range existing {
		if order.Status == models.OrderPending {
			w.seen[order.ID] = struct{}{}
		}
	}
	return w, nil
}

// Start begins the polling loop. Stop must be called to release it.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.run(ctx)
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.expired != nil && w.expired() {
				w.logger.Info("operator session gone, stopping order watch")
				return
			}
			if err := w.Poll(); err != nil {
				w.logger.Warn("order watch poll failed", zap.Error(err))
			}
		}
	}
}

// Stop cancels the polling loop and waits for it to exit.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

// Poll runs one detection pass: among pending orders not yet seen it
// picks the most recent one (latest created_at, then highest id),
// marks it seen and installs it as the active alert. At most one order
// is surfaced per pass; the rest stay unseen for later passes.
func (w *Watcher) Poll() error {
	orders, err := w.orders.GetAllOrders()
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var newest *models.Order
	for i := range orders {
		order := &orders[i]
		if order.Status != models.OrderPending {
			continue
		}
		if _, ok := w.seen[order.ID]; ok {
			continue
		}
		if newest == nil ||
			order.CreatedAt.After(newest.CreatedAt) ||
			(order.CreatedAt.Equal(newest.CreatedAt) && order.ID > newest.ID) {
			newest = order
		}
	}
	if newest == nil {
		return nil
	}

	// Marking seen here guarantees at most one alert per order, even if
	// the operator closes it without acting.
	w.seen[newest.ID] = struct{}{}
	alert := *newest
	w.current = &alert
	return nil
}

// Alert returns the active alert, or nil when there is none.
func (w *Watcher) Alert() *models.Order {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return nil
	}
	alert := *w.current
	return &alert
}

// Accept confirms the alerted order and dismisses the alert.
func (w *Watcher) Accept() error {
	return w.resolve(models.OrderConfirmed)
}

// Cancel rejects the alerted order and dismisses the alert.
func (w *Watcher) Cancel() error {
	return w.resolve(models.OrderCancelled)
}

func (w *Watcher) resolve(status models.OrderStatus) error {
	w.mu.Lock()
	current := w.current
	w.current = nil
	w.mu.Unlock()

	if current == nil {
		return apperrors.ErrNotFound
	}
	return w.orders.UpdateStatus(current.ID, status)
}

// Dismiss drops the alert without touching the order. The id stays in
// the seen set, so the order is not alerted again.
func (w *Watcher) Dismiss() {
	w.mu.Lock()
	w.current = nil
	w.mu.Unlock()
}

// WatchManager owns one Watcher per operator session. A watcher lives
// exactly as long as its session: explicit logout stops it, and a
// session lapsing by TTL makes it reap itself on the next tick.
type WatchManager struct {
	orders   OrderService
	sessions SessionStore
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	watchers map[string]*Watcher
}

func NewWatchManager(orders OrderService, sessions SessionStore, interval time.Duration, logger *zap.Logger) *WatchManager {
	return &WatchManager{
		orders:   orders,
		sessions: sessions,
		interval: interval,
		logger:   logger,
		watchers: make(map[string]*Watcher),
	}
}

// StartSession creates and starts a watcher for the session. Starting
// an existing session first stops the previous watcher.
func (m *WatchManager) StartSession(sessionID string) error {
	watcher, err := NewWatcher(m.orders, m.interval, m.logger)
	if err != nil {
		return err
	}

	// Sessions can lapse by TTL without an explicit logout. Transient
	// registry errors are not expiry; only a definitive not-found ends
	// the watch.
	watcher.expired = func() bool {
		if _, err := m.sessions.GetSession(sessionID); errors.Is(err, apperrors.ErrSessionNotFound) {
			m.remove(sessionID, watcher)
			return true
		}
		return false
	}

	m.mu.Lock()
	old := m.watchers[sessionID]
	m.watchers[sessionID] = watcher
	m.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	watcher.Start(context.Background())
	return nil
}

// remove drops the watcher from the registry, but only if the session
// still maps to this exact watcher. A re-login may have replaced it.
func (m *WatchManager) remove(sessionID string, watcher *Watcher) {
	m.mu.Lock()
	if m.watchers[sessionID] == watcher {
		delete(m.watchers, sessionID)
	}
	m.mu.Unlock()
}

func (m *WatchManager) Get(sessionID string) (*Watcher, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	watcher, ok := m.watchers[sessionID]
	return watcher, ok
}

// StopSession tears down the session's watcher, if any.
func (m *WatchManager) StopSession(sessionID string) {
	m.mu.Lock()
	watcher := m.watchers[sessionID]
	delete(m.watchers, sessionID)
	m.mu.Unlock()

	if watcher != nil {
		watcher.Stop()
	}
}

// StopAll is called at shutdown.
func (m *WatchManager) StopAll() {
	m.mu.Lock()
	watchers := m.watchers
	m.watchers = make(map[string]*Watcher)
	m.mu.Unlock()

	for _, watcher := range watchers {
		watcher.Stop()
	}
}
