package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"vetlab/internal/metrics"
	"vetlab/internal/model"
	"vetlab/internal/repository"
	ws "vetlab/internal/websocket"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// AlertConfig tunes the alert monitor.
type AlertConfig struct {
	Interval   time.Duration
	ExpiryDays int
	LowStock   decimal.Decimal // used when an item has no min_quantity
}

// AlertMonitor derives inventory alerts on a ticker. Alerts are never
// persisted: each check recomputes them, broadcasts the new ones and prunes
// the ones whose condition cleared.
type AlertMonitor struct {
	store  repository.InventoryRepository
	hub    Broadcaster
	cfg    AlertConfig
	now    func() time.Time
	logger *slog.Logger

	mu     sync.Mutex
	active map[string]model.Alert
}

func NewAlertMonitor(store repository.InventoryRepository, hub Broadcaster, cfg AlertConfig, now func() time.Time, logger *slog.Logger) *AlertMonitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.ExpiryDays <= 0 {
		cfg.ExpiryDays = 30
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertMonitor{
		store:  store,
		hub:    orNop(hub),
		cfg:    cfg,
		now:    now,
		logger: logger,
		active: make(map[string]model.Alert),
	}
}

// Derive computes the alerts for items as of now.
func Derive(items []model.InventoryItem, now time.Time, cfg AlertConfig) []model.Alert {
	today, _ := time.Parse(dateLayout, now.Format(dateLayout))
	horizon := today.AddDate(0, 0, cfg.ExpiryDays)

	var out []model.Alert
	for _, it := range items {
		threshold := cfg.LowStock
		if it.MinQuantity != nil {
			threshold = *it.MinQuantity
		}
		if it.Quantity.LessThanOrEqual(threshold) {
			out = append(out, model.Alert{
				ID: model.AlertLowStock + ":" + it.ID, Kind: model.AlertLowStock, ItemID: it.ID, ItemName: it.Name,
				Message: fmt.Sprintf("الكمية المتبقية من %s منخفضة (%s %s)", it.Name, it.Quantity.String(), it.Unit),
			})
		}
		if it.ExpiryDate == "" {
			continue
		}
		expiry, err := time.Parse(dateLayout, it.ExpiryDate)
		if err != nil {
			continue
		}
		switch {
		case expiry.Before(today):
			out = append(out, model.Alert{
				ID: model.AlertExpired + ":" + it.ID, Kind: model.AlertExpired, ItemID: it.ID, ItemName: it.Name,
				Message: fmt.Sprintf("انتهت صلاحية %s بتاريخ %s", it.Name, it.ExpiryDate),
			})
		case !expiry.After(horizon):
			out = append(out, model.Alert{
				ID: model.AlertExpiringSoon + ":" + it.ID, Kind: model.AlertExpiringSoon, ItemID: it.ID, ItemName: it.Name,
				Message: fmt.Sprintf("تنتهي صلاحية %s بتاريخ %s", it.Name, it.ExpiryDate),
			})
		}
	}
	return out
}

// Check recomputes the alerts and returns the ones raised by this pass.
func (m *AlertMonitor) Check(ctx context.Context) ([]model.Alert, error) {
	items, err := m.store.GetInventoryItems(ctx)
	if err != nil {
		return nil, err
	}
	current := Derive(items, m.now(), m.cfg)

	m.mu.Lock()
	next := make(map[string]model.Alert, len(current))
	var raised []model.Alert
	for _, a := range current {
		if _, seen := m.active[a.ID]; !seen {
			raised = append(raised, a)
		}
		next[a.ID] = a
	}
	pruned := len(m.active) + len(raised) - len(next)
	m.active = next
	m.mu.Unlock()

	metrics.ActiveAlerts.Set(float64(len(next)))
	if pruned > 0 {
		m.logger.Debug("inventory alerts cleared", "count", pruned)
	}
	for _, a := range raised {
		m.hub.Broadcast(model.DomainLab, ws.EventAlert, a)
	}
	return raised, nil
}

// Active returns the current alerts ordered by id.
func (m *AlertMonitor) Active() []model.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Alert, 0, len(m.active))
	for _, a := range m.active {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Run checks once immediately and then on every tick until ctx is done.
func (m *AlertMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		if _, err := m.Check(ctx); err != nil && ctx.Err() == nil {
			m.logger.Warn("inventory alert check failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
