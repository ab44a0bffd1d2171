// Package worker delivers budget alert notifications consumed from AMQP.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
)

// Deliverer is the outbound notification channel. The worker decides what
// to deliver and when; the deliverer only carries it.
type Deliverer interface {
	Deliver(ctx context.Context, msg *amqp.AlertMessage) error
}

// AlertWorker handles alert messages with per-period deduplication: each
// category+level pair notifies at most once per budget period, and the
// seen-set resets when the period rolls over on the profile's reset day.
type AlertWorker struct {
	deliverer Deliverer
	resetDay  int

	mu          sync.Mutex
	periodStart core.Date
	seen        map[string]struct{}

	delivered  int64
	duplicates int64

	now func() time.Time
}

func NewAlertWorker(deliverer Deliverer, resetDay int) *AlertWorker {
	return &AlertWorker{
		deliverer: deliverer,
		resetDay:  resetDay,
		seen:      make(map[string]struct{}),
		now:       time.Now,
	}
}

// HandleAlertMessage processes one alert message. Duplicates within the
// current budget period are acknowledged without delivery; a delivery
// failure is returned so the message gets redelivered.
func (w *AlertWorker) HandleAlertMessage(ctx context.Context, msg *amqp.AlertMessage) error {
	key := dedupeKey(msg)

	w.mu.Lock()
	w.rolloverLocked()
	if _, dup := w.seen[key]; dup {
		w.duplicates++
		w.mu.Unlock()
		slog.DebugContext(ctx, "Skipping duplicate alert",
			"key", key, "period_start", w.periodStart.Format("2006-01-02"))
		return nil
	}
	w.mu.Unlock()

	if err := w.deliverer.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("deliver alert: %w", err)
	}

	w.mu.Lock()
	w.seen[key] = struct{}{}
	w.delivered++
	w.mu.Unlock()

	slog.InfoContext(ctx, "Delivered budget alert",
		"kind", msg.Kind,
		"level", msg.Level,
		"percent_used", msg.PercentUsed)

	return nil
}

// rolloverLocked resets the seen-set when the budget period changed. Caller
// holds w.mu.
func (w *AlertWorker) rolloverLocked() {
	period := core.BudgetPeriodFor(w.resetDay, core.DateOf(w.now()))
	if period.Start.SameDay(w.periodStart) {
		return
	}
	w.periodStart = period.Start
	w.seen = make(map[string]struct{})
}

func dedupeKey(msg *amqp.AlertMessage) string {
	if msg.Kind == amqp.KindCategoryAlert {
		return fmt.Sprintf("%s|%s|%s", msg.Kind, msg.CategoryID, msg.Level)
	}
	return fmt.Sprintf("%s|%s", msg.Kind, msg.Level)
}

// Stats reports delivery counters for the periodic status log.
func (w *AlertWorker) Stats() (delivered, duplicates int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.delivered, w.duplicates
}
