package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/amqp"
	"bilancio/internal/ledger"
)

type capturingDeliverer struct {
	delivered []*amqp.AlertMessage
	fail      bool
}

func (d *capturingDeliverer) Deliver(_ context.Context, msg *amqp.AlertMessage) error {
	if d.fail {
		return errors.New("push gateway unavailable")
	}
	d.delivered = append(d.delivered, msg)
	return nil
}

func pinned(day int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 3, day, 10, 0, 0, 0, time.UTC)
	}
}

func TestHandleAlertMessageDeduplicates(t *testing.T) {
	d := &capturingDeliverer{}
	w := NewAlertWorker(d, 1)
	w.now = pinned(15)
	ctx := context.Background()

	msg := amqp.NewCategoryAlertMessage(ledger.CategoryAlert{
		CategoryID:  uuid.New(),
		Name:        "Groceries",
		Level:       ledger.AlertWarning,
		PercentUsed: 85,
	})

	if err := w.HandleAlertMessage(ctx, msg); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := w.HandleAlertMessage(ctx, msg); err != nil {
		t.Fatalf("duplicate must ack cleanly: %v", err)
	}

	if len(d.delivered) != 1 {
		t.Fatalf("expected one delivery, got %d", len(d.delivered))
	}
	delivered, duplicates := w.Stats()
	if delivered != 1 || duplicates != 1 {
		t.Fatalf("stats = %d delivered, %d duplicates", delivered, duplicates)
	}
}

func TestHandleAlertMessageDistinctLevels(t *testing.T) {
	d := &capturingDeliverer{}
	w := NewAlertWorker(d, 1)
	w.now = pinned(15)
	ctx := context.Background()

	id := uuid.New()
	warning := amqp.NewCategoryAlertMessage(ledger.CategoryAlert{CategoryID: id, Level: ledger.AlertWarning, PercentUsed: 85})
	over := amqp.NewCategoryAlertMessage(ledger.CategoryAlert{CategoryID: id, Level: ledger.AlertOver, PercentUsed: 105})

	if err := w.HandleAlertMessage(ctx, warning); err != nil {
		t.Fatalf("warning: %v", err)
	}
	if err := w.HandleAlertMessage(ctx, over); err != nil {
		t.Fatalf("over: %v", err)
	}

	if len(d.delivered) != 2 {
		t.Fatalf("warning and over are distinct, expected 2 deliveries, got %d", len(d.delivered))
	}
}

func TestHandleAlertMessagePeriodRollover(t *testing.T) {
	d := &capturingDeliverer{}
	w := NewAlertWorker(d, 1)
	w.now = pinned(15)
	ctx := context.Background()

	msg := amqp.NewTotalBudgetAlertMessage(ledger.TotalBudgetAlert{Level: ledger.AlertWarning, PercentUsed: 82})
	if err := w.HandleAlertMessage(ctx, msg); err != nil {
		t.Fatalf("first period: %v", err)
	}

	// New budget period: the same alert is news again.
	w.now = func() time.Time {
		return time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	}
	if err := w.HandleAlertMessage(ctx, msg); err != nil {
		t.Fatalf("second period: %v", err)
	}

	if len(d.delivered) != 2 {
		t.Fatalf("expected redelivery after rollover, got %d", len(d.delivered))
	}
}

func TestHandleAlertMessageDeliveryFailureNotMarkedSeen(t *testing.T) {
	d := &capturingDeliverer{fail: true}
	w := NewAlertWorker(d, 1)
	w.now = pinned(15)
	ctx := context.Background()

	msg := amqp.NewTotalBudgetAlertMessage(ledger.TotalBudgetAlert{Level: ledger.AlertOver, PercentUsed: 110})
	if err := w.HandleAlertMessage(ctx, msg); err == nil {
		t.Fatal("expected delivery error")
	}

	// After the gateway recovers the redelivered message must go through.
	d.fail = false
	if err := w.HandleAlertMessage(ctx, msg); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(d.delivered) != 1 {
		t.Fatalf("expected one delivery after retry, got %d", len(d.delivered))
	}
}
