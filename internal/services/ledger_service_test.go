package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
	"bilancio/internal/ledger/memory"
	"bilancio/internal/session"
)

type capturingPublisher struct {
	category []ledger.CategoryAlert
	total    []ledger.TotalBudgetAlert
}

func (p *capturingPublisher) PublishCategoryAlert(_ context.Context, a ledger.CategoryAlert) error {
	p.category = append(p.category, a)
	return nil
}

func (p *capturingPublisher) PublishTotalBudgetAlert(_ context.Context, a ledger.TotalBudgetAlert) error {
	p.total = append(p.total, a)
	return nil
}

type fixture struct {
	service   *LedgerService
	publisher *capturingPublisher
	wallet    core.Wallet
	category  core.Category
}

// newFixture builds a service over the in-memory backend with one wallet,
// one budgeted category (1000.00), and a 2000.00 total budget. Time is
// pinned to mid-March 2026.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	backend := memory.New()

	budget := core.Money{Cents: 100000}
	wallet := core.Wallet{ID: uuid.New(), Name: "Main", Balance: core.Money{Cents: 500000}, Type: core.WalletBank}
	category := core.Category{ID: uuid.New(), Name: "Groceries", MonthlyBudget: &budget}

	if err := backend.SaveWallet(ctx, wallet); err != nil {
		t.Fatalf("seed wallet: %v", err)
	}
	if err := backend.SaveCategory(ctx, category); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	profile := core.Profile{TotalBudget: core.Money{Cents: 200000}, ResetDay: 1, WeekStart: time.Monday}
	if err := backend.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	store, err := session.Load(ctx, backend)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}

	publisher := &capturingPublisher{}
	service := NewLedgerService(store, backend, publisher)
	service.now = func() time.Time {
		return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	}

	return &fixture{service: service, publisher: publisher, wallet: wallet, category: category}
}

func (f *fixture) spend(t *testing.T, cents int64, day int) core.Transaction {
	t.Helper()
	txn, err := f.service.CreateTransaction(context.Background(), core.Transaction{
		Type:        core.Expense,
		Amount:      core.Money{Cents: cents},
		Description: "spesa",
		Date:        core.NewDate(2026, 3, day),
		CategoryID:  &f.category.ID,
		WalletID:    &f.wallet.ID,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return txn
}

func TestCreateTransactionPublishesWarningOnce(t *testing.T) {
	f := newFixture(t)

	f.spend(t, 70000, 5) // 70% of category budget, below the band
	if len(f.publisher.category) != 0 {
		t.Fatalf("no alert expected below warning, got %+v", f.publisher.category)
	}

	f.spend(t, 15000, 6) // 85%, crosses into warning
	if len(f.publisher.category) != 1 {
		t.Fatalf("expected one category alert, got %d", len(f.publisher.category))
	}
	alert := f.publisher.category[0]
	if alert.Level != ledger.AlertWarning || alert.PercentUsed != 85 || alert.CategoryID != f.category.ID {
		t.Fatalf("unexpected alert: %+v", alert)
	}

	f.spend(t, 5000, 7) // 90%, still warning: no repeat
	if len(f.publisher.category) != 1 {
		t.Fatalf("warning must not repeat inside the band, got %d alerts", len(f.publisher.category))
	}

	f.spend(t, 10000, 8) // 100%, escalates to over
	if len(f.publisher.category) != 2 {
		t.Fatalf("expected escalation to over, got %d alerts", len(f.publisher.category))
	}
	if got := f.publisher.category[1]; got.Level != ledger.AlertOver {
		t.Fatalf("expected over alert, got %+v", got)
	}
}

func TestTotalBudgetAlertCrossing(t *testing.T) {
	f := newFixture(t)

	// 85% of the 2000.00 total budget: category alert fires too (170%
	// of category budget), but here the total alert is the subject.
	f.spend(t, 170000, 5)

	if len(f.publisher.total) != 1 {
		t.Fatalf("expected one total budget alert, got %d", len(f.publisher.total))
	}
	if got := f.publisher.total[0]; got.Level != ledger.AlertWarning || got.PercentUsed != 85 {
		t.Fatalf("unexpected total alert: %+v", got)
	}
}

func TestUpdateCategoryLoweredBudgetTriggersAlert(t *testing.T) {
	f := newFixture(t)

	f.spend(t, 50000, 5) // 50%: quiet
	if len(f.publisher.category) != 0 {
		t.Fatalf("no alert expected at 50%%, got %+v", f.publisher.category)
	}

	lowered := f.category
	budget := core.Money{Cents: 50000}
	lowered.MonthlyBudget = &budget
	if _, err := f.service.UpdateCategory(context.Background(), lowered); err != nil {
		t.Fatalf("update category: %v", err)
	}

	if len(f.publisher.category) != 1 {
		t.Fatalf("lowered budget should alert, got %d", len(f.publisher.category))
	}
	if got := f.publisher.category[0]; got.Level != ledger.AlertOver {
		t.Fatalf("spent equal to budget must be over, got %+v", got)
	}
}

func TestNilPublisherIsQuiet(t *testing.T) {
	f := newFixture(t)
	f.service.alerts = nil

	// Would alert with a publisher attached; must simply not panic.
	f.spend(t, 95000, 5)
}

func TestDeleteTransactionSkipsAlerts(t *testing.T) {
	f := newFixture(t)
	txn := f.spend(t, 85000, 5)
	alerts := len(f.publisher.category)

	if err := f.service.DeleteTransaction(context.Background(), txn.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.publisher.category) != alerts {
		t.Fatalf("delete must not publish alerts")
	}
}

func TestCurrentPeriodFollowsResetDay(t *testing.T) {
	f := newFixture(t)

	profile := f.service.Store().Profile()
	profile.ResetDay = 20
	if _, err := f.service.UpdateProfile(context.Background(), profile); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	period := f.service.CurrentPeriod()
	if !period.Start.SameDay(core.NewDate(2026, 2, 20)) || !period.End.SameDay(core.NewDate(2026, 3, 19)) {
		t.Fatalf("unexpected period: %+v", period)
	}
}

func TestReports(t *testing.T) {
	f := newFixture(t)
	f.spend(t, 40000, 5)
	f.spend(t, 20000, 10)

	alloc := f.service.Allocation()
	if alloc.AllocatedTotal.Cents != 100000 || alloc.Percent != 50 {
		t.Fatalf("unexpected allocation: %+v", alloc)
	}

	report := f.service.CategoryReport(f.service.CurrentPeriod())
	if len(report) != 1 || report[0].Total.Cents != 60000 || report[0].Count != 2 {
		t.Fatalf("unexpected category report: %+v", report)
	}

	// 600.00 spent of the 2000.00 total budget leaves a 70 score.
	if score := f.service.HealthScore(); score != 70 {
		t.Fatalf("expected health score 70, got %d", score)
	}

	history := f.service.BalanceHistory(4)
	want := []int64{500000, 500000, 460000, 440000}
	if len(history) != 4 {
		t.Fatalf("expected 4 points, got %d", len(history))
	}
	for i, cents := range want {
		if history[i].Cents != cents {
			t.Fatalf("history[%d] = %d, want %d", i, history[i].Cents, cents)
		}
	}

	trend := f.service.Trend()
	if trend.Net.Cents != -60000 || trend.Positive {
		t.Fatalf("unexpected trend: %+v", trend)
	}
}

func TestProjectedAllocationExcludesEditedCategory(t *testing.T) {
	f := newFixture(t)

	// Raising the existing category to 1500.00 projects 75%, not 125%.
	got := f.service.ProjectedAllocation(&f.category.ID, core.Money{Cents: 150000})
	if got.ProjectedTotal.Cents != 150000 || got.WouldExceed {
		t.Fatalf("unexpected projection: %+v", got)
	}

	// A brand-new category with the same budget stacks on top.
	got = f.service.ProjectedAllocation(nil, core.Money{Cents: 150000})
	if got.ProjectedTotal.Cents != 250000 || !got.WouldExceed {
		t.Fatalf("unexpected projection: %+v", got)
	}
}
