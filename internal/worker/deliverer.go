package worker

import (
	"context"
	"log/slog"

	"bilancio/internal/amqp"
)

// LogDeliverer writes notifications to the structured log. It is the
// default channel until a push integration is configured.
type LogDeliverer struct{}

func (LogDeliverer) Deliver(ctx context.Context, msg *amqp.AlertMessage) error {
	switch msg.Kind {
	case amqp.KindCategoryAlert:
		slog.InfoContext(ctx, "Budget alert: category threshold crossed",
			"category_id", msg.CategoryID,
			"category", msg.Name,
			"level", msg.Level,
			"percent_used", msg.PercentUsed)
	case amqp.KindTotalBudgetAlert:
		slog.InfoContext(ctx, "Budget alert: total budget threshold crossed",
			"level", msg.Level,
			"percent_used", msg.PercentUsed)
	default:
		slog.WarnContext(ctx, "Unknown alert kind", "kind", msg.Kind)
	}
	return nil
}
