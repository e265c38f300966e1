// Package notify holds data-saved notifiers that need no broker
package notify

import (
	"context"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// LogNotifier records saved weeks in the context logger
type LogNotifier struct{}

func (LogNotifier) NotifyDataSaved(ctx context.Context, event domain.DataSavedEvent) error {
	zerolog.Ctx(ctx).Info().
		Str("week_start", event.WeekStart.Format(domain.DateLayout)).
		Int("week_number", event.WeekNumber).
		Str("net_sales_actual", event.NetSalesActual.StringFixed(2)).
		Str("budgeted_sales", event.BudgetedSales.StringFixed(2)).
		Time("saved_at", event.SavedAt).
		Msg("weekly data saved")
	return nil
}
