// Package submission turns a completed week into the save payload and hands it
// to the remote save endpoint.
package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/sales-atlas/pkg/adapters"
	"github.com/de-tools/sales-atlas/pkg/clock"
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/aggregation"
	"github.com/rs/zerolog"
)

type Saver interface {
	SaveWeeklyData(ctx context.Context, payload api.WeeklyPayload) error
}

type Notifier interface {
	NotifyDataSaved(ctx context.Context, event domain.DataSavedEvent) error
}

// Build validates the week and assembles the save payload. Every currency
// value is written with two decimals.
func Build(
	week domain.WeekSelection,
	days []domain.DayRecord,
	totals domain.WeeklyTotals,
	providers domain.ProviderConfig,
	rate domain.LaborRateState,
) (api.WeeklyPayload, error) {
	if week.IsZero() || len(days) == 0 {
		return api.WeeklyPayload{}, &domain.ValidationError{Reason: domain.MissingWeekData}
	}
	if !aggregation.HasBudgetedSales(days) {
		return api.WeeklyPayload{}, &domain.ValidationError{Reason: domain.NoBudgetedSales}
	}

	return api.WeeklyPayload{
		WeekStart:         week.StartDate.Format(domain.DateLayout),
		WeekEnd:           week.EndDate.Format(domain.DateLayout),
		WeekNumber:        week.WeekNumber,
		AverageHourlyRate: api.NewMoney(rate.Rate),
		RateSource:        rate.Source.String(),
		Totals:            adapters.MapWeeklyTotalsDomainToApi(totals),
		Days:              adapters.MapDaysDomainToApi(days, totals, providers),
	}, nil
}

// ParseDays rebuilds the day records of a payload
func ParseDays(payload api.WeeklyPayload, providers domain.ProviderConfig) ([]domain.DayRecord, error) {
	return adapters.MapDayPayloadsApiToDomain(payload.Days, providers)
}

type Builder struct {
	saver    Saver
	notifier Notifier
	clock    clock.Clock
}

// NewBuilder creates a Builder. notifier may be nil.
func NewBuilder(saver Saver, notifier Notifier, c clock.Clock) *Builder {
	if c == nil {
		c = clock.Real()
	}
	return &Builder{
		saver:    saver,
		notifier: notifier,
		clock:    c,
	}
}

// Submit saves the payload. A failed save is returned as a SubmissionError
// wrapping the cause; a failed notification is only logged.
func (b *Builder) Submit(ctx context.Context, payload api.WeeklyPayload) error {
	logger := zerolog.Ctx(ctx).With().Str("week_start", payload.WeekStart).Logger()

	if err := b.saver.SaveWeeklyData(ctx, payload); err != nil {
		logger.Error().Err(err).Msg("failed to save weekly data")
		return &domain.SubmissionError{Err: err}
	}
	logger.Info().
		Str("net_sales_actual", payload.Totals.NetSalesActual.String()).
		Int("days", len(payload.Days)).
		Msg("weekly data saved")

	if b.notifier == nil {
		return nil
	}
	event, err := savedEvent(payload, b.clock.Now())
	if err != nil {
		logger.Warn().Err(err).Msg("skipping data saved notification")
		return nil
	}
	if err := b.notifier.NotifyDataSaved(ctx, event); err != nil {
		logger.Warn().Err(err).Msg("failed to notify data saved")
	}
	return nil
}

func savedEvent(payload api.WeeklyPayload, now time.Time) (domain.DataSavedEvent, error) {
	start, err := time.Parse(domain.DateLayout, payload.WeekStart)
	if err != nil {
		return domain.DataSavedEvent{}, fmt.Errorf("invalid week start %q: %w", payload.WeekStart, err)
	}
	return domain.DataSavedEvent{
		WeekStart:      start,
		WeekNumber:     payload.WeekNumber,
		NetSalesActual: payload.Totals.NetSalesActual.Decimal(),
		BudgetedSales:  payload.Totals.BudgetedSales.Decimal(),
		SavedAt:        now,
	}, nil
}
