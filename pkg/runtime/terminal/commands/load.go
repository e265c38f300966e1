package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/submission"
	"github.com/de-tools/sales-atlas/pkg/store/providers"
	"github.com/shopspring/decimal"
)

// ReportHandler prints a report
type ReportHandler interface {
	Handle(report *domain.Report) error
}

type savedWeek struct {
	week      domain.WeekSelection
	days      []domain.DayRecord
	providers domain.ProviderConfig
	rate      domain.LaborRateState
}

// loadWeek reads a saved weekly payload. rateOverride replaces the payload
// rate when set.
func loadWeek(ctx context.Context, path, providersPath, rateOverride string) (savedWeek, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return savedWeek{}, fmt.Errorf("failed to read week file: %w", err)
	}
	var payload api.WeeklyPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return savedWeek{}, fmt.Errorf("failed to parse week file %s: %w", path, err)
	}

	week, err := domain.ParseWeekSelection(payload.WeekStart)
	if err != nil {
		return savedWeek{}, fmt.Errorf("invalid week_start %q: %w", payload.WeekStart, err)
	}

	cfg, err := loadProviders(ctx, providersPath)
	if err != nil {
		return savedWeek{}, err
	}

	days, err := submission.ParseDays(payload, cfg)
	if err != nil {
		return savedWeek{}, err
	}

	rate := domain.LaborRateState{
		Source: domain.ParseRateSource(payload.RateSource),
		Rate:   payload.AverageHourlyRate.Decimal(),
	}
	if rateOverride != "" {
		override, err := decimal.NewFromString(rateOverride)
		if err != nil || override.IsNegative() {
			return savedWeek{}, fmt.Errorf("invalid rate %q", rateOverride)
		}
		rate = domain.OverrideRate(override)
	}

	return savedWeek{week: week, days: days, providers: cfg, rate: rate}, nil
}

// loadProviders returns the base channels, extended by the ini file when one is given
func loadProviders(ctx context.Context, path string) (domain.ProviderConfig, error) {
	if path == "" {
		return domain.BaseProviders(), nil
	}
	source, err := providers.NewIniSource(path)
	if err != nil {
		return nil, err
	}
	return source.GetProviderConfig(ctx)
}
