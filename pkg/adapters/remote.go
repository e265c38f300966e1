package adapters

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
)

var weekdaysByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday accepts a weekday name or any prefix of at least two letters,
// in any case. Two letters already tell every weekday apart.
func ParseWeekday(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < 2 {
		return 0, false
	}
	for full, day := range weekdaysByName {
		if strings.HasPrefix(full, name) {
			return day, true
		}
	}
	return 0, false
}

func MapRestaurantGoalsApiToDomain(r api.RestaurantGoalsResponse) domain.RestaurantGoals {
	closed := make([]time.Weekday, 0, len(r.RestaurantDays))
	for _, name := range r.RestaurantDays {
		if day, ok := ParseWeekday(name); ok {
			closed = append(closed, day)
		}
	}
	return domain.RestaurantGoals{
		ClosedDays:              closed,
		ForwardPreviousWeekRate: bool(r.ForwardPreviousWeekRate),
		AvgHourlyRate:           r.AvgHourlyRate.Decimal(),
	}
}

func MapProvidersApiToDomain(providers []api.ProviderResponse) domain.ProviderConfig {
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.ProviderName)
	}
	return domain.NewProviderConfig(names...)
}

func MapCategorySummaryApiToDomain(r api.CategorySummaryResponse) domain.CategorySummary {
	categories := make([]domain.CategoryAmount, 0, len(r.Categories))
	for _, c := range r.Categories {
		categories = append(categories, domain.CategoryAmount{Name: c.Name, Value: c.Value.Decimal()})
	}

	var data any
	if len(r.Data) > 0 {
		_ = json.Unmarshal(r.Data, &data)
	}

	return domain.CategorySummary{
		Categories: categories,
		Data:       data,
	}
}

func MapCategoriesDomainToApi(categories []domain.CategoryAmount) []api.CategoryAmount {
	out := make([]api.CategoryAmount, 0, len(categories))
	for _, c := range categories {
		out = append(out, api.CategoryAmount{Name: c.Name, Value: api.NewMoney(c.Value)})
	}
	return out
}

func MapDashboardSummaryApiToDomain(r api.DashboardSummaryResponse) domain.DashboardSummary {
	return domain.DashboardSummary{
		Status:                        r.Status,
		Data:                          r.Data,
		AverageHourlyRate:             moneyPtrToDecimal(r.AverageHourlyRate),
		PreviousWeekAverageHourlyRate: moneyPtrToDecimal(r.PreviousWeekAverageHourlyRate),
	}
}

func moneyPtrToDecimal(m *api.Money) *decimal.Decimal {
	if m == nil {
		return nil
	}
	d := m.Decimal()
	return &d
}
