package adapters

import (
	"fmt"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
)

func MapDayRecordDomainToApi(day domain.DayRecord, totals domain.DayTotals, providers domain.ProviderConfig) api.DayPayload {
	sales := make(map[string]api.Money, len(providers)+len(day.ActualSalesBySource))
	for _, p := range providers {
		sales[p.ID] = api.NewMoney(day.SalesFor(p.ID))
	}
	// channels outside providers are part of net sales and are kept
	for id, amount := range day.ActualSalesBySource {
		sales[id] = api.NewMoney(amount)
	}

	return api.DayPayload{
		Date:               day.Date.Format(domain.DateLayout),
		DayName:            day.DayName,
		IsOpen:             api.Flag(day.IsOpen),
		BudgetedSales:      api.NewMoney(day.BudgetedSales),
		SalesBySource:      sales,
		TicketCount:        day.TicketCount,
		BudgetedLaborHours: api.NewMoney(day.BudgetedLaborHours),
		ActualLaborHours:   api.NewMoney(day.ActualLaborHours),
		BudgetedFoodCost:   api.NewMoney(day.BudgetedFoodCost),
		ActualFoodCost:     api.NewMoney(day.ActualFoodCost),
		NetSalesActual:     api.NewMoney(totals.NetSalesActual),
		VariancePercent:    api.NewMoney(totals.VariancePercent),
	}
}

// MapDayPayloadApiToDomain adopts a previously saved day. Channels of providers
// missing from the payload are added with a zero amount.
func MapDayPayloadApiToDomain(p api.DayPayload, providers domain.ProviderConfig) (domain.DayRecord, error) {
	date, err := time.Parse(domain.DateLayout, p.Date)
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("invalid day date %q: %w", p.Date, err)
	}

	sales := make(map[string]decimal.Decimal, len(providers)+len(p.SalesBySource))
	for _, provider := range providers {
		sales[provider.ID] = decimal.Zero
	}
	for id, amount := range p.SalesBySource {
		sales[id] = amount.Decimal()
	}

	return domain.DayRecord{
		Date:                date,
		DayName:             date.Weekday().String(),
		IsOpen:              bool(p.IsOpen),
		BudgetedSales:       p.BudgetedSales.Decimal(),
		ActualSalesBySource: sales,
		TicketCount:         p.TicketCount,
		BudgetedLaborHours:  p.BudgetedLaborHours.Decimal(),
		ActualLaborHours:    p.ActualLaborHours.Decimal(),
		BudgetedFoodCost:    p.BudgetedFoodCost.Decimal(),
		ActualFoodCost:      p.ActualFoodCost.Decimal(),
	}, nil
}

func MapDayPayloadsApiToDomain(payloads []api.DayPayload, providers domain.ProviderConfig) ([]domain.DayRecord, error) {
	days := make([]domain.DayRecord, 0, len(payloads))
	for _, p := range payloads {
		day, err := MapDayPayloadApiToDomain(p, providers)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

func MapWeeklyTotalsDomainToApi(t domain.WeeklyTotals) api.WeeklyTotals {
	sales := make(map[string]api.Money, len(t.SalesBySource))
	for id, amount := range t.SalesBySource {
		sales[id] = api.NewMoney(amount)
	}

	return api.WeeklyTotals{
		BudgetedSales:      api.NewMoney(t.BudgetedSales),
		SalesBySource:      sales,
		NetSalesActual:     api.NewMoney(t.NetSalesActual),
		TicketCount:        t.TicketCount,
		AverageTicket:      api.NewMoney(t.AverageTicket),
		VariancePercent:    api.NewMoney(t.VariancePercent),
		BudgetedLaborHours: api.NewMoney(t.BudgetedLaborHours),
		ActualLaborHours:   api.NewMoney(t.ActualLaborHours),
		BudgetedLaborCost:  api.NewMoney(t.BudgetedLaborCost),
		ActualLaborCost:    api.NewMoney(t.ActualLaborCost),
		BudgetedFoodCost:   api.NewMoney(t.BudgetedFoodCost),
		ActualFoodCost:     api.NewMoney(t.ActualFoodCost),
	}
}

// MapDaysDomainToApi maps the week using the per-day totals keyed by date
func MapDaysDomainToApi(days []domain.DayRecord, totals domain.WeeklyTotals, providers domain.ProviderConfig) []api.DayPayload {
	out := make([]api.DayPayload, 0, len(days))
	for _, d := range days {
		out = append(out, MapDayRecordDomainToApi(d, totals.Daily[d.Date.Format(domain.DateLayout)], providers))
	}
	return out
}
