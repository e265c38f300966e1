// Package aggregation derives weekly totals and per-day metrics from day records.
// Every function is pure: identical inputs always produce identical outputs.
package aggregation

import (
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Fallback category names used when the remote summary has no breakdown
const (
	CategorySales    = "Sales"
	CategoryLabor    = "Labor"
	CategoryFoodCost = "Food Cost"
)

// ComputeWeeklyTotals sums every field across open and closed days alike.
// Every provider gets a channel sum, and channels a day carries outside
// providers are summed as well, so SalesBySource always adds up to net sales.
func ComputeWeeklyTotals(
	days []domain.DayRecord,
	providers domain.ProviderConfig,
	hourlyRate decimal.Decimal,
) domain.WeeklyTotals {
	totals := domain.WeeklyTotals{
		BudgetedSales:      decimal.Zero,
		SalesBySource:      make(map[string]decimal.Decimal, len(providers)),
		NetSalesActual:     decimal.Zero,
		BudgetedLaborHours: decimal.Zero,
		ActualLaborHours:   decimal.Zero,
		HourlyRate:         hourlyRate,
		BudgetedFoodCost:   decimal.Zero,
		ActualFoodCost:     decimal.Zero,
		Daily:              make(map[string]domain.DayTotals, len(days)),
	}
	for _, p := range providers {
		totals.SalesBySource[p.ID] = decimal.Zero
	}

	for _, day := range days {
		net := NetSales(day)

		totals.BudgetedSales = totals.BudgetedSales.Add(day.BudgetedSales)
		totals.NetSalesActual = totals.NetSalesActual.Add(net)
		totals.TicketCount += day.TicketCount
		totals.BudgetedLaborHours = totals.BudgetedLaborHours.Add(day.BudgetedLaborHours)
		totals.ActualLaborHours = totals.ActualLaborHours.Add(day.ActualLaborHours)
		totals.BudgetedFoodCost = totals.BudgetedFoodCost.Add(day.BudgetedFoodCost)
		totals.ActualFoodCost = totals.ActualFoodCost.Add(day.ActualFoodCost)

		// channels outside providers still count toward net sales, so they are
		// totaled too
		for id, amount := range day.ActualSalesBySource {
			totals.SalesBySource[id] = totals.SalesBySource[id].Add(amount)
		}

		totals.Daily[day.Date.Format(domain.DateLayout)] = domain.DayTotals{
			NetSalesActual:  net,
			VariancePercent: VariancePercent(day.BudgetedSales, net),
		}
	}

	totals.VariancePercent = VariancePercent(totals.BudgetedSales, totals.NetSalesActual)
	totals.AverageTicket = AverageTicket(totals.NetSalesActual, totals.TicketCount)
	totals.BudgetedLaborCost = totals.BudgetedLaborHours.Mul(hourlyRate)
	totals.ActualLaborCost = totals.ActualLaborHours.Mul(hourlyRate)

	return totals
}

// VariancePercent returns (actual-budget)/budget*100, or 0 when budget is 0
func VariancePercent(budget, actual decimal.Decimal) decimal.Decimal {
	if budget.IsZero() {
		return decimal.Zero
	}
	return actual.Sub(budget).Mul(hundred).DivRound(budget, 4)
}

// AverageTicket returns netSales/ticketCount rounded to a whole amount, or 0 without tickets
func AverageTicket(netSales decimal.Decimal, ticketCount int) decimal.Decimal {
	if ticketCount == 0 {
		return decimal.Zero
	}
	return netSales.Div(decimal.NewFromInt(int64(ticketCount))).Round(0)
}

// NetSales sums every channel amount of the day, base and dynamic providers alike
func NetSales(day domain.DayRecord) decimal.Decimal {
	net := decimal.Zero
	for _, amount := range day.ActualSalesBySource {
		net = net.Add(amount)
	}
	return net
}

// OffendingBudgetDays returns the indexes of open days without budgeted sales.
// Closed days are exempt.
func OffendingBudgetDays(days []domain.DayRecord) []int {
	var offending []int
	for i, day := range days {
		if day.IsOpen && !day.BudgetedSales.IsPositive() {
			offending = append(offending, i)
		}
	}
	return offending
}

// HasBudgetedSales reports whether any day carries a non-zero budget
func HasBudgetedSales(days []domain.DayRecord) bool {
	for _, day := range days {
		if !day.BudgetedSales.IsZero() {
			return true
		}
	}
	return false
}

// FallbackCategories is the local three-category breakdown built from the
// budget/actual deltas. It always has exactly three entries.
func FallbackCategories(totals domain.WeeklyTotals) []domain.CategoryAmount {
	return []domain.CategoryAmount{
		{Name: CategorySales, Value: totals.NetSalesActual.Sub(totals.BudgetedSales).Abs()},
		{Name: CategoryLabor, Value: totals.ActualLaborCost.Sub(totals.BudgetedLaborCost).Abs()},
		{Name: CategoryFoodCost, Value: totals.ActualFoodCost.Sub(totals.BudgetedFoodCost).Abs()},
	}
}
