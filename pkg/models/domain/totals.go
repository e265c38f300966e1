package domain

import "github.com/shopspring/decimal"

// WeeklyTotals is derived from the day records and never mutated on its own
type WeeklyTotals struct {
	BudgetedSales      decimal.Decimal
	SalesBySource      map[string]decimal.Decimal
	NetSalesActual     decimal.Decimal
	TicketCount        int
	AverageTicket      decimal.Decimal
	VariancePercent    decimal.Decimal
	BudgetedLaborHours decimal.Decimal
	ActualLaborHours   decimal.Decimal
	HourlyRate         decimal.Decimal
	BudgetedLaborCost  decimal.Decimal
	ActualLaborCost    decimal.Decimal
	BudgetedFoodCost   decimal.Decimal
	ActualFoodCost     decimal.Decimal
	// Daily is keyed by ISO date so the totals do not depend on day order
	Daily map[string]DayTotals
}

type DayTotals struct {
	NetSalesActual  decimal.Decimal
	VariancePercent decimal.Decimal
}

type CategoryAmount struct {
	Name  string
	Value decimal.Decimal
}

// CategorySummary is the remote category breakdown for a date range
type CategorySummary struct {
	Categories []CategoryAmount
	Data       any
}

// DashboardSummary carries chart data and the hourly rate bootstrap values
type DashboardSummary struct {
	Status                        string
	Data                          []map[string]any
	AverageHourlyRate             *decimal.Decimal
	PreviousWeekAverageHourlyRate *decimal.Decimal
}
