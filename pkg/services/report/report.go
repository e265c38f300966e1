// Package report turns weekly totals into a printable domain.Report.
package report

import (
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/aggregation"
	"github.com/shopspring/decimal"
)

const Currency = "USD"

func Weekly(
	week domain.WeekSelection,
	days []domain.DayRecord,
	providers domain.ProviderConfig,
	rate domain.LaborRateState,
) *domain.Report {
	totals := aggregation.ComputeWeeklyTotals(days, providers, rate.Rate)

	return &domain.Report{
		Title: fmt.Sprintf("Week %d Sales Report", week.WeekNumber),
		Period: domain.TimePeriod{
			Start:    week.StartDate,
			End:      week.EndDate,
			Duration: domain.DaysInWeek,
		},
		Sections: []domain.ReportSection{
			salesSection(totals, providers),
			laborSection(totals, rate),
			foodSection(totals),
			dailySection(days, totals),
		},
		TotalAmount: totals.NetSalesActual,
		Currency:    Currency,
	}
}

func salesSection(totals domain.WeeklyTotals, providers domain.ProviderConfig) domain.ReportSection {
	section := domain.ReportSection{
		Title: "Sales",
		Summary: map[string]string{
			"Budgeted":       money(totals.BudgetedSales),
			"Net Sales":      money(totals.NetSalesActual),
			"Variance":       percent(totals.VariancePercent),
			"Tickets":        fmt.Sprint(totals.TicketCount),
			"Average Ticket": money(totals.AverageTicket),
		},
	}
	for _, p := range providers {
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        p.Name,
			Value:       money(totals.SalesBySource[p.ID]),
			Unit:        Currency,
			Description: "actual sales for channel " + p.ID,
		})
	}
	return section
}

func laborSection(totals domain.WeeklyTotals, rate domain.LaborRateState) domain.ReportSection {
	return domain.ReportSection{
		Title: "Labor",
		Summary: map[string]string{
			"Hourly Rate": money(rate.Rate),
			"Rate Source": rate.Source.String(),
		},
		Details: []domain.ReportDetail{
			{Name: "Budgeted Hours", Value: totals.BudgetedLaborHours.StringFixed(2), Unit: "hours"},
			{Name: "Actual Hours", Value: totals.ActualLaborHours.StringFixed(2), Unit: "hours"},
			{Name: "Budgeted Cost", Value: money(totals.BudgetedLaborCost), Unit: Currency},
			{Name: "Actual Cost", Value: money(totals.ActualLaborCost), Unit: Currency},
		},
	}
}

func foodSection(totals domain.WeeklyTotals) domain.ReportSection {
	return domain.ReportSection{
		Title: "Food Cost",
		Details: []domain.ReportDetail{
			{Name: "Budgeted", Value: money(totals.BudgetedFoodCost), Unit: Currency},
			{Name: "Actual", Value: money(totals.ActualFoodCost), Unit: Currency},
		},
	}
}

func dailySection(days []domain.DayRecord, totals domain.WeeklyTotals) domain.ReportSection {
	section := domain.ReportSection{Title: "Daily"}
	for _, day := range days {
		date := day.Date.Format(domain.DateLayout)
		if !day.IsOpen {
			section.Details = append(section.Details, domain.ReportDetail{
				Name:        day.DayName + " " + date,
				Value:       "closed",
				Description: "closed days are not validated",
			})
			continue
		}
		daily := totals.Daily[date]
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        day.DayName + " " + date,
			Value:       money(daily.NetSalesActual),
			Unit:        Currency,
			Description: fmt.Sprintf("budget %s, variance %s", money(day.BudgetedSales), percent(daily.VariancePercent)),
		})
	}
	return section
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func percent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}
