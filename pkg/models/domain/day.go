package domain

import (
	"maps"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Editable DayRecord fields
const (
	FieldIsOpen             = "is_open"
	FieldBudgetedSales      = "budgeted_sales"
	FieldTicketCount        = "ticket_count"
	FieldBudgetedLaborHours = "budgeted_labor_hours"
	FieldActualLaborHours   = "actual_labor_hours"
	FieldBudgetedFoodCost   = "budgeted_food_cost"
	FieldActualFoodCost     = "actual_food_cost"

	salesFieldPrefix = "sales:"
)

// SalesField names the actual-sales field of a channel
func SalesField(providerID string) string {
	return salesFieldPrefix + providerID
}

// SalesFieldProvider extracts the provider id from a sales field name
func SalesFieldProvider(field string) (string, bool) {
	if !strings.HasPrefix(field, salesFieldPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(field, salesFieldPrefix)
	return id, id != ""
}

// DayRecord is one calendar day within the selected week.
// When IsOpen is false every other field is logically ignored.
type DayRecord struct {
	Date                time.Time
	DayName             string
	IsOpen              bool
	BudgetedSales       decimal.Decimal
	ActualSalesBySource map[string]decimal.Decimal
	TicketCount         int
	BudgetedLaborHours  decimal.Decimal
	ActualLaborHours    decimal.Decimal
	BudgetedFoodCost    decimal.Decimal
	ActualFoodCost      decimal.Decimal
}

// NewDayRecord creates an empty record with every channel of providers set to zero
func NewDayRecord(date time.Time, isOpen bool, providers ProviderConfig) DayRecord {
	date = TruncateDate(date)
	sales := make(map[string]decimal.Decimal, len(providers))
	for _, p := range providers {
		sales[p.ID] = decimal.Zero
	}
	return DayRecord{
		Date:                date,
		DayName:             date.Weekday().String(),
		IsOpen:              isOpen,
		BudgetedSales:       decimal.Zero,
		ActualSalesBySource: sales,
		BudgetedLaborHours:  decimal.Zero,
		ActualLaborHours:    decimal.Zero,
		BudgetedFoodCost:    decimal.Zero,
		ActualFoodCost:      decimal.Zero,
	}
}

func (d DayRecord) Clone() DayRecord {
	clone := d
	clone.ActualSalesBySource = maps.Clone(d.ActualSalesBySource)
	return clone
}

// SalesFor returns the actual sales of a channel, zero when absent
func (d DayRecord) SalesFor(providerID string) decimal.Decimal {
	if v, ok := d.ActualSalesBySource[providerID]; ok {
		return v
	}
	return decimal.Zero
}

func CloneDays(days []DayRecord) []DayRecord {
	out := make([]DayRecord, len(days))
	for i, d := range days {
		out[i] = d.Clone()
	}
	return out
}
