package api

// WeeklyPayload is the body sent to saveWeeklyData
type WeeklyPayload struct {
	WeekStart         string       `json:"week_start"`
	WeekEnd           string       `json:"week_end"`
	WeekNumber        int          `json:"week_number"`
	AverageHourlyRate Money        `json:"average_hourly_rate"`
	RateSource        string       `json:"rate_source"`
	Totals            WeeklyTotals `json:"totals"`
	Days              []DayPayload `json:"days"`
}

type WeeklyTotals struct {
	BudgetedSales      Money            `json:"budgeted_sales"`
	SalesBySource      map[string]Money `json:"sales_by_source"`
	NetSalesActual     Money            `json:"net_sales_actual"`
	TicketCount        int              `json:"ticket_count"`
	AverageTicket      Money            `json:"average_ticket"`
	VariancePercent    Money            `json:"variance_percent"`
	BudgetedLaborHours Money            `json:"budgeted_labor_hours"`
	ActualLaborHours   Money            `json:"actual_labor_hours"`
	BudgetedLaborCost  Money            `json:"budgeted_labor_cost"`
	ActualLaborCost    Money            `json:"actual_labor_cost"`
	BudgetedFoodCost   Money            `json:"budgeted_food_cost"`
	ActualFoodCost     Money            `json:"actual_food_cost"`
}

// DayPayload is one day of the save payload. It is also the shape of
// previously saved days handed back when an existing week is edited.
type DayPayload struct {
	Date               string           `json:"date"`
	DayName            string           `json:"day_name"`
	IsOpen             Flag             `json:"is_open"`
	BudgetedSales      Money            `json:"budgeted_sales"`
	SalesBySource      map[string]Money `json:"sales_by_source"`
	TicketCount        int              `json:"ticket_count"`
	BudgetedLaborHours Money            `json:"budgeted_labor_hours"`
	ActualLaborHours   Money            `json:"actual_labor_hours"`
	BudgetedFoodCost   Money            `json:"budgeted_food_cost"`
	ActualFoodCost     Money            `json:"actual_food_cost"`
	NetSalesActual     Money            `json:"net_sales_actual"`
	VariancePercent    Money            `json:"variance_percent"`
}
