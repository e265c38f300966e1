package api

import "encoding/json"

type CategoryAmount struct {
	Name  string `json:"name"`
	Value Money  `json:"value"`
}

// CategorySummaryResponse is returned by the category summary endpoint
type CategorySummaryResponse struct {
	Categories []CategoryAmount `json:"categories"`
	Data       json.RawMessage  `json:"data,omitempty"`
}

// DashboardSummaryResponse is returned by the dashboard summary endpoint
type DashboardSummaryResponse struct {
	Status                        string           `json:"status"`
	Data                          []map[string]any `json:"data"`
	AverageHourlyRate             *Money           `json:"average_hourly_rate,omitempty"`
	PreviousWeekAverageHourlyRate *Money           `json:"previous_week_average_hourly_rate,omitempty"`
}

// RestaurantGoalsResponse lists the weekday names the restaurant is closed on
type RestaurantGoalsResponse struct {
	RestaurantDays          []string `json:"restaurant_days"`
	ForwardPreviousWeekRate Flag     `json:"forward_previous_week_rate"`
	AvgHourlyRate           Money    `json:"avg_hourly_rate"`
}

type ProviderResponse struct {
	ProviderName string `json:"provider_name"`
}
