package api

import "encoding/json"

type OpenSessionRequest struct {
	WeekStart string       `json:"week_start"`
	Days      []DayPayload `json:"days,omitempty"`
}

type SetFieldRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

type DateRangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type LaborRateRequest struct {
	Rate *Money `json:"rate,omitempty"`
}

type Prompt struct {
	Gate          string `json:"gate"`
	PreviousRate  *Money `json:"previous_rate,omitempty"`
	ManualEntry   bool   `json:"manual_entry,omitempty"`
	OffendingDays []int  `json:"offending_days,omitempty"`
}

type Session struct {
	ID         string       `json:"id"`
	WeekStart  string       `json:"week_start"`
	WeekEnd    string       `json:"week_end"`
	WeekNumber int          `json:"week_number"`
	State      string       `json:"state"`
	Prompt     *Prompt      `json:"prompt,omitempty"`
	HourlyRate Money        `json:"hourly_rate"`
	RateSource string       `json:"rate_source"`
	Days       []DayPayload `json:"days"`
	Totals     WeeklyTotals `json:"totals"`
}

type SubmitResponse struct {
	Status        string `json:"status"`
	OffendingDays []int  `json:"offending_days,omitempty"`
	FocusDay      *int   `json:"focus_day,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
