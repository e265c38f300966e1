package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report represents a printable weekly sales report
type Report struct {
	Title       string
	Period      TimePeriod
	Sections    []ReportSection
	TotalAmount decimal.Decimal
	Currency    string
}

// TimePeriod represents a time range for the report
type TimePeriod struct {
	Start    time.Time
	End      time.Time
	Duration int // in days
}

// ReportSection represents a logical section in the report
type ReportSection struct {
	Title   string
	Summary map[string]string
	Details []ReportDetail
}

// ReportDetail represents detailed information within a section
type ReportDetail struct {
	Name        string
	Value       string
	Unit        string
	Description string
}
