package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type GateState int

const (
	GateWeekConfirmation GateState = iota
	GateLaborRateConfirmation
	GateBudgetValidation
	GateReady
	GateCancelled
)

func (g GateState) String() string {
	switch g {
	case GateWeekConfirmation:
		return "week_confirmation"
	case GateLaborRateConfirmation:
		return "labor_rate_confirmation"
	case GateBudgetValidation:
		return "budget_validation"
	case GateReady:
		return "ready"
	case GateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type RateSource int

const (
	RateUnset RateSource = iota
	RateFromPriorWeek
	RateFromCurrentEntry
	RateUserOverride
)

func (s RateSource) String() string {
	switch s {
	case RateFromPriorWeek:
		return "prior_week"
	case RateFromCurrentEntry:
		return "current_entry"
	case RateUserOverride:
		return "user_override"
	default:
		return "unset"
	}
}

// LaborRateState records where the average hourly rate came from
type LaborRateState struct {
	Source RateSource
	Rate   decimal.Decimal
}

func (l LaborRateState) IsSet() bool {
	return l.Source != RateUnset
}

func PriorWeekRate(rate decimal.Decimal) LaborRateState {
	return LaborRateState{Source: RateFromPriorWeek, Rate: rate}
}

func CurrentEntryRate(rate decimal.Decimal) LaborRateState {
	return LaborRateState{Source: RateFromCurrentEntry, Rate: rate}
}

func OverrideRate(rate decimal.Decimal) LaborRateState {
	return LaborRateState{Source: RateUserOverride, Rate: rate}
}

// RestaurantGoals drive default opening days and the labor rate gate
type RestaurantGoals struct {
	ClosedDays              []time.Weekday
	ForwardPreviousWeekRate bool
	AvgHourlyRate           decimal.Decimal
}

func (g RestaurantGoals) IsClosedOn(day time.Weekday) bool {
	for _, d := range g.ClosedDays {
		if d == day {
			return true
		}
	}
	return false
}

// DataSavedEvent is handed to the data-saved collaborator after a successful save
type DataSavedEvent struct {
	WeekStart      time.Time
	WeekNumber     int
	NetSalesActual decimal.Decimal
	BudgetedSales  decimal.Decimal
	SavedAt        time.Time
}

// ParseRateSource is the inverse of RateSource.String; unknown names are RateUnset
func ParseRateSource(s string) RateSource {
	for _, source := range []RateSource{RateFromPriorWeek, RateFromCurrentEntry, RateUserOverride} {
		if source.String() == s {
			return source
		}
	}
	return RateUnset
}
