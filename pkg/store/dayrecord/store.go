package dayrecord

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// Listener receives a snapshot of the week after every successful mutation
type Listener func(days []domain.DayRecord)

// Store holds the seven DayRecords of the selected week
type Store interface {
	Initialize(week domain.WeekSelection, existing []domain.DayRecord, providers domain.ProviderConfig, closedDays []time.Weekday)
	SetField(dayIndex int, field string, value any) error
	Days() []domain.DayRecord
	Providers() domain.ProviderConfig
	Subscribe(fn Listener) (unsubscribe func())
	Reset()
}

type defaultStore struct {
	mu        sync.Mutex
	days      []domain.DayRecord
	providers domain.ProviderConfig
	listeners map[int]Listener
	nextID    int
}

func NewStore() Store {
	return &defaultStore{
		listeners: make(map[int]Listener),
	}
}

// Initialize adopts existing when it is non-empty, adding a zero channel for
// every provider the saved days lack. Otherwise seven fresh records are
// generated, open unless their weekday is in closedDays.
func (s *defaultStore) Initialize(
	week domain.WeekSelection,
	existing []domain.DayRecord,
	providers domain.ProviderConfig,
	closedDays []time.Weekday,
) {
	var days []domain.DayRecord
	if len(existing) > 0 {
		days = domain.CloneDays(existing)
		for i := range days {
			for _, p := range providers {
				if _, ok := days[i].ActualSalesBySource[p.ID]; !ok {
					if days[i].ActualSalesBySource == nil {
						days[i].ActualSalesBySource = make(map[string]decimal.Decimal, len(providers))
					}
					days[i].ActualSalesBySource[p.ID] = decimal.Zero
				}
			}
		}
	} else {
		days = make([]domain.DayRecord, 0, domain.DaysInWeek)
		for _, date := range week.Dates() {
			days = append(days, domain.NewDayRecord(date, !isClosed(date.Weekday(), closedDays), providers))
		}
	}

	s.mu.Lock()
	s.days = days
	s.providers = providers
	s.mu.Unlock()

	s.notify()
}

func (s *defaultStore) SetField(dayIndex int, field string, value any) error {
	s.mu.Lock()
	if dayIndex < 0 || dayIndex >= len(s.days) {
		s.mu.Unlock()
		return fmt.Errorf("day %d: %w", dayIndex, domain.ErrDayOutOfRange)
	}

	day := s.days[dayIndex].Clone()
	if field != domain.FieldIsOpen && !day.IsOpen {
		s.mu.Unlock()
		return &domain.EditRejectedError{Day: dayIndex, Field: field}
	}

	if err := s.apply(&day, field, value); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("day %d field %q: %w", dayIndex, field, err)
	}
	s.days[dayIndex] = day
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *defaultStore) apply(day *domain.DayRecord, field string, value any) error {
	if id, ok := domain.SalesFieldProvider(field); ok {
		if _, known := day.ActualSalesBySource[id]; !known && !s.providers.Has(id) {
			return fmt.Errorf("unknown channel %q: %w", id, domain.ErrInvalidValue)
		}
		amount, err := toAmount(value)
		if err != nil {
			return err
		}
		day.ActualSalesBySource[id] = amount
		return nil
	}

	switch field {
	case domain.FieldIsOpen:
		open, err := toBool(value)
		if err != nil {
			return err
		}
		day.IsOpen = open
	case domain.FieldTicketCount:
		count, err := toCount(value)
		if err != nil {
			return err
		}
		day.TicketCount = count
	case domain.FieldBudgetedSales:
		return setAmount(&day.BudgetedSales, value)
	case domain.FieldBudgetedLaborHours:
		return setAmount(&day.BudgetedLaborHours, value)
	case domain.FieldActualLaborHours:
		return setAmount(&day.ActualLaborHours, value)
	case domain.FieldBudgetedFoodCost:
		return setAmount(&day.BudgetedFoodCost, value)
	case domain.FieldActualFoodCost:
		return setAmount(&day.ActualFoodCost, value)
	default:
		return fmt.Errorf("unknown field: %w", domain.ErrInvalidValue)
	}
	return nil
}

func (s *defaultStore) Days() []domain.DayRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneDays(s.days)
}

func (s *defaultStore) Providers() domain.ProviderConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(domain.ProviderConfig(nil), s.providers...)
}

func (s *defaultStore) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Reset discards all records. Subscribers are kept.
func (s *defaultStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days = nil
	s.providers = nil
}

// notify runs listeners outside the lock so they may read the store
func (s *defaultStore) notify() {
	s.mu.Lock()
	if len(s.listeners) == 0 {
		s.mu.Unlock()
		return
	}
	snapshot := domain.CloneDays(s.days)
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(domain.CloneDays(snapshot))
	}
}

func isClosed(day time.Weekday, closedDays []time.Weekday) bool {
	for _, closed := range closedDays {
		if closed == day {
			return true
		}
	}
	return false
}

func setAmount(target *decimal.Decimal, value any) error {
	amount, err := toAmount(value)
	if err != nil {
		return err
	}
	*target = amount
	return nil
}

func toAmount(value any) (decimal.Decimal, error) {
	var amount decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		amount = v
	case int:
		amount = decimal.NewFromInt(int64(v))
	case int64:
		amount = decimal.NewFromInt(v)
	case float64:
		amount = decimal.NewFromFloat(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return decimal.Zero, nil
		}
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%q is not a number: %w", v, domain.ErrInvalidValue)
		}
		amount = parsed
	case nil:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount type %T: %w", value, domain.ErrInvalidValue)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %s: %w", amount, domain.ErrInvalidValue)
	}
	// amounts are kept in cents so saved totals match the saved days
	return amount.Round(2), nil
}

func toCount(value any) (int, error) {
	var count int
	switch v := value.(type) {
	case int:
		count = v
	case int64:
		count = int(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("ticket count %v is not whole: %w", v, domain.ErrInvalidValue)
		}
		count = int(v)
	case decimal.Decimal:
		if !v.Equal(v.Truncate(0)) {
			return 0, fmt.Errorf("ticket count %s is not whole: %w", v, domain.ErrInvalidValue)
		}
		count = int(v.IntPart())
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%q is not a count: %w", v, domain.ErrInvalidValue)
		}
		count = parsed
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported count type %T: %w", value, domain.ErrInvalidValue)
	}
	if count < 0 {
		return 0, fmt.Errorf("negative ticket count %d: %w", count, domain.ErrInvalidValue)
	}
	return count, nil
}

// toBool accepts the encodings the remote side uses for is_open
func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes":
			return true, nil
		case "0", "false", "no", "":
			return false, nil
		}
		return false, fmt.Errorf("%q is not a flag: %w", v, domain.ErrInvalidValue)
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("unsupported flag type %T: %w", value, domain.ErrInvalidValue)
	}
}
