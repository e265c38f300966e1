package dayrecord

import (
	"errors"
	"testing"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var week = domain.NewWeekSelection(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))

func providers() domain.ProviderConfig {
	return domain.NewProviderConfig("DoorDash")
}

func setupStore(t *testing.T, closed ...time.Weekday) Store {
	t.Helper()
	s := NewStore()
	s.Initialize(week, nil, providers(), closed)
	return s
}

func TestStore_InitializeFresh(t *testing.T) {
	s := setupStore(t, time.Saturday, time.Sunday)
	days := s.Days()

	require.Len(t, days, domain.DaysInWeek)
	for i, day := range days {
		assert.Equal(t, week.StartDate.AddDate(0, 0, i), day.Date)
		assert.Equal(t, day.Date.Weekday().String(), day.DayName)
		assert.Len(t, day.ActualSalesBySource, 3)
		for _, id := range providers().IDs() {
			assert.True(t, day.SalesFor(id).IsZero())
		}
	}
	assert.True(t, days[0].IsOpen)
	assert.True(t, days[4].IsOpen)
	assert.False(t, days[5].IsOpen)
	assert.False(t, days[6].IsOpen)
}

func TestStore_InitializeAdoptsExisting(t *testing.T) {
	existing := make([]domain.DayRecord, 0, domain.DaysInWeek)
	for i, date := range week.Dates() {
		day := domain.NewDayRecord(date, i != 2, providers())
		day.BudgetedSales = decimal.NewFromInt(int64(100 * i))
		existing = append(existing, day)
	}

	s := NewStore()
	s.Initialize(week, existing, providers(), []time.Weekday{time.Monday})
	first := s.Days()

	// closed days only apply to fresh weeks
	assert.True(t, first[0].IsOpen)
	assert.False(t, first[2].IsOpen)

	s.Initialize(week, existing, providers(), []time.Weekday{time.Monday})
	assert.Equal(t, first, s.Days())

	// adopted records are copies
	existing[1].ActualSalesBySource[domain.ProviderInStore] = decimal.NewFromInt(99)
	assert.True(t, s.Days()[1].SalesFor(domain.ProviderInStore).IsZero())
}

func TestStore_InitializeFillsMissingProviders(t *testing.T) {
	existing := make([]domain.DayRecord, 0, domain.DaysInWeek)
	for _, date := range week.Dates() {
		day := domain.NewDayRecord(date, true, domain.BaseProviders())
		day.ActualSalesBySource[domain.ProviderInStore] = decimal.NewFromInt(40)
		existing = append(existing, day)
	}

	s := NewStore()
	s.Initialize(week, existing, providers(), nil)

	for i, day := range s.Days() {
		amount, ok := day.ActualSalesBySource["doordash"]
		require.True(t, ok, "day %d", i)
		assert.True(t, amount.IsZero())
		assert.True(t, day.SalesFor(domain.ProviderInStore).Equal(decimal.NewFromInt(40)))
	}
	_, ok := existing[0].ActualSalesBySource["doordash"]
	assert.False(t, ok)

	require.NoError(t, s.SetField(0, domain.SalesField("doordash"), 12))
	assert.True(t, s.Days()[0].SalesFor("doordash").Equal(decimal.NewFromInt(12)))
}

func TestStore_InitializeIdempotentFresh(t *testing.T) {
	s := NewStore()
	s.Initialize(week, nil, providers(), []time.Weekday{time.Sunday})
	first := s.Days()
	s.Initialize(week, nil, providers(), []time.Weekday{time.Sunday})
	assert.Equal(t, first, s.Days())
}

func TestStore_SetField(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		value  any
		verify func(t *testing.T, day domain.DayRecord)
	}{
		{
			name:  "budgeted sales from decimal",
			field: domain.FieldBudgetedSales,
			value: decimal.RequireFromString("1250.75"),
			verify: func(t *testing.T, day domain.DayRecord) {
				assert.True(t, day.BudgetedSales.Equal(decimal.RequireFromString("1250.75")))
			},
		},
		{
			name:  "channel sales from string",
			field: domain.SalesField("doordash"),
			value: "88.10",
			verify: func(t *testing.T, day domain.DayRecord) {
				assert.True(t, day.SalesFor("doordash").Equal(decimal.RequireFromString("88.1")))
			},
		},
		{
			name:  "ticket count from float",
			field: domain.FieldTicketCount,
			value: float64(42),
			verify: func(t *testing.T, day domain.DayRecord) {
				assert.Equal(t, 42, day.TicketCount)
			},
		},
		{
			name:  "labor hours",
			field: domain.FieldActualLaborHours,
			value: 31.5,
			verify: func(t *testing.T, day domain.DayRecord) {
				assert.True(t, day.ActualLaborHours.Equal(decimal.RequireFromString("31.5")))
			},
		},
		{
			name:  "food cost",
			field: domain.FieldBudgetedFoodCost,
			value: 250,
			verify: func(t *testing.T, day domain.DayRecord) {
				assert.True(t, day.BudgetedFoodCost.Equal(decimal.NewFromInt(250)))
			},
		},
		{
			name:  "sub-cent budget rounds to cents",
			field: domain.FieldBudgetedSales,
			value: "100.005",
			verify: func(t *testing.T, day domain.DayRecord) {
				assert.True(t, day.BudgetedSales.Equal(decimal.RequireFromString("100.01")), day.BudgetedSales.String())
			},
		},
		{
			name:  "sub-cent channel sales round to cents",
			field: domain.SalesField(domain.ProviderInStore),
			value: 0.004,
			verify: func(t *testing.T, day domain.DayRecord) {
				assert.True(t, day.SalesFor(domain.ProviderInStore).IsZero(), day.SalesFor(domain.ProviderInStore).String())
			},
		},
		{
			name:  "close day from int flag",
			field: domain.FieldIsOpen,
			value: 0,
			verify: func(t *testing.T, day domain.DayRecord) {
				assert.False(t, day.IsOpen)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupStore(t)
			require.NoError(t, s.SetField(0, tt.field, tt.value))
			tt.verify(t, s.Days()[0])
		})
	}
}

func TestStore_SetFieldClosedDay(t *testing.T) {
	s := setupStore(t, time.Sunday)
	before := s.Days()

	err := s.SetField(6, domain.FieldBudgetedSales, decimal.NewFromInt(100))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEditRejected))

	var rejected *domain.EditRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, 6, rejected.Day)
	assert.Equal(t, domain.FieldBudgetedSales, rejected.Field)
	assert.Equal(t, before, s.Days())

	// is_open stays editable
	require.NoError(t, s.SetField(6, domain.FieldIsOpen, true))
	require.NoError(t, s.SetField(6, domain.FieldBudgetedSales, decimal.NewFromInt(100)))
	assert.True(t, s.Days()[6].BudgetedSales.Equal(decimal.NewFromInt(100)))
}

func TestStore_SetFieldErrors(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		field    string
		value    any
		expected error
	}{
		{"negative index", -1, domain.FieldBudgetedSales, 1, domain.ErrDayOutOfRange},
		{"index past week", 7, domain.FieldBudgetedSales, 1, domain.ErrDayOutOfRange},
		{"negative amount", 0, domain.FieldBudgetedSales, -5, domain.ErrInvalidValue},
		{"negative tickets", 0, domain.FieldTicketCount, -1, domain.ErrInvalidValue},
		{"fractional tickets", 0, domain.FieldTicketCount, 1.5, domain.ErrInvalidValue},
		{"unknown channel", 0, domain.SalesField("grubhub"), 5, domain.ErrInvalidValue},
		{"unknown field", 0, "tips", 5, domain.ErrInvalidValue},
		{"not a number", 0, domain.FieldActualFoodCost, "abc", domain.ErrInvalidValue},
		{"not a flag", 0, domain.FieldIsOpen, "maybe", domain.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupStore(t)
			before := s.Days()
			err := s.SetField(tt.index, tt.field, tt.value)
			assert.ErrorIs(t, err, tt.expected)
			assert.Equal(t, before, s.Days())
		})
	}
}

func TestStore_Subscribe(t *testing.T) {
	s := NewStore()
	var calls int
	var last []domain.DayRecord
	unsubscribe := s.Subscribe(func(days []domain.DayRecord) {
		calls++
		last = days
		// listeners may read the store
		_ = s.Days()
	})

	s.Initialize(week, nil, providers(), nil)
	assert.Equal(t, 1, calls)
	require.Len(t, last, domain.DaysInWeek)

	require.NoError(t, s.SetField(2, domain.FieldTicketCount, 12))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 12, last[2].TicketCount)

	// rejected edits do not notify
	assert.Error(t, s.SetField(9, domain.FieldTicketCount, 1))
	assert.Equal(t, 2, calls)

	unsubscribe()
	require.NoError(t, s.SetField(2, domain.FieldTicketCount, 13))
	assert.Equal(t, 2, calls)
}

func TestStore_DaysIsDeepCopy(t *testing.T) {
	s := setupStore(t)
	days := s.Days()
	days[0].ActualSalesBySource[domain.ProviderOnline] = decimal.NewFromInt(500)
	days[0].TicketCount = 99

	fresh := s.Days()
	assert.True(t, fresh[0].SalesFor(domain.ProviderOnline).IsZero())
	assert.Equal(t, 0, fresh[0].TicketCount)
}

func TestStore_Reset(t *testing.T) {
	s := setupStore(t)
	s.Reset()
	assert.Empty(t, s.Days())
	assert.ErrorIs(t, s.SetField(0, domain.FieldTicketCount, 1), domain.ErrDayOutOfRange)
}
