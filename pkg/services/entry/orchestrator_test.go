package entry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/de-tools/sales-atlas/pkg/clock"
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/gate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Wednesday
var now = time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)

var (
	currentWeek = domain.NewWeekSelection(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	pastWeek    = currentWeek.Previous()
)

type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) FetchCategorySummary(ctx context.Context, start, end time.Time) (domain.CategorySummary, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(domain.CategorySummary), args.Error(1)
}

func (m *mockRemote) FetchDashboardSummary(ctx context.Context, start, end time.Time, groupBy string) (domain.DashboardSummary, error) {
	args := m.Called(ctx, start, end, groupBy)
	return args.Get(0).(domain.DashboardSummary), args.Error(1)
}

func (m *mockRemote) GetRestaurantGoals(ctx context.Context) (domain.RestaurantGoals, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.RestaurantGoals), args.Error(1)
}

func (m *mockRemote) GetProviderConfig(ctx context.Context) (domain.ProviderConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.ProviderConfig), args.Error(1)
}

func (m *mockRemote) SaveWeeklyData(ctx context.Context, payload api.WeeklyPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *mockRemote) NotifyDataSaved(ctx context.Context, event domain.DataSavedEvent) error {
	return m.Called(ctx, event).Error(0)
}

type fixture struct {
	clock   *clock.FakeClock
	remote  *mockRemote
	o       *Orchestrator
	prompts []gate.Prompt
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ratePtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func providers() domain.ProviderConfig {
	return domain.NewProviderConfig("DoorDash")
}

func goals(forward bool) domain.RestaurantGoals {
	return domain.RestaurantGoals{
		ClosedDays:              []time.Weekday{time.Sunday},
		ForwardPreviousWeekRate: forward,
		AvgHourlyRate:           dec("15"),
	}
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:  clock.Fake(now),
		remote: &mockRemote{},
	}
	f.o = NewOrchestrator(Dependencies{
		Summaries: f.remote,
		Dashboard: f.remote,
		Goals:     f.remote,
		Providers: f.remote,
		Saver:     f.remote,
		Notifier:  f.remote,
		Clock:     f.clock,
	}, Options{})
	f.o.OnPrompt(func(p gate.Prompt) {
		f.prompts = append(f.prompts, p)
	})
	t.Cleanup(f.o.Close)
	return f
}

func (f *fixture) expectOpen(g domain.RestaurantGoals, previous *decimal.Decimal) {
	f.remote.On("GetRestaurantGoals", mock.Anything).Return(g, nil)
	f.remote.On("GetProviderConfig", mock.Anything).Return(providers(), nil)
	f.remote.On("FetchDashboardSummary", mock.Anything, mock.Anything, mock.Anything, dashboardGroupBy).
		Return(domain.DashboardSummary{Status: "success", PreviousWeekAverageHourlyRate: previous}, nil)
	f.remote.On("FetchCategorySummary", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.CategorySummary{}, nil).Maybe()
}

// existingWeek builds saved days; budgets < 0 mark closed days
func existingWeek(budgets ...int64) []domain.DayRecord {
	days := make([]domain.DayRecord, 0, domain.DaysInWeek)
	for i, date := range currentWeek.Dates() {
		day := domain.NewDayRecord(date, budgets[i] >= 0, providers())
		if budgets[i] > 0 {
			day.BudgetedSales = decimal.NewFromInt(budgets[i])
			day.ActualSalesBySource[domain.ProviderInStore] = decimal.NewFromInt(budgets[i] - 10)
			day.TicketCount = 10
		}
		days = append(days, day)
	}
	return days
}

func TestOrchestrator_OpenFreshWeek(t *testing.T) {
	f := setupFixture(t)
	f.expectOpen(goals(false), ratePtr("16.5"))

	require.NoError(t, f.o.Open(context.Background(), currentWeek, nil))

	days := f.o.Days()
	require.Len(t, days, domain.DaysInWeek)
	assert.True(t, days[0].IsOpen)
	assert.False(t, days[6].IsOpen)
	assert.Contains(t, days[0].ActualSalesBySource, "doordash")
	assert.Equal(t, providers(), f.o.Providers())

	// current week skips the week gate, labor prompt waits for the delay
	assert.Equal(t, domain.GateLaborRateConfirmation, f.o.State())
	f.clock.Advance(1499 * time.Millisecond)
	assert.Empty(t, f.prompts)
	f.clock.Advance(time.Millisecond)
	require.Len(t, f.prompts, 1)
	assert.Equal(t, domain.GateLaborRateConfirmation, f.prompts[0].Gate)
	assert.True(t, f.prompts[0].PreviousRate.Equal(dec("16.5")))

	f.clock.Advance(10 * time.Second)
	assert.Len(t, f.prompts, 1)
}

func TestOrchestrator_OpenRequiresWeek(t *testing.T) {
	f := setupFixture(t)
	err := f.o.Open(context.Background(), domain.WeekSelection{}, nil)
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, domain.MissingWeekData, validation.Reason)
}

func TestOrchestrator_ProviderFailureUsesBaseChannels(t *testing.T) {
	f := setupFixture(t)
	f.remote.On("GetRestaurantGoals", mock.Anything).Return(goals(false), nil)
	f.remote.On("GetProviderConfig", mock.Anything).Return(nil, errors.New("timeout"))
	f.remote.On("FetchDashboardSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.DashboardSummary{}, nil)

	require.NoError(t, f.o.Open(context.Background(), currentWeek, nil))
	assert.Equal(t, domain.BaseProviders(), f.o.Providers())
	assert.Len(t, f.o.Days()[0].ActualSalesBySource, 2)
}

func TestOrchestrator_DashboardFailureFallsBackToGoalsRate(t *testing.T) {
	f := setupFixture(t)
	f.remote.On("GetRestaurantGoals", mock.Anything).Return(goals(true), nil)
	f.remote.On("GetProviderConfig", mock.Anything).Return(providers(), nil)
	f.remote.On("FetchDashboardSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.DashboardSummary{}, errors.New("502 bad gateway")).Once()

	require.NoError(t, f.o.Open(context.Background(), currentWeek, nil))

	rate := f.o.LaborRate()
	assert.Equal(t, domain.RateFromPriorWeek, rate.Source)
	assert.True(t, rate.Rate.Equal(dec("15")))
	assert.Equal(t, domain.GateBudgetValidation, f.o.State())

	// the rate lookup happens once per week
	require.NoError(t, f.o.SelectWeek(context.Background(), currentWeek, nil))
	f.remote.AssertNumberOfCalls(t, "FetchDashboardSummary", 1)
}

func TestOrchestrator_SubmitClosedDaysExempt(t *testing.T) {
	f := setupFixture(t)
	f.expectOpen(goals(false), ratePtr("16.5"))

	var saved api.WeeklyPayload
	f.remote.On("SaveWeeklyData", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(api.WeeklyPayload) }).
		Return(nil).Once()
	f.remote.On("NotifyDataSaved", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, f.o.Open(context.Background(), currentWeek, existingWeek(100, 100, 100, 100, 100, -1, -1)))
	assert.Equal(t, domain.GateBudgetValidation, f.o.State())

	result, err := f.o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, result.Status)
	require.NotNil(t, result.Payload)
	assert.Empty(t, f.prompts)

	assert.Equal(t, "2025-06-02", saved.WeekStart)
	assert.Equal(t, "500.00", saved.Totals.BudgetedSales.String())
	assert.Equal(t, "current_entry", saved.RateSource)
	assert.Equal(t, "15.00", saved.AverageHourlyRate.String())
	assert.False(t, f.o.IsOpen())
	f.remote.AssertExpectations(t)

	_, err = f.o.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestOrchestrator_SubmitZeroBudgetDays(t *testing.T) {
	f := setupFixture(t)
	f.expectOpen(goals(false), nil)

	var saved api.WeeklyPayload
	f.remote.On("SaveWeeklyData", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(api.WeeklyPayload) }).
		Return(nil).Once()
	f.remote.On("NotifyDataSaved", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, f.o.Open(context.Background(), currentWeek, existingWeek(100, 0, 100, 0, 100, 0, 100)))

	result, err := f.o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNeedsBudgetConfirmation, result.Status)
	assert.Equal(t, []int{1, 3, 5}, result.OffendingDays)
	require.NotNil(t, result.Prompt)
	assert.Equal(t, domain.GateBudgetValidation, result.Prompt.Gate)
	f.remote.AssertNotCalled(t, "SaveWeeklyData", mock.Anything, mock.Anything)

	focus, ok := f.o.AddBudgets()
	assert.True(t, ok)
	assert.Equal(t, 1, focus)

	result, err = f.o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNeedsBudgetConfirmation, result.Status)

	result, err = f.o.SaveAnyway(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, result.Status)
	for _, i := range []int{1, 3, 5} {
		assert.Equal(t, "0.00", saved.Days[i].BudgetedSales.String())
		assert.True(t, bool(saved.Days[i].IsOpen))
	}
	assert.Equal(t, "100.00", saved.Days[0].BudgetedSales.String())
}

func TestOrchestrator_SubmitFailureKeepsState(t *testing.T) {
	f := setupFixture(t)
	f.expectOpen(goals(false), nil)
	cause := errors.New("500 internal server error")
	f.remote.On("SaveWeeklyData", mock.Anything, mock.Anything).Return(cause).Once()
	f.remote.On("SaveWeeklyData", mock.Anything, mock.Anything).Return(nil).Once()
	f.remote.On("NotifyDataSaved", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, f.o.Open(context.Background(), currentWeek, existingWeek(100, 0, 100, 100, 100, 100, -1)))
	result, err := f.o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNeedsBudgetConfirmation, result.Status)

	_, err = f.o.SaveAnyway(context.Background())
	var submissionErr *domain.SubmissionError
	require.ErrorAs(t, err, &submissionErr)
	assert.ErrorIs(t, err, cause)

	assert.True(t, f.o.IsOpen())
	assert.Equal(t, domain.GateReady, f.o.State())
	assert.Len(t, f.o.Days(), domain.DaysInWeek)

	// retry goes straight to the save without prompting again
	result, err = f.o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, result.Status)
	assert.Len(t, f.prompts, 1)
	f.remote.AssertExpectations(t)
}

func TestOrchestrator_SubmitInFlight(t *testing.T) {
	f := setupFixture(t)
	f.expectOpen(goals(false), nil)

	started := make(chan struct{})
	release := make(chan struct{})
	f.remote.On("SaveWeeklyData", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return(nil).Once()
	f.remote.On("NotifyDataSaved", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, f.o.Open(context.Background(), currentWeek, existingWeek(100, 100, 100, 100, 100, 100, -1)))

	type outcome struct {
		result Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := f.o.Submit(context.Background())
		done <- outcome{result, err}
	}()
	<-started

	result, err := f.o.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrSubmitInFlight)
	assert.Equal(t, StatusInFlight, result.Status)

	close(release)
	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, StatusSubmitted, first.result.Status)
	f.remote.AssertNumberOfCalls(t, "SaveWeeklyData", 1)
}

func TestOrchestrator_SubmitWaitsForLaborGate(t *testing.T) {
	f := setupFixture(t)
	f.expectOpen(goals(false), ratePtr("16.5"))
	f.remote.On("SaveWeeklyData", mock.Anything, mock.Anything).Return(nil).Once()
	f.remote.On("NotifyDataSaved", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, f.o.Open(context.Background(), currentWeek, nil))
	require.NoError(t, f.o.SetField(0, domain.FieldBudgetedSales, dec("100")))

	result, err := f.o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusGatePending, result.Status)
	assert.Nil(t, result.Prompt)

	f.clock.Advance(1500 * time.Millisecond)
	result, err = f.o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusGatePending, result.Status)
	require.NotNil(t, result.Prompt)
	assert.Equal(t, domain.GateLaborRateConfirmation, result.Prompt.Gate)

	assert.True(t, f.o.ChooseLaborRate(gate.UsePreviousRate, decimal.Zero))
	assert.True(t, f.o.Totals().HourlyRate.Equal(dec("16.5")))

	// open days without budget still need confirmation
	result, err = f.o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNeedsBudgetConfirmation, result.Status)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, result.OffendingDays)

	result, err = f.o.SaveAnyway(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, result.Status)
	assert.Equal(t, "prior_week", result.Payload.RateSource)
}

func TestOrchestrator_SetFieldRecomputesTotals(t *testing.T) {
	f := setupFixture(t)
	f.expectOpen(goals(false), nil)
	require.NoError(t, f.o.Open(context.Background(), currentWeek, nil))

	require.NoError(t, f.o.SetField(0, domain.FieldBudgetedSales, dec("250.50")))
	require.NoError(t, f.o.SetField(0, domain.SalesField("doordash"), "40.25"))
	require.NoError(t, f.o.SetField(1, domain.SalesField(domain.ProviderInStore), 100))
	require.NoError(t, f.o.SetField(1, domain.FieldActualLaborHours, 8))

	totals := f.o.Totals()
	assert.True(t, totals.BudgetedSales.Equal(dec("250.50")))
	assert.True(t, totals.NetSalesActual.Equal(dec("140.25")))
	assert.True(t, totals.SalesBySource["doordash"].Equal(dec("40.25")))
	assert.True(t, totals.ActualLaborCost.Equal(dec("120")))

	err := f.o.SetField(6, domain.FieldBudgetedSales, dec("10"))
	assert.ErrorIs(t, err, domain.ErrEditRejected)
}

func TestOrchestrator_DateRangeDebounce(t *testing.T) {
	f := setupFixture(t)
	f.remote.On("GetRestaurantGoals", mock.Anything).Return(goals(false), nil)
	f.remote.On("GetProviderConfig", mock.Anything).Return(providers(), nil)
	f.remote.On("FetchDashboardSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.DashboardSummary{}, nil)

	finalStart := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	finalEnd := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	f.remote.On("FetchCategorySummary", mock.Anything, finalStart, finalEnd).
		Return(domain.CategorySummary{Categories: []domain.CategoryAmount{{Name: "Entrees", Value: dec("10")}}}, nil).Once()

	require.NoError(t, f.o.Open(context.Background(), currentWeek, nil))
	f.o.SetDateRange(currentWeek.StartDate.AddDate(0, 0, -7), currentWeek.EndDate)
	f.clock.Advance(40 * time.Millisecond)
	f.o.SetDateRange(currentWeek.StartDate.AddDate(0, 0, -14), currentWeek.EndDate)
	f.clock.Advance(40 * time.Millisecond)
	f.o.SetDateRange(finalStart, finalEnd)

	// nothing was fetched yet, the local breakdown is shown
	assert.Len(t, f.o.Categories(), 3)

	f.clock.Advance(250 * time.Millisecond)
	f.remote.AssertNumberOfCalls(t, "FetchCategorySummary", 1)
	categories := f.o.Categories()
	require.Len(t, categories, 1)
	assert.Equal(t, "Entrees", categories[0].Name)

	f.o.SetDateRange(finalStart, finalEnd)
	f.clock.Advance(250 * time.Millisecond)
	f.remote.AssertNumberOfCalls(t, "FetchCategorySummary", 1)
}

func TestOrchestrator_PastWeekCancel(t *testing.T) {
	f := setupFixture(t)
	f.expectOpen(goals(false), nil)

	require.NoError(t, f.o.Open(context.Background(), pastWeek, nil))
	assert.Equal(t, domain.GateWeekConfirmation, f.o.State())
	require.Len(t, f.prompts, 1)

	assert.True(t, f.o.CancelWeek())
	assert.Equal(t, domain.GateCancelled, f.o.State())
	assert.Empty(t, f.o.Days())
	assert.False(t, f.o.IsOpen())
	assert.ErrorIs(t, f.o.SetField(0, domain.FieldTicketCount, 1), domain.ErrSessionClosed)

	_, err := f.o.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestOrchestrator_PastWeekConfirm(t *testing.T) {
	f := setupFixture(t)
	f.expectOpen(goals(true), ratePtr("17"))

	require.NoError(t, f.o.Open(context.Background(), pastWeek, nil))
	assert.True(t, f.o.ConfirmWeek())
	assert.Equal(t, domain.GateBudgetValidation, f.o.State())
	assert.Equal(t, domain.PriorWeekRate(dec("17")).Source, f.o.LaborRate().Source)
}

func TestOrchestrator_CloseIsIdempotent(t *testing.T) {
	f := setupFixture(t)
	f.expectOpen(goals(false), nil)
	require.NoError(t, f.o.Open(context.Background(), currentWeek, nil))
	assert.Positive(t, f.clock.PendingCount())

	f.o.Close()
	f.o.Close()
	assert.Equal(t, 0, f.clock.PendingCount())
	assert.False(t, f.o.IsOpen())
	assert.Equal(t, domain.GateWeekConfirmation, f.o.State())

	f.clock.Advance(5 * time.Second)
	assert.Empty(t, f.prompts)
	f.remote.AssertNotCalled(t, "FetchCategorySummary", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_SelectWeekResetsGates(t *testing.T) {
	f := setupFixture(t)
	f.expectOpen(goals(false), nil)

	require.NoError(t, f.o.Open(context.Background(), currentWeek, existingWeek(100, 100, 100, 100, 100, 100, -1)))
	assert.Equal(t, domain.GateBudgetValidation, f.o.State())

	require.NoError(t, f.o.SelectWeek(context.Background(), pastWeek, nil))
	assert.Equal(t, domain.GateWeekConfirmation, f.o.State())
	assert.Equal(t, pastWeek, f.o.Week())
	assert.Equal(t, pastWeek.StartDate, f.o.Days()[0].Date)
	assert.True(t, f.o.Totals().BudgetedSales.IsZero())
}
