// Package entry drives one weekly sales entry session: it loads goals and
// providers, owns the day records, sequences the gates and submits the week.
package entry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/de-tools/sales-atlas/pkg/clock"
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/aggregation"
	"github.com/de-tools/sales-atlas/pkg/services/debounce"
	"github.com/de-tools/sales-atlas/pkg/services/gate"
	"github.com/de-tools/sales-atlas/pkg/services/submission"
	"github.com/de-tools/sales-atlas/pkg/services/summary"
	"github.com/de-tools/sales-atlas/pkg/store/dayrecord"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const dashboardGroupBy = "day"

type DashboardFetcher interface {
	FetchDashboardSummary(ctx context.Context, start, end time.Time, groupBy string) (domain.DashboardSummary, error)
}

type GoalsSource interface {
	GetRestaurantGoals(ctx context.Context) (domain.RestaurantGoals, error)
}

type ProviderSource interface {
	GetProviderConfig(ctx context.Context) (domain.ProviderConfig, error)
}

// Dependencies are the remote collaborators of a session. Notifier may be nil.
type Dependencies struct {
	Summaries summary.Fetcher
	Dashboard DashboardFetcher
	Goals     GoalsSource
	Providers ProviderSource
	Saver     submission.Saver
	Notifier  submission.Notifier
	Clock     clock.Clock
}

type Options struct {
	DebounceDelay    time.Duration
	LaborPromptDelay time.Duration
}

type Status string

const (
	StatusSubmitted               Status = "submitted"
	StatusNeedsBudgetConfirmation Status = "needs_budget_confirmation"
	StatusGatePending             Status = "gate_pending"
	StatusInFlight                Status = "in_flight"
)

// Result describes the outcome of a submit attempt
type Result struct {
	Status        Status
	OffendingDays []int
	Prompt        *gate.Prompt
	Payload       *api.WeeklyPayload
}

type Orchestrator struct {
	deps    Dependencies
	opts    Options
	clock   clock.Clock
	store   dayrecord.Store
	gates   *gate.Sequencer
	builder *submission.Builder

	mu           sync.Mutex
	open         bool
	submitting   bool
	week         domain.WeekSelection
	goals        domain.RestaurantGoals
	providers    domain.ProviderConfig
	currentRate  decimal.Decimal
	previousRate map[string]*decimal.Decimal
	totals       domain.WeeklyTotals
	cache        *summary.Cache
	rangeStart   time.Time
	rangeEnd     time.Time
}

func NewOrchestrator(deps Dependencies, opts Options) *Orchestrator {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = debounce.DefaultDelay
	}
	if opts.LaborPromptDelay <= 0 {
		opts.LaborPromptDelay = gate.DefaultLaborPromptDelay
	}

	o := &Orchestrator{
		deps:         deps,
		opts:         opts,
		clock:        deps.Clock,
		store:        dayrecord.NewStore(),
		gates:        gate.NewSequencer(deps.Clock, opts.LaborPromptDelay),
		builder:      submission.NewBuilder(deps.Saver, deps.Notifier, deps.Clock),
		previousRate: make(map[string]*decimal.Decimal),
	}
	o.store.Subscribe(o.recompute)
	return o
}

// OnPrompt registers the function called whenever a gate prompt becomes visible
func (o *Orchestrator) OnPrompt(fn gate.Listener) {
	o.gates.OnPrompt(fn)
}

// Open starts a session for week. existing holds previously saved days and may be empty.
func (o *Orchestrator) Open(ctx context.Context, week domain.WeekSelection, existing []domain.DayRecord) error {
	if week.IsZero() {
		return &domain.ValidationError{Reason: domain.MissingWeekData}
	}
	logger := zerolog.Ctx(ctx).With().Str("week_start", week.Key()).Logger()
	ctx = logger.WithContext(ctx)

	goals, err := o.deps.Goals.GetRestaurantGoals(ctx)
	if err != nil {
		logger.Warn().Err(&domain.RemoteFetchError{Op: "get restaurant goals", Err: err}).Msg("using default goals")
		goals = domain.RestaurantGoals{}
	}

	providers, err := o.deps.Providers.GetProviderConfig(ctx)
	if err != nil || len(providers) == 0 {
		if err != nil {
			logger.Warn().Err(&domain.RemoteFetchError{Op: "get provider config", Err: err}).Msg("using base channels only")
		}
		providers = domain.BaseProviders()
	}

	previousRate, currentRate := o.loadRates(ctx, week, goals)

	sessionCtx := context.WithoutCancel(ctx)
	cache := summary.NewCache(sessionCtx, o.deps.Summaries, o.clock, o.opts.DebounceDelay)

	o.mu.Lock()
	if o.cache != nil {
		o.cache.Close()
	}
	o.open = true
	o.submitting = false
	o.week = week
	o.goals = goals
	o.providers = providers
	o.currentRate = currentRate
	o.cache = cache
	o.rangeStart = week.StartDate
	o.rangeEnd = week.EndDate
	o.mu.Unlock()

	o.store.Initialize(week, existing, providers, goals.ClosedDays)
	o.gates.Begin(gate.Input{
		Week:                    week,
		HasExistingData:         len(existing) > 0,
		ForwardPreviousWeekRate: goals.ForwardPreviousWeekRate,
		PreviousRate:            previousRate,
		CurrentRate:             currentRate,
	})
	o.recompute(o.store.Days())
	cache.Request(week.StartDate, week.EndDate)

	logger.Info().
		Int("providers", len(providers)).
		Bool("existing_data", len(existing) > 0).
		Str("gate", o.gates.State().String()).
		Msg("entry session opened")
	return nil
}

// loadRates fetches the dashboard summary once per week. A failed fetch falls
// back to the goals' average hourly rate.
func (o *Orchestrator) loadRates(
	ctx context.Context,
	week domain.WeekSelection,
	goals domain.RestaurantGoals,
) (*decimal.Decimal, decimal.Decimal) {
	current := goals.AvgHourlyRate

	o.mu.Lock()
	previous, fetched := o.previousRate[week.Key()]
	o.mu.Unlock()
	if fetched {
		return previous, current
	}

	dashboard, err := o.deps.Dashboard.FetchDashboardSummary(ctx, week.StartDate, week.EndDate, dashboardGroupBy)
	if err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(&domain.RemoteFetchError{Op: "fetch dashboard summary", Err: err}).
			Msg("using goals hourly rate as previous week rate")
		if goals.AvgHourlyRate.IsPositive() {
			fallback := goals.AvgHourlyRate
			previous = &fallback
		}
	} else {
		previous = dashboard.PreviousWeekAverageHourlyRate
		if dashboard.AverageHourlyRate != nil {
			current = *dashboard.AverageHourlyRate
		}
	}

	o.mu.Lock()
	o.previousRate[week.Key()] = previous
	o.mu.Unlock()
	return previous, current
}

// recompute derives the totals from the store snapshot
func (o *Orchestrator) recompute(days []domain.DayRecord) {
	rate := o.laborRate()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.totals = aggregation.ComputeWeeklyTotals(days, o.providers, rate.Rate)
}

func (o *Orchestrator) laborRate() domain.LaborRateState {
	rate := o.gates.LaborRate()
	if rate.IsSet() {
		return rate
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return domain.CurrentEntryRate(o.currentRate)
}

func (o *Orchestrator) isOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

func (o *Orchestrator) SetField(dayIndex int, field string, value any) error {
	if !o.isOpen() {
		return domain.ErrSessionClosed
	}
	return o.store.SetField(dayIndex, field, value)
}

func (o *Orchestrator) Days() []domain.DayRecord {
	return o.store.Days()
}

func (o *Orchestrator) Totals() domain.WeeklyTotals {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.totals
}

func (o *Orchestrator) Week() domain.WeekSelection {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.week
}

func (o *Orchestrator) Providers() domain.ProviderConfig {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append(domain.ProviderConfig(nil), o.providers...)
}

func (o *Orchestrator) LaborRate() domain.LaborRateState {
	return o.laborRate()
}

func (o *Orchestrator) State() domain.GateState {
	return o.gates.State()
}

func (o *Orchestrator) Prompt() (gate.Prompt, bool) {
	return o.gates.Prompt()
}

func (o *Orchestrator) IsOpen() bool {
	return o.isOpen()
}

func (o *Orchestrator) ConfirmWeek() bool {
	return o.gates.ConfirmWeek()
}

// CancelWeek cancels the session and discards the day records
func (o *Orchestrator) CancelWeek() bool {
	if !o.gates.CancelWeek() {
		return false
	}
	o.mu.Lock()
	o.open = false
	cache := o.cache
	o.mu.Unlock()

	if cache != nil {
		cache.Close()
	}
	o.store.Reset()
	o.recompute(nil)
	return true
}

func (o *Orchestrator) ChooseLaborRate(choice gate.LaborChoice, override decimal.Decimal) bool {
	if !o.gates.ChooseLaborRate(choice, override) {
		return false
	}
	o.recompute(o.store.Days())
	return true
}

func (o *Orchestrator) AddBudgets() (int, bool) {
	return o.gates.AddBudgets()
}

// SaveAnyway accepts the days without budget and submits
func (o *Orchestrator) SaveAnyway(ctx context.Context) (Result, error) {
	if !o.gates.SaveAnyway() {
		prompt, ok := o.gates.Prompt()
		result := Result{Status: StatusGatePending}
		if ok {
			result.Prompt = &prompt
		}
		return result, nil
	}
	return o.Submit(ctx)
}

// SetDateRange asks for the category summary of a range; bursts are debounced
func (o *Orchestrator) SetDateRange(start, end time.Time) {
	o.mu.Lock()
	cache := o.cache
	if o.open {
		o.rangeStart, o.rangeEnd = start, end
	}
	open := o.open
	o.mu.Unlock()

	if open && cache != nil {
		cache.Request(start, end)
	}
}

// Categories is never empty: the remote breakdown of the current range, or
// the local three-category fallback
func (o *Orchestrator) Categories() []domain.CategoryAmount {
	o.mu.Lock()
	cache := o.cache
	start, end := o.rangeStart, o.rangeEnd
	totals := o.totals
	o.mu.Unlock()

	if cache == nil {
		return aggregation.FallbackCategories(totals)
	}
	return cache.Categories(start, end, totals)
}

// Submit runs the budget gate and saves the week once every gate passed.
// A second call while a save runs returns ErrSubmitInFlight.
func (o *Orchestrator) Submit(ctx context.Context) (Result, error) {
	o.mu.Lock()
	if !o.open {
		o.mu.Unlock()
		return Result{}, domain.ErrSessionClosed
	}
	if o.submitting {
		o.mu.Unlock()
		return Result{Status: StatusInFlight}, domain.ErrSubmitInFlight
	}
	o.submitting = true
	week := o.week
	providers := o.providers
	o.mu.Unlock()

	result, err := o.submit(ctx, week, providers)

	o.mu.Lock()
	o.submitting = false
	o.mu.Unlock()

	if err == nil && result.Status == StatusSubmitted {
		o.Close()
	}
	return result, err
}

func (o *Orchestrator) submit(ctx context.Context, week domain.WeekSelection, providers domain.ProviderConfig) (Result, error) {
	logger := zerolog.Ctx(ctx)

	switch o.gates.State() {
	case domain.GateCancelled:
		return Result{}, domain.ErrSessionClosed
	case domain.GateWeekConfirmation, domain.GateLaborRateConfirmation:
		result := Result{Status: StatusGatePending}
		if prompt, ok := o.gates.Prompt(); ok {
			result.Prompt = &prompt
		}
		return result, nil
	}

	days := o.store.Days()
	ready, offending := o.gates.EvaluateBudget(days)
	if !ready {
		result := Result{Status: StatusNeedsBudgetConfirmation, OffendingDays: offending}
		if prompt, ok := o.gates.Prompt(); ok {
			result.Prompt = &prompt
		}
		return result, nil
	}

	rate := o.laborRate()
	totals := aggregation.ComputeWeeklyTotals(days, providers, rate.Rate)
	payload, err := submission.Build(week, days, totals, providers, rate)
	if err != nil {
		return Result{}, err
	}

	if err := o.builder.Submit(ctx, payload); err != nil {
		var submissionErr *domain.SubmissionError
		if !errors.As(err, &submissionErr) {
			err = &domain.SubmissionError{Err: err}
		}
		return Result{}, err
	}

	logger.Info().Str("week_start", payload.WeekStart).Msg("entry session submitted")
	return Result{Status: StatusSubmitted, Payload: &payload}, nil
}

// SelectWeek discards the current session and opens week
func (o *Orchestrator) SelectWeek(ctx context.Context, week domain.WeekSelection, existing []domain.DayRecord) error {
	o.Close()
	return o.Open(ctx, week, existing)
}

// Close stops every pending timer and in-flight fetch and resets the
// one-shot guards. Safe to call more than once.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	cache := o.cache
	o.cache = nil
	o.open = false
	o.submitting = false
	o.mu.Unlock()

	if cache != nil {
		cache.Close()
	}
	o.gates.Reset()
	o.store.Reset()
}
