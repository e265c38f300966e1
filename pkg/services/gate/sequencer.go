// Package gate sequences the confirmations that must pass before a week can be saved:
// week confirmation, labor rate confirmation and budget validation.
package gate

import (
	"sync"
	"time"

	"github.com/de-tools/sales-atlas/pkg/clock"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/aggregation"
	"github.com/shopspring/decimal"
)

const DefaultLaborPromptDelay = 1500 * time.Millisecond

type LaborChoice int

const (
	UsePreviousRate LaborChoice = iota
	UseCurrentRate
	ContinueWithCurrent
	OverrideRate
)

func (c LaborChoice) String() string {
	switch c {
	case UsePreviousRate:
		return "use_previous_rate"
	case UseCurrentRate:
		return "use_current_rate"
	case ContinueWithCurrent:
		return "continue_with_current"
	case OverrideRate:
		return "override_rate"
	default:
		return "unknown"
	}
}

func ParseLaborChoice(s string) (LaborChoice, bool) {
	for _, c := range []LaborChoice{UsePreviousRate, UseCurrentRate, ContinueWithCurrent, OverrideRate} {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// Prompt is the question currently put to the user
type Prompt struct {
	Gate          domain.GateState
	PreviousRate  *decimal.Decimal
	ManualEntry   bool
	OffendingDays []int
}

type Listener func(Prompt)

// Input describes the session the gates are evaluated for
type Input struct {
	Week                    domain.WeekSelection
	HasExistingData         bool
	ForwardPreviousWeekRate bool
	PreviousRate            *decimal.Decimal
	CurrentRate             decimal.Decimal
	ExistingRate            domain.LaborRateState
}

// Sequencer is a one-way state machine toward GateReady. Gates satisfied in a
// session never prompt again; only Reset clears them.
type Sequencer struct {
	mu         sync.Mutex
	clock      clock.Clock
	delay      time.Duration
	listener   Listener
	input      Input
	state      domain.GateState
	satisfied  map[domain.GateState]bool
	prompt     *Prompt
	rate       domain.LaborRateState
	timer      *clock.Timer
	prompted   bool
	generation uint64
}

func NewSequencer(c clock.Clock, laborPromptDelay time.Duration) *Sequencer {
	if c == nil {
		c = clock.Real()
	}
	if laborPromptDelay <= 0 {
		laborPromptDelay = DefaultLaborPromptDelay
	}
	return &Sequencer{
		clock:     c,
		delay:     laborPromptDelay,
		state:     domain.GateWeekConfirmation,
		satisfied: make(map[domain.GateState]bool),
	}
}

// OnPrompt registers the function called whenever a prompt becomes visible
func (s *Sequencer) OnPrompt(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = fn
}

// Begin evaluates the week gate for in and advances through every gate that
// does not need the user
func (s *Sequencer) Begin(in Input) {
	s.mu.Lock()
	s.input = in
	// a rate chosen at the labor gate outlives a re-Begin
	if !s.satisfied[domain.GateLaborRateConfirmation] {
		s.rate = in.ExistingRate
	}
	s.state = domain.GateWeekConfirmation
	s.prompt = nil

	if !s.satisfied[domain.GateWeekConfirmation] && in.Week.IsCurrentWeek(s.clock.Now()) {
		s.satisfied[domain.GateWeekConfirmation] = true
	}
	if s.satisfied[domain.GateWeekConfirmation] {
		s.enterLaborLocked()
		s.unlockAndAnnounce(false)
		return
	}
	s.prompt = &Prompt{Gate: domain.GateWeekConfirmation}
	s.unlockAndAnnounce(true)
}

func (s *Sequencer) enterLaborLocked() {
	s.state = domain.GateLaborRateConfirmation
	if s.satisfied[domain.GateLaborRateConfirmation] {
		s.state = domain.GateBudgetValidation
		return
	}

	if !s.input.HasExistingData && !s.input.ForwardPreviousWeekRate {
		if s.prompted {
			// already shown this session, restore it without firing again
			s.prompt = &Prompt{Gate: domain.GateLaborRateConfirmation, PreviousRate: s.input.PreviousRate}
			return
		}
		if s.timer != nil {
			return
		}
		generation := s.generation
		s.timer = s.clock.AfterFunc(s.delay, func() {
			s.showLaborPrompt(generation)
		})
		return
	}

	switch {
	case s.input.ForwardPreviousWeekRate && s.input.PreviousRate != nil:
		s.rate = domain.PriorWeekRate(*s.input.PreviousRate)
	case !s.rate.IsSet():
		s.rate = domain.CurrentEntryRate(s.input.CurrentRate)
	}
	s.satisfied[domain.GateLaborRateConfirmation] = true
	s.state = domain.GateBudgetValidation
}

func (s *Sequencer) showLaborPrompt(generation uint64) {
	s.mu.Lock()
	s.timer = nil
	if generation != s.generation || s.state != domain.GateLaborRateConfirmation || s.prompted {
		s.mu.Unlock()
		return
	}
	s.prompted = true
	s.prompt = &Prompt{
		Gate:         domain.GateLaborRateConfirmation,
		PreviousRate: s.input.PreviousRate,
	}
	s.unlockAndAnnounce(true)
}

// unlockAndAnnounce releases the lock, then hands the visible prompt to the listener
func (s *Sequencer) unlockAndAnnounce(announce bool) {
	listener := s.listener
	var prompt Prompt
	visible := announce && s.prompt != nil
	if visible {
		prompt = copyPrompt(*s.prompt)
	}
	s.mu.Unlock()

	if visible && listener != nil {
		listener(prompt)
	}
}

func (s *Sequencer) State() domain.GateState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Sequencer) Prompt() (Prompt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prompt == nil {
		return Prompt{}, false
	}
	return copyPrompt(*s.prompt), true
}

func (s *Sequencer) Satisfied(state domain.GateState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.satisfied[state]
}

func (s *Sequencer) LaborRate() domain.LaborRateState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// SetCurrentRate records a rate edited during the session
func (s *Sequencer) SetCurrentRate(rate decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input.CurrentRate = rate
	if s.rate.Source == domain.RateFromCurrentEntry {
		s.rate = domain.CurrentEntryRate(rate)
	}
}

func (s *Sequencer) promptFor(state domain.GateState) bool {
	return s.state == state && s.prompt != nil && s.prompt.Gate == state
}

func (s *Sequencer) ConfirmWeek() bool {
	s.mu.Lock()
	if !s.promptFor(domain.GateWeekConfirmation) {
		s.mu.Unlock()
		return false
	}
	s.prompt = nil
	s.satisfied[domain.GateWeekConfirmation] = true
	s.enterLaborLocked()
	s.unlockAndAnnounce(true)
	return true
}

// CancelWeek moves to the terminal Cancelled state
func (s *Sequencer) CancelWeek() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.promptFor(domain.GateWeekConfirmation) {
		return false
	}
	s.prompt = nil
	s.state = domain.GateCancelled
	s.timer.Stop()
	s.timer = nil
	return true
}

// ChooseLaborRate resolves the labor rate prompt. UsePreviousRate without a
// known previous rate switches the prompt to manual entry and returns false.
func (s *Sequencer) ChooseLaborRate(choice LaborChoice, override decimal.Decimal) bool {
	s.mu.Lock()
	if !s.promptFor(domain.GateLaborRateConfirmation) {
		s.mu.Unlock()
		return false
	}

	switch choice {
	case UsePreviousRate:
		if s.input.PreviousRate == nil {
			s.prompt.ManualEntry = true
			s.unlockAndAnnounce(true)
			return false
		}
		s.rate = domain.PriorWeekRate(*s.input.PreviousRate)
	case UseCurrentRate:
		s.rate = domain.CurrentEntryRate(s.input.CurrentRate)
	case ContinueWithCurrent:
		if !s.rate.IsSet() {
			s.rate = domain.CurrentEntryRate(s.input.CurrentRate)
		}
	case OverrideRate:
		if override.IsNegative() {
			s.mu.Unlock()
			return false
		}
		s.rate = domain.OverrideRate(override)
	default:
		s.mu.Unlock()
		return false
	}

	s.prompt = nil
	s.satisfied[domain.GateLaborRateConfirmation] = true
	s.state = domain.GateBudgetValidation
	s.mu.Unlock()
	return true
}

// EvaluateBudget runs the budget gate. It returns true once the sequencer is
// Ready; otherwise the offending open days are returned and prompted.
func (s *Sequencer) EvaluateBudget(days []domain.DayRecord) (bool, []int) {
	s.mu.Lock()
	switch s.state {
	case domain.GateReady:
		s.mu.Unlock()
		return true, nil
	case domain.GateBudgetValidation:
	default:
		s.mu.Unlock()
		return false, nil
	}

	offending := aggregation.OffendingBudgetDays(days)
	if len(offending) == 0 {
		s.prompt = nil
		s.satisfied[domain.GateBudgetValidation] = true
		s.state = domain.GateReady
		s.mu.Unlock()
		return true, nil
	}

	s.prompt = &Prompt{Gate: domain.GateBudgetValidation, OffendingDays: offending}
	s.unlockAndAnnounce(true)
	return false, append([]int(nil), offending...)
}

// AddBudgets dismisses the budget prompt and returns the first offending day to focus
func (s *Sequencer) AddBudgets() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.promptFor(domain.GateBudgetValidation) || len(s.prompt.OffendingDays) == 0 {
		return 0, false
	}
	focus := s.prompt.OffendingDays[0]
	s.prompt = nil
	return focus, true
}

// SaveAnyway accepts the zero budgets and moves to Ready
func (s *Sequencer) SaveAnyway() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.promptFor(domain.GateBudgetValidation) {
		return false
	}
	s.prompt = nil
	s.satisfied[domain.GateBudgetValidation] = true
	s.state = domain.GateReady
	return true
}

// Reset stops pending prompt timers and clears the satisfied set
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Stop()
	s.timer = nil
	s.generation++
	s.prompted = false
	s.prompt = nil
	s.input = Input{}
	s.rate = domain.LaborRateState{}
	s.state = domain.GateWeekConfirmation
	s.satisfied = make(map[domain.GateState]bool)
}

func copyPrompt(p Prompt) Prompt {
	p.OffendingDays = append([]int(nil), p.OffendingDays...)
	if p.PreviousRate != nil {
		rate := *p.PreviousRate
		p.PreviousRate = &rate
	}
	return p
}
