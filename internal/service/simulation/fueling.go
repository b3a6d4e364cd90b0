package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/looplab/fsm"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

const (
	StateIdle      = "idle"
	StateFueling   = "fueling"
	StateCompleted = "completed"
	StateAborted   = "aborted"
)

const (
	EventStart    = "start"
	EventComplete = "complete"
	EventAbort    = "abort"
	EventRelease  = "release"
)

var ErrNoVehicle = errors.New("fueling process has no vehicle")

// FuelingLimits are the pump parameters in force when fueling starts.
type FuelingLimits struct {
	Velocity float64 // litres per second
	MaxTime  time.Duration
}

// FuelingPlan is fixed when the vehicle is connected.
type FuelingPlan struct {
	Vehicle   *domain.Vehicle
	StartedAt time.Duration
	Duration  time.Duration
	Litres    float64
	Truncated bool
	Velocity  float64
}

// FuelingResult is what the process reports when it leaves the fueling
// state.
type FuelingResult struct {
	Vehicle     *domain.Vehicle
	Litres      float64
	ServiceTime time.Duration
	StartedAt   time.Duration
	Outcome     domain.ReceiptOutcome
}

// PlanFueling computes how long a fill takes and how much it delivers.
// Delivery stops at the required litres or at the time cap, whichever comes
// first.
func PlanFueling(required float64, limits FuelingLimits) (time.Duration, float64, bool) {
	if required <= 0 || limits.Velocity <= 0 {
		return 0, 0, false
	}
	full := required / limits.Velocity
	limit := limits.MaxTime.Seconds()
	if full <= limit {
		return secondsToDuration(full), required, false
	}
	return limits.MaxTime, math.Min(limits.Velocity*limit, required), true
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// FuelingProcess is the per-pump state machine
// idle → fueling → completed|aborted → idle.
type FuelingProcess struct {
	pumpID int
	fsm    *fsm.FSM
	plan   *FuelingPlan
	result *FuelingResult
}

func NewFuelingProcess(pumpID int) *FuelingProcess {
	p := &FuelingProcess{pumpID: pumpID}

	events := fsm.Events{
		{Name: EventStart, Src: []string{StateIdle}, Dst: StateFueling},
		{Name: EventComplete, Src: []string{StateFueling}, Dst: StateCompleted},
		{Name: EventAbort, Src: []string{StateFueling}, Dst: StateAborted},
		{Name: EventRelease, Src: []string{StateCompleted, StateAborted}, Dst: StateIdle},
	}

	callbacks := fsm.Callbacks{
		"enter_" + StateFueling:   wrapEvent(p.enterFueling),
		"enter_" + StateCompleted: wrapEvent(p.enterCompleted),
		"enter_" + StateAborted:   wrapEvent(p.enterAborted),
		"enter_" + StateIdle:      wrapEvent(p.enterIdle),
	}

	p.fsm = fsm.NewFSM(StateIdle, events, callbacks)
	return p
}

func wrapEvent(fn func(ctx context.Context, e *fsm.Event) error) fsm.Callback {
	return func(ctx context.Context, e *fsm.Event) {
		if err := fn(ctx, e); err != nil {
			e.Err = err
		}
	}
}

func (p *FuelingProcess) State() string { return p.fsm.Current() }

func (p *FuelingProcess) Idle() bool { return p.fsm.Current() == StateIdle }

// Plan returns the fill in progress, if any.
func (p *FuelingProcess) Plan() (FuelingPlan, bool) {
	if p.plan == nil {
		return FuelingPlan{}, false
	}
	return *p.plan, true
}

// Start connects v at logical time now.
func (p *FuelingProcess) Start(ctx context.Context, v *domain.Vehicle, now time.Duration, limits FuelingLimits) (FuelingPlan, error) {
	if v == nil {
		return FuelingPlan{}, ErrNoVehicle
	}
	if err := p.fsm.Event(ctx, EventStart, v, now, limits); err != nil {
		return FuelingPlan{}, fmt.Errorf("pump %d start: %w", p.pumpID, err)
	}
	return *p.plan, nil
}

// Complete finishes the planned fill.
func (p *FuelingProcess) Complete(ctx context.Context, now time.Duration) (FuelingResult, error) {
	if err := p.fsm.Event(ctx, EventComplete, now); err != nil {
		return FuelingResult{}, fmt.Errorf("pump %d complete: %w", p.pumpID, err)
	}
	return *p.result, nil
}

// Abort stops the fill at now and reports the litres delivered so far.
func (p *FuelingProcess) Abort(ctx context.Context, now time.Duration) (FuelingResult, error) {
	if err := p.fsm.Event(ctx, EventAbort, now); err != nil {
		return FuelingResult{}, fmt.Errorf("pump %d abort: %w", p.pumpID, err)
	}
	return *p.result, nil
}

// Release returns the pump to idle.
func (p *FuelingProcess) Release(ctx context.Context) error {
	if err := p.fsm.Event(ctx, EventRelease); err != nil {
		return fmt.Errorf("pump %d release: %w", p.pumpID, err)
	}
	return nil
}

func (p *FuelingProcess) enterFueling(_ context.Context, e *fsm.Event) error {
	if len(e.Args) != 3 {
		return ErrNoVehicle
	}
	v, ok := e.Args[0].(*domain.Vehicle)
	if !ok || v == nil {
		return ErrNoVehicle
	}
	now, _ := e.Args[1].(time.Duration)
	limits, _ := e.Args[2].(FuelingLimits)

	d, litres, truncated := PlanFueling(v.RequiredLitres, limits)
	p.plan = &FuelingPlan{
		Vehicle:   v,
		StartedAt: now,
		Duration:  d,
		Litres:    litres,
		Truncated: truncated,
		Velocity:  limits.Velocity,
	}
	p.result = nil
	return nil
}

func (p *FuelingProcess) enterCompleted(_ context.Context, _ *fsm.Event) error {
	outcome := domain.ReceiptCompleted
	if p.plan.Truncated {
		outcome = domain.ReceiptTruncated
	}
	p.result = &FuelingResult{
		Vehicle:     p.plan.Vehicle,
		Litres:      p.plan.Litres,
		ServiceTime: p.plan.Duration,
		StartedAt:   p.plan.StartedAt,
		Outcome:     outcome,
	}
	return nil
}

func (p *FuelingProcess) enterAborted(_ context.Context, e *fsm.Event) error {
	now, _ := e.Args[0].(time.Duration)
	elapsed := now - p.plan.StartedAt
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > p.plan.Duration {
		elapsed = p.plan.Duration
	}
	litres := math.Min(p.plan.Velocity*elapsed.Seconds(), p.plan.Litres)

	p.result = &FuelingResult{
		Vehicle:     p.plan.Vehicle,
		Litres:      litres,
		ServiceTime: elapsed,
		StartedAt:   p.plan.StartedAt,
		Outcome:     domain.ReceiptAborted,
	}
	return nil
}

func (p *FuelingProcess) enterIdle(_ context.Context, _ *fsm.Event) error {
	p.plan = nil
	return nil
}
