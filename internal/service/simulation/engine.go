package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/observability/telemetry"
	"github.com/seu-repo/sigec-posto/internal/ports"
	"github.com/seu-repo/sigec-posto/internal/service/billing"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

var (
	ErrStopped          = errors.New("simulation stopped")
	ErrPumpCountChanged = errors.New("pump count cannot change during a run")
)

const forever = time.Duration(math.MaxInt64)

type Option func(*Engine)

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func WithBilling(b *billing.Service) Option {
	return func(e *Engine) { e.billing = b }
}

// WithSink registers a receiver for receipts and abandonments. Sinks are
// called on the simulation goroutine with the engine locked; they must not
// call back into the engine.
func WithSink(sink ports.EventSink) Option {
	return func(e *Engine) { e.sinks = append(e.sinks, sink) }
}

// WithArrivals replaces the random arrival generator.
func WithArrivals(src ArrivalSource) Option {
	return func(e *Engine) { e.arrivals = src }
}

func WithFillPolicy(fill FillPolicy) Option {
	return func(e *Engine) { e.fill = fill }
}

func WithRunID(id string) Option {
	return func(e *Engine) { e.runID = id }
}

// Engine runs the forecourt on a logical clock. All state changes happen
// inside events; Snapshot sees either all or none of an event's effects.
type Engine struct {
	mu sync.RWMutex

	cfg     config.Simulation
	log     *zap.Logger
	billing *billing.Service
	sinks   []ports.EventSink
	runID   string
	rng     *rand.Rand

	arrivals  ArrivalSource
	generator *ArrivalGenerator
	fill      FillPolicy

	queue   *Queue
	pool    *PumpPool
	records *RecordStore
	sched   scheduler

	version    uint64
	receiptSeq int
	arrived    int
	rejected   int

	started  bool
	stopping bool
	stopped  bool
}

func New(cfg config.Simulation, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		cfg:     cloneSimulation(cfg),
		log:     zap.NewNop(),
		rng:     rand.New(rand.NewSource(seed + 1)),
		queue:   NewQueue(cfg.MaxQueueSize),
		pool:    NewPumpPool(cfg),
		records: NewRecordStore(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.billing == nil {
		b, err := billing.NewService(billing.DefaultPricingConfig(), e.log)
		if err != nil {
			return nil, err
		}
		e.billing = b
	}
	if e.arrivals == nil {
		e.generator = NewArrivalGenerator(e.cfg, seed, e.fill)
		e.arrivals = e.generator
	}
	if e.runID == "" {
		e.runID = e.newID()
	}
	e.log = e.log.With(zap.String("run_id", e.runID))

	return e, nil
}

func (e *Engine) RunID() string { return e.runID }

// Subscribe adds a sink after construction. Sinks are called with the
// engine lock held and must not call back into the engine.
func (e *Engine) Subscribe(sink ports.EventSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, sink)
}

// Start schedules the first arrival and offers every pump to the queue.
// Running the clock starts the engine implicitly.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLocked()
}

func (e *Engine) startLocked() {
	if e.started {
		return
	}
	e.started = true

	e.log.Info("Simulation started",
		zap.Int("pumps", e.pool.Len()),
		zap.Int("max_queue_size", e.cfg.MaxQueueSize),
		zap.Float64("pump_velocity", e.cfg.PumpVelocity),
	)

	e.scheduleArrival()
	for _, p := range e.pool.Pumps() {
		e.onPumpFree(p)
	}
}

// RunUntil processes every event due at or before t and leaves the clock at
// t. It returns early with the context error if ctx is cancelled.
func (e *Engine) RunUntil(ctx context.Context, t time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runUntilLocked(ctx, t)
}

// RunFor advances the clock by d.
func (e *Engine) RunFor(ctx context.Context, d time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runUntilLocked(ctx, e.sched.now+d)
}

func (e *Engine) runUntilLocked(ctx context.Context, t time.Duration) error {
	if e.stopped {
		return ErrStopped
	}
	e.startLocked()

	for {
		if err := ctx.Err(); err != nil {
			e.updateGauges()
			return err
		}
		if !e.sched.step(t) {
			break
		}
		e.version++
	}
	if t > e.sched.now {
		e.sched.now = t
	}
	e.updateGauges()
	return nil
}

// Step runs the next pending event whatever its time. It reports false when
// nothing is pending.
func (e *Engine) Step() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return false
	}
	e.startLocked()
	if !e.sched.step(forever) {
		return false
	}
	e.version++
	e.updateGauges()
	return true
}

// Stop ends the run. Waiting vehicles are recorded as abandoned and no new
// vehicles arrive. Fills in progress are cut short with a partial receipt
// under StopTruncate, or run to their natural end under StopDrain. A drain
// interrupted by ctx truncates the fills that are left, so the engine is
// always stopped on return.
func (e *Engine) Stop(ctx context.Context, mode domain.StopMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return nil
	}
	e.stopping = true

	for _, entry := range e.queue.AbandonAll() {
		e.recordAbandonment(entry)
	}

	if mode == domain.StopDrain {
		if err := e.drain(ctx); err != nil {
			e.log.Warn("Drain interrupted, truncating fills in progress", zap.Error(err))
		}
	}

	// Whatever is still fueling ends now. The fsm refuses transitions on a
	// cancelled context, so the abort runs detached from ctx.
	for _, p := range e.pool.Pumps() {
		if p.Idle() {
			continue
		}
		res, err := p.process.Abort(context.WithoutCancel(ctx), e.sched.now)
		if err != nil {
			e.log.Error("Failed to abort fueling", zap.Int("pump_id", p.id), zap.Error(err))
			continue
		}
		e.finish(p, res)
	}

	e.sched.clear()
	e.stopped = true
	e.version++
	e.updateGauges()

	e.log.Info("Simulation stopped",
		zap.String("mode", string(mode)),
		zap.Duration("now", e.sched.now),
		zap.Int("receipts", e.records.ReceiptCount()),
	)
	return nil
}

// drain runs events until no pump is busy or ctx is done.
func (e *Engine) drain(ctx context.Context) error {
	for e.pool.Busy() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !e.sched.step(forever) {
			break
		}
	}
	return nil
}

// UpdateConfig applies new parameters to subsequent decisions. Fills in
// progress keep the limits they started with, and the pump count is fixed
// for the lifetime of the run.
func (e *Engine) UpdateConfig(cfg config.Simulation) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if cfg.PumpCount != e.pool.Len() {
		return fmt.Errorf("%w: running with %d, got %d", ErrPumpCountChanged, e.pool.Len(), cfg.PumpCount)
	}

	e.cfg = cloneSimulation(cfg)
	e.queue.SetCapacity(cfg.MaxQueueSize)
	e.pool.SetPriorities(cfg.PumpPriorities, cfg.LowestPriorityPump)
	if e.generator != nil {
		e.generator.SetConfig(e.cfg)
	}
	e.version++

	e.log.Info("Simulation settings updated",
		zap.Int("max_queue_size", cfg.MaxQueueSize),
		zap.Float64("pump_velocity", cfg.PumpVelocity),
		zap.Ints("pump_priorities", cfg.PumpPriorities),
	)
	return nil
}

func (e *Engine) Config() config.Simulation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneSimulation(e.cfg)
}

func (e *Engine) Now() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sched.now
}

func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return domain.Snapshot{
		Version:      e.version,
		RunID:        e.runID,
		Now:          e.sched.now,
		Stopped:      e.stopped,
		QueueLength:  e.queue.Len(),
		Arrived:      e.arrived,
		Rejected:     e.rejected,
		Pumps:        e.pool.Information(),
		Receipts:     e.records.Receipts(),
		Abandonments: e.records.Abandonments(),
	}
}

func (e *Engine) scheduleArrival() {
	if e.stopping {
		return
	}
	a, ok := e.arrivals.Next(e.sched.now)
	if !ok {
		return
	}
	e.sched.after(a.Delay, "arrival", func() {
		e.onArrival(a.Vehicle)
		e.scheduleArrival()
	})
}

func (e *Engine) onArrival(v *domain.Vehicle) {
	if e.stopping {
		return
	}
	e.arrived++
	telemetry.VehiclesArrivedTotal.Inc()

	now := e.sched.now
	deadline := now + uniformMillis(e.rng, e.cfg.MinServiceTime, e.cfg.MaxServiceTime)
	if err := e.queue.Enqueue(v, now, deadline); err != nil {
		e.rejected++
		telemetry.VehiclesRejectedTotal.Inc()
		e.log.Debug("Vehicle turned away",
			zap.String("vehicle_id", v.ID),
			zap.Int("queue_length", e.queue.Len()),
			zap.Error(err),
		)
		return
	}

	id := v.ID
	e.sched.schedule(deadline, "wait.timeout", func() { e.onTimeout(id) })
	e.dispatch()
}

func (e *Engine) onTimeout(vehicleID string) {
	entry, ok := e.queue.Abandon(vehicleID)
	if !ok {
		return
	}
	e.recordAbandonment(entry)
}

// onPumpFree runs whenever a pump becomes idle, at startup or after a fill.
func (e *Engine) onPumpFree(p *Pump) {
	e.log.Debug("Pump free", zap.Int("pump_id", p.id), zap.Int("priority", p.priority))
	e.dispatch()
}

// dispatch hands waiting vehicles to idle pumps, best rank first.
func (e *Engine) dispatch() {
	for e.queue.Len() > 0 {
		p, ok := e.pool.SelectIdle()
		if !ok {
			return
		}
		entry, ok := e.queue.DequeueForPump()
		if !ok {
			return
		}
		e.startFueling(p, entry)
	}
}

func (e *Engine) startFueling(p *Pump, entry Entry) {
	limits := FuelingLimits{
		Velocity: e.cfg.PumpVelocity,
		MaxTime:  time.Duration(e.cfg.MaxFuelingTime) * time.Second,
	}
	plan, err := p.process.Start(context.Background(), entry.Vehicle, e.sched.now, limits)
	if err != nil {
		e.log.Error("Failed to start fueling", zap.Int("pump_id", p.id), zap.Error(err))
		return
	}

	p.gen++
	gen := p.gen
	e.sched.after(plan.Duration, "fueling.complete", func() {
		if p.gen != gen {
			return
		}
		e.onFuelingComplete(p)
	})

	e.log.Debug("Fueling started",
		zap.Int("pump_id", p.id),
		zap.String("vehicle_id", entry.Vehicle.ID),
		zap.Duration("waited", e.sched.now-entry.QueuedAt),
		zap.Duration("duration", plan.Duration),
		zap.Float64("litres", plan.Litres),
	)
}

func (e *Engine) onFuelingComplete(p *Pump) {
	res, err := p.process.Complete(context.Background(), e.sched.now)
	if err != nil {
		e.log.Error("Failed to complete fueling", zap.Int("pump_id", p.id), zap.Error(err))
		return
	}
	e.finish(p, res)
}

// finish issues the receipt for a fill that left the fueling state and frees
// the pump.
func (e *Engine) finish(p *Pump, res FuelingResult) {
	v := res.Vehicle
	r := e.issue(domain.Receipt{
		VehicleID:      v.ID,
		VehicleKind:    v.Kind,
		FuelKind:       v.Fuel,
		PumpID:         p.id,
		Litres:         res.Litres,
		RequiredLitres: v.RequiredLitres,
		ServiceTime:    res.ServiceTime,
		StartedAt:      res.StartedAt,
		Outcome:        res.Outcome,
	})
	p.record(r)
	v.CompareAndSwapStatus(domain.VehicleAssigned, domain.VehicleCompleted)

	p.gen++
	if err := p.process.Release(context.Background()); err != nil {
		e.log.Error("Failed to release pump", zap.Int("pump_id", p.id), zap.Error(err))
		return
	}
	e.onPumpFree(p)
}

func (e *Engine) recordAbandonment(entry Entry) {
	v := entry.Vehicle
	a := domain.Abandonment{
		RunID:       e.runID,
		VehicleID:   v.ID,
		VehicleKind: v.Kind,
		FuelKind:    v.Fuel,
		QueuedAt:    entry.QueuedAt,
		AbandonedAt: e.sched.now,
	}
	e.records.AppendAbandonment(a)
	telemetry.VehiclesAbandonedTotal.Inc()

	if e.cfg.RecordAbandonments {
		e.issue(domain.Receipt{
			VehicleID:      v.ID,
			VehicleKind:    v.Kind,
			FuelKind:       v.Fuel,
			RequiredLitres: v.RequiredLitres,
			StartedAt:      entry.QueuedAt,
			Outcome:        domain.ReceiptAbandoned,
		})
	}

	for _, sink := range e.sinks {
		sink.VehicleAbandoned(a)
	}

	e.log.Debug("Vehicle abandoned the queue",
		zap.String("vehicle_id", v.ID),
		zap.Duration("waited", a.Waited()),
	)
}

// issue completes r with its identity and price and appends it to the log.
func (e *Engine) issue(r domain.Receipt) domain.Receipt {
	e.receiptSeq++
	r.ID = e.newID()
	r.RunID = e.runID
	r.Sequence = e.receiptSeq
	r.IssuedAt = e.sched.now
	r.CreatedAt = time.Now().UTC()

	price, cost, err := e.billing.CalculateCost(r.FuelKind, r.Litres)
	if err != nil {
		e.log.Warn("Receipt issued without price", zap.String("vehicle_id", r.VehicleID), zap.Error(err))
	}
	r.UnitPrice, r.Cost = price, cost

	e.records.AppendReceipt(r)

	telemetry.ReceiptsTotal.WithLabelValues(string(r.Outcome)).Inc()
	if r.Litres > 0 {
		telemetry.LitresDispensedTotal.WithLabelValues(r.FuelKind.String()).Add(r.Litres)
		telemetry.RevenueTotal.Add(r.Cost)
	}

	for _, sink := range e.sinks {
		sink.ReceiptIssued(r)
	}
	return r
}

func (e *Engine) newID() string {
	id, err := uuid.NewRandomFromReader(e.rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (e *Engine) updateGauges() {
	telemetry.QueueLength.Set(float64(e.queue.Len()))
	telemetry.PumpsBusy.Set(float64(e.pool.Busy()))
}

func cloneSimulation(cfg config.Simulation) config.Simulation {
	cfg.PumpPriorities = append([]int(nil), cfg.PumpPriorities...)
	return cfg
}
