package simulation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

func TestPlanFueling(t *testing.T) {
	tests := []struct {
		name          string
		required      float64
		limits        FuelingLimits
		wantDuration  time.Duration
		wantLitres    float64
		wantTruncated bool
	}{
		{"fills within cap", 15, FuelingLimits{Velocity: 2, MaxTime: 10 * time.Second}, 7500 * time.Millisecond, 15, false},
		{"exactly at cap", 20, FuelingLimits{Velocity: 2, MaxTime: 10 * time.Second}, 10 * time.Second, 20, false},
		{"cap reached first", 40, FuelingLimits{Velocity: 1.5, MaxTime: 18 * time.Second}, 18 * time.Second, 27, true},
		{"nothing required", 0, FuelingLimits{Velocity: 2, MaxTime: 10 * time.Second}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, litres, truncated := PlanFueling(tt.required, tt.limits)
			if d != tt.wantDuration {
				t.Errorf("expected duration %v, got %v", tt.wantDuration, d)
			}
			if litres != tt.wantLitres {
				t.Errorf("expected %v litres, got %v", tt.wantLitres, litres)
			}
			if truncated != tt.wantTruncated {
				t.Errorf("expected truncated=%v, got %v", tt.wantTruncated, truncated)
			}
		})
	}
}

func TestFuelingProcess_Lifecycle(t *testing.T) {
	ctx := context.Background()
	p := NewFuelingProcess(1)
	v := vehicle("v1", domain.FuelDiesel, 30)
	limits := FuelingLimits{Velocity: 1, MaxTime: time.Minute}

	if _, err := p.Complete(ctx, 0); err == nil {
		t.Fatal("expected complete from idle to fail")
	}

	plan, err := p.Start(ctx, v, 5*time.Second, limits)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if plan.Duration != 30*time.Second || plan.StartedAt != 5*time.Second {
		t.Errorf("unexpected plan %+v", plan)
	}
	if p.State() != StateFueling {
		t.Errorf("expected state %s, got %s", StateFueling, p.State())
	}

	if _, err := p.Start(ctx, v, 6*time.Second, limits); err == nil {
		t.Error("expected second start to fail while fueling")
	}

	res, err := p.Abort(ctx, 17*time.Second)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Litres != 12 || res.ServiceTime != 12*time.Second || res.Outcome != domain.ReceiptAborted {
		t.Errorf("unexpected abort result %+v", res)
	}
	if p.Idle() {
		t.Error("expected pump to stay busy until released")
	}

	if err := p.Release(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !p.Idle() {
		t.Errorf("expected idle after release, got %s", p.State())
	}
	if _, ok := p.Plan(); ok {
		t.Error("expected plan to be cleared")
	}
}

func TestFuelingProcess_StartWithoutVehicle(t *testing.T) {
	p := NewFuelingProcess(1)
	if _, err := p.Start(context.Background(), nil, 0, FuelingLimits{Velocity: 1, MaxTime: time.Second}); !errors.Is(err, ErrNoVehicle) {
		t.Errorf("expected ErrNoVehicle, got %v", err)
	}
}

func TestQueue_BoundAndOrder(t *testing.T) {
	q := NewQueue(2)

	for _, id := range []string{"a", "b"} {
		if err := q.Enqueue(vehicle(id, domain.FuelLPG, 1), 0, time.Second); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	if err := q.Enqueue(vehicle("c", domain.FuelLPG, 1), 0, time.Second); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	entry, ok := q.DequeueForPump()
	if !ok || entry.Vehicle.ID != "a" {
		t.Fatalf("expected a first, got %+v", entry)
	}
	if entry.Vehicle.Status() != domain.VehicleAssigned {
		t.Errorf("expected assigned, got %s", entry.Vehicle.Status())
	}
	if q.Len() != 1 {
		t.Errorf("expected 1 waiting, got %d", q.Len())
	}
}

func TestQueue_AbandonAfterAssignmentLoses(t *testing.T) {
	q := NewQueue(1)
	v := vehicle("a", domain.FuelLPG, 1)
	_ = q.Enqueue(v, 0, time.Second)

	if _, ok := q.DequeueForPump(); !ok {
		t.Fatal("expected dequeue to succeed")
	}
	if _, ok := q.Abandon("a"); ok {
		t.Error("expected abandonment of an assigned vehicle to fail")
	}
	if v.Status() != domain.VehicleAssigned {
		t.Errorf("expected assigned, got %s", v.Status())
	}
}

func TestQueue_ExactlyOneOutcomeUnderContention(t *testing.T) {
	for i := 0; i < 200; i++ {
		q := NewQueue(1)
		v := vehicle("a", domain.FuelDiesel, 1)
		_ = q.Enqueue(v, 0, time.Second)

		var wins atomic.Int32
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, ok := q.DequeueForPump(); ok {
				wins.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			if _, ok := q.Abandon("a"); ok {
				wins.Add(1)
			}
		}()
		wg.Wait()

		if wins.Load() != 1 {
			t.Fatalf("iteration %d: expected exactly one winner, got %d", i, wins.Load())
		}
		if q.Len() != 0 {
			t.Fatalf("iteration %d: expected empty queue, got %d", i, q.Len())
		}
	}
}

func TestQueue_ReducedCapacityKeepsWaiting(t *testing.T) {
	q := NewQueue(3)
	for _, id := range []string{"a", "b", "c"} {
		_ = q.Enqueue(vehicle(id, domain.FuelLPG, 1), 0, time.Second)
	}

	q.SetCapacity(1)

	if q.Len() != 3 {
		t.Errorf("expected 3 still waiting, got %d", q.Len())
	}
	if err := q.Enqueue(vehicle("d", domain.FuelLPG, 1), 0, time.Second); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
	if got := len(q.AbandonAll()); got != 3 {
		t.Errorf("expected 3 abandoned, got %d", got)
	}
}

func TestPumpPool_SelectIdle(t *testing.T) {
	cfg := config.DefaultSimulation()
	cfg.PumpCount = 4
	cfg.PumpPriorities = []int{3, 2, 2}
	pool := NewPumpPool(cfg)

	p, ok := pool.SelectIdle()
	if !ok || p.ID() != 2 {
		t.Fatalf("expected pump 2, got %+v", p)
	}

	_, _ = p.process.Start(context.Background(), vehicle("a", domain.FuelLPG, 5), 0, FuelingLimits{Velocity: 1, MaxTime: time.Minute})

	p, ok = pool.SelectIdle()
	if !ok || p.ID() != 3 {
		t.Fatalf("expected pump 3, got %+v", p)
	}
	if pool.Pumps()[3].Priority() != cfg.LowestPriorityPump {
		t.Errorf("expected unconfigured pump at rank %d, got %d", cfg.LowestPriorityPump, pool.Pumps()[3].Priority())
	}
	if pool.Busy() != 1 {
		t.Errorf("expected 1 busy pump, got %d", pool.Busy())
	}
}

func TestArrivalGenerator(t *testing.T) {
	cfg := config.DefaultSimulation()
	a := NewArrivalGenerator(cfg, 11, nil)
	b := NewArrivalGenerator(cfg, 11, nil)

	var first []string
	for i := 0; i < 100; i++ {
		x, _ := a.Next(0)
		y, _ := b.Next(0)
		if x.Vehicle.ID != y.Vehicle.ID || x.Delay != y.Delay {
			t.Fatalf("expected identical sequences for the same seed at %d", i)
		}
		first = append(first, x.Vehicle.ID)

		if x.Delay < 1500*time.Millisecond || x.Delay > 2200*time.Millisecond {
			t.Errorf("delay %v outside spawn window", x.Delay)
		}
		v := x.Vehicle
		low := v.TankCapacity * (1 - cfg.InitialFillMaxFraction)
		if v.RequiredLitres <= low-1e-9 || v.RequiredLitres > v.TankCapacity {
			t.Errorf("required %v outside (%v, %v]", v.RequiredLitres, low, v.TankCapacity)
		}
		if !v.Kind.Valid() || !v.Fuel.Valid() {
			t.Errorf("invalid kinds %v/%v", v.Kind, v.Fuel)
		}
		if v.ArrivedAt != x.Delay {
			t.Errorf("expected arrival at %v, got %v", x.Delay, v.ArrivedAt)
		}
	}

	a.Reset(11)
	for i := 0; i < 100; i++ {
		x, _ := a.Next(0)
		if x.Vehicle.ID != first[i] {
			t.Fatalf("expected reset to replay the sequence at %d", i)
		}
	}
}

func TestArrivalGenerator_ZeroSpawnWindowStillAdvances(t *testing.T) {
	cfg := config.DefaultSimulation()
	cfg.MinSpawnTime, cfg.MaxSpawnTime = 0, 0
	g := NewArrivalGenerator(cfg, 1, nil)

	a, _ := g.Next(0)
	if a.Delay != minArrivalGap {
		t.Errorf("expected delay %v, got %v", minArrivalGap, a.Delay)
	}
}
