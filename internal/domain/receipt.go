package domain

import (
	"time"
)

type ReceiptOutcome string

const (
	// ReceiptCompleted: the vehicle left with a full tank.
	ReceiptCompleted ReceiptOutcome = "Completed"
	// ReceiptTruncated: the fueling cap was reached first.
	ReceiptTruncated ReceiptOutcome = "Truncated"
	// ReceiptAborted: the simulation stopped while the vehicle was fueling.
	ReceiptAborted ReceiptOutcome = "Aborted"
	// ReceiptAbandoned: zero receipt for a vehicle that left the queue.
	ReceiptAbandoned ReceiptOutcome = "Abandoned"
)

// Receipt is the immutable record of one transaction. Logical times are
// offsets from the start of the run; CreatedAt is wall-clock.
type Receipt struct {
	ID             string         `json:"id" gorm:"primaryKey"`
	RunID          string         `json:"run_id" gorm:"index"`
	Sequence       int            `json:"sequence"`
	VehicleID      string         `json:"vehicle_id" gorm:"index"`
	VehicleKind    VehicleKind    `json:"vehicle_kind" gorm:"type:varchar(16)"`
	FuelKind       FuelKind       `json:"fuel_kind" gorm:"type:varchar(16)"`
	PumpID         int            `json:"pump_id" gorm:"index"`
	Litres         float64        `json:"litres"`
	RequiredLitres float64        `json:"required_litres"`
	UnitPrice      float64        `json:"unit_price"`
	Cost           float64        `json:"cost"`
	ServiceTime    time.Duration  `json:"service_time"`
	StartedAt      time.Duration  `json:"started_at"`
	IssuedAt       time.Duration  `json:"issued_at"`
	Outcome        ReceiptOutcome `json:"outcome" gorm:"type:varchar(16)"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ServiceMillis is the service time in milliseconds, the unit the
// statistics are accumulated in.
func (r *Receipt) ServiceMillis() float64 {
	return float64(r.ServiceTime) / float64(time.Millisecond)
}

// Served reports whether the receipt documents fuel actually dispensed at
// a pump, as opposed to an abandonment record.
func (r *Receipt) Served() bool {
	return r.Outcome != ReceiptAbandoned && r.PumpID > 0
}

// Abandonment records a vehicle that left the queue unserved.
type Abandonment struct {
	RunID       string        `json:"run_id"`
	VehicleID   string        `json:"vehicle_id"`
	VehicleKind VehicleKind   `json:"vehicle_kind"`
	FuelKind    FuelKind      `json:"fuel_kind"`
	QueuedAt    time.Duration `json:"queued_at"`
	AbandonedAt time.Duration `json:"abandoned_at"`
}

// Waited is how long the vehicle stood in the queue.
func (a Abandonment) Waited() time.Duration {
	return a.AbandonedAt - a.QueuedAt
}
