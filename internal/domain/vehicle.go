package domain

import (
	"database/sql/driver"
	"fmt"
	"sync/atomic"
	"time"
)

type VehicleKind int

const (
	VehicleCar VehicleKind = iota
	VehicleVan
	VehicleLorry
)

// VehicleKindCount is the number of vehicle kinds; kinds index arrays in
// enumeration order.
const VehicleKindCount = 3

var VehicleKinds = [VehicleKindCount]VehicleKind{VehicleCar, VehicleVan, VehicleLorry}

var vehicleKindNames = [VehicleKindCount]string{"Car", "Van", "Lorry"}

func (k VehicleKind) Valid() bool {
	return k >= 0 && int(k) < VehicleKindCount
}

// Index returns the array position of k, or false for an unknown kind.
func (k VehicleKind) Index() (int, bool) {
	if !k.Valid() {
		return 0, false
	}
	return int(k), true
}

func (k VehicleKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("VehicleKind(%d)", int(k))
	}
	return vehicleKindNames[k]
}

func (k VehicleKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown vehicle kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *VehicleKind) UnmarshalText(b []byte) error {
	parsed, err := ParseVehicleKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k VehicleKind) Value() (driver.Value, error) {
	return k.String(), nil
}

func (k *VehicleKind) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return k.UnmarshalText([]byte(v))
	case []byte:
		return k.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into VehicleKind", src)
	}
}

func ParseVehicleKind(s string) (VehicleKind, error) {
	for i, name := range vehicleKindNames {
		if name == s {
			return VehicleKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown vehicle kind %q", s)
}

type FuelKind int

const (
	FuelDiesel FuelKind = iota
	FuelGasoline
	FuelLPG
)

const FuelKindCount = 3

var FuelKinds = [FuelKindCount]FuelKind{FuelDiesel, FuelGasoline, FuelLPG}

var fuelKindNames = [FuelKindCount]string{"Diesel", "Gasoline", "LPG"}

func (f FuelKind) Valid() bool {
	return f >= 0 && int(f) < FuelKindCount
}

func (f FuelKind) Index() (int, bool) {
	if !f.Valid() {
		return 0, false
	}
	return int(f), true
}

func (f FuelKind) String() string {
	if !f.Valid() {
		return fmt.Sprintf("FuelKind(%d)", int(f))
	}
	return fuelKindNames[f]
}

func (f FuelKind) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("unknown fuel kind %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *FuelKind) UnmarshalText(b []byte) error {
	parsed, err := ParseFuelKind(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f FuelKind) Value() (driver.Value, error) {
	return f.String(), nil
}

func (f *FuelKind) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return f.UnmarshalText([]byte(v))
	case []byte:
		return f.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into FuelKind", src)
	}
}

func ParseFuelKind(s string) (FuelKind, error) {
	for i, name := range fuelKindNames {
		if name == s {
			return FuelKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown fuel kind %q", s)
}

// VehicleStatus is the lifecycle position of a vehicle. A vehicle leaves
// VehicleQueued exactly once, through CompareAndSwapStatus.
type VehicleStatus int32

const (
	VehicleQueued VehicleStatus = iota
	VehicleAssigned
	VehicleAbandoned
	VehicleCompleted
)

func (s VehicleStatus) String() string {
	switch s {
	case VehicleQueued:
		return "Queued"
	case VehicleAssigned:
		return "Assigned"
	case VehicleAbandoned:
		return "Abandoned"
	case VehicleCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Vehicle is created by the arrival generator. Apart from its status it is
// never modified after creation. Times are logical simulation offsets.
type Vehicle struct {
	ID             string        `json:"id"`
	Kind           VehicleKind   `json:"kind"`
	Fuel           FuelKind      `json:"fuel"`
	TankCapacity   float64       `json:"tank_capacity"`
	RequiredLitres float64       `json:"required_litres"`
	ArrivedAt      time.Duration `json:"arrived_at"`
	QueuedAt       time.Duration `json:"queued_at"`

	status atomic.Int32
}

func (v *Vehicle) Status() VehicleStatus {
	return VehicleStatus(v.status.Load())
}

// CompareAndSwapStatus moves the vehicle from one status to another and
// reports whether this caller won the transition.
func (v *Vehicle) CompareAndSwapStatus(from, to VehicleStatus) bool {
	return v.status.CompareAndSwap(int32(from), int32(to))
}
