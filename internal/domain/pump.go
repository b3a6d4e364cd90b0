package domain

type PumpState string

const (
	PumpIdle    PumpState = "Idle"
	PumpFueling PumpState = "Fueling"
)

// PumpInformation is a point-in-time copy of one pump with its cumulative
// counters and the last receipt it issued.
type PumpInformation struct {
	ID               int                    `json:"id"`
	Priority         int                    `json:"priority"`
	State            PumpState              `json:"state"`
	CurrentVehicleID string                 `json:"current_vehicle_id,omitempty"`
	LitresDispensed  [FuelKindCount]float64 `json:"litres_dispensed"`
	VehiclesByFuel   [FuelKindCount]int     `json:"vehicles_by_fuel"`
	VehiclesByKind   [VehicleKindCount]int  `json:"vehicles_by_kind"`
	Receipt          *Receipt               `json:"receipt,omitempty"`
}

// Served is the total number of vehicles the pump has finished with.
func (p PumpInformation) Served() int {
	n := 0
	for _, c := range p.VehiclesByFuel {
		n += c
	}
	return n
}
