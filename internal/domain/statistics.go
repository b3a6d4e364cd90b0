package domain

// FuelBreakdown is the per-fuel slice of FuelStats.
type FuelBreakdown struct {
	Fuel          FuelKind `json:"fuel"`
	Litres        float64  `json:"litres"`
	Vehicles      int      `json:"vehicles"`
	AverageLitres float64  `json:"average_litres"`
}

// FuelStats summarises dispensed fuel and pump usage.
type FuelStats struct {
	TotalLitres    float64         `json:"total_litres"`
	ServedVehicles int             `json:"served_vehicles"`
	AverageLitres  float64         `json:"average_litres"`
	ByFuel         []FuelBreakdown `json:"by_fuel"`
	MostUsedFuel   FuelKind        `json:"most_used_fuel"`
	LeastUsedFuel  FuelKind        `json:"least_used_fuel"`
	PumpUsage      []int           `json:"pump_usage"`
	MostUsedPump   int             `json:"most_used_pump"`
	LeastUsedPump  int             `json:"least_used_pump"`
}

// VehicleFuelPair names one cell of the vehicle × fuel table.
type VehicleFuelPair struct {
	Vehicle VehicleKind `json:"vehicle"`
	Fuel    FuelKind    `json:"fuel"`
}

type VehicleAverage struct {
	Vehicle               VehicleKind `json:"vehicle"`
	Count                 int         `json:"count"`
	AverageServiceSeconds float64     `json:"average_service_seconds"`
}

// VehicleStats is the vehicle-kind × fuel-kind contingency table and the
// figures derived from it. ServiceMillis accumulates service time per cell.
type VehicleStats struct {
	Counts                [VehicleKindCount][FuelKindCount]int     `json:"counts"`
	ServiceMillis         [VehicleKindCount][FuelKindCount]float64 `json:"service_millis"`
	MostCommon            VehicleFuelPair                          `json:"most_common"`
	MostCommonByFuel      []VehicleFuelPair                        `json:"most_common_by_fuel"`
	AverageServiceSeconds float64                                  `json:"average_service_seconds"`
	ByVehicle             []VehicleAverage                         `json:"by_vehicle"`
	Abandoned             int                                      `json:"abandoned"`
}

type FinancialStats struct {
	Revenue              float64 `json:"revenue"`
	Commission           float64 `json:"commission"`
	Salary               float64 `json:"salary"`
	SalaryPlusCommission float64 `json:"salary_plus_commission"`
	Currency             string  `json:"currency"`
}

// StatisticsReport bundles the three summaries computed from one snapshot.
type StatisticsReport struct {
	Version  uint64         `json:"version"`
	Fuel     FuelStats      `json:"fuel"`
	Vehicles VehicleStats   `json:"vehicles"`
	Finance  FinancialStats `json:"finance"`
}
