package statistics

import (
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// Aggregation is pure: the same snapshot always yields the same figures.
// Records that cannot be attributed (unknown fuel or vehicle kind, pump id
// outside the pool, abandonment receipts) are left out of the sums.

// ComputeFuelStats summarises dispensing from the pump counters and pump
// usage from the receipts.
func ComputeFuelStats(snap domain.Snapshot) domain.FuelStats {
	var litres [domain.FuelKindCount]float64
	var vehicles [domain.FuelKindCount]int

	for _, p := range snap.Pumps {
		for i := range domain.FuelKinds {
			litres[i] += p.LitresDispensed[i]
			vehicles[i] += p.VehiclesByFuel[i]
		}
	}

	stats := domain.FuelStats{
		ByFuel:    make([]domain.FuelBreakdown, domain.FuelKindCount),
		PumpUsage: make([]int, len(snap.Pumps)),
	}

	most, least := 0, 0
	for i, fuel := range domain.FuelKinds {
		stats.TotalLitres += litres[i]
		stats.ServedVehicles += vehicles[i]
		stats.ByFuel[i] = domain.FuelBreakdown{
			Fuel:          fuel,
			Litres:        litres[i],
			Vehicles:      vehicles[i],
			AverageLitres: average(litres[i], vehicles[i]),
		}
		if litres[i] > litres[most] {
			most = i
		}
		if litres[i] < litres[least] {
			least = i
		}
	}
	stats.AverageLitres = average(stats.TotalLitres, stats.ServedVehicles)
	stats.MostUsedFuel = domain.FuelKinds[most]
	stats.LeastUsedFuel = domain.FuelKinds[least]

	for i := range snap.Receipts {
		r := &snap.Receipts[i]
		if !r.Served() || r.PumpID > len(stats.PumpUsage) {
			continue
		}
		stats.PumpUsage[r.PumpID-1]++
	}
	if len(stats.PumpUsage) > 0 {
		maxIdx, minIdx := 0, 0
		for i, n := range stats.PumpUsage {
			if n > stats.PumpUsage[maxIdx] {
				maxIdx = i
			}
			if n < stats.PumpUsage[minIdx] {
				minIdx = i
			}
		}
		stats.MostUsedPump = maxIdx + 1
		stats.LeastUsedPump = minIdx + 1
	}

	return stats
}

// ComputeVehicleStats builds the vehicle × fuel table from served receipts.
func ComputeVehicleStats(snap domain.Snapshot) domain.VehicleStats {
	var stats domain.VehicleStats

	for i := range snap.Receipts {
		r := &snap.Receipts[i]
		if !r.Served() {
			continue
		}
		ki, ok := r.VehicleKind.Index()
		if !ok {
			continue
		}
		fi, ok := r.FuelKind.Index()
		if !ok {
			continue
		}
		stats.Counts[ki][fi]++
		stats.ServiceMillis[ki][fi] += r.ServiceMillis()
	}

	var mk, mf int
	for k := range stats.Counts {
		for f := range stats.Counts[k] {
			if stats.Counts[k][f] > stats.Counts[mk][mf] {
				mk, mf = k, f
			}
		}
	}
	stats.MostCommon = domain.VehicleFuelPair{Vehicle: domain.VehicleKinds[mk], Fuel: domain.FuelKinds[mf]}

	stats.MostCommonByFuel = make([]domain.VehicleFuelPair, domain.FuelKindCount)
	for f, fuel := range domain.FuelKinds {
		best := 0
		for k := range stats.Counts {
			if stats.Counts[k][f] > stats.Counts[best][f] {
				best = k
			}
		}
		stats.MostCommonByFuel[f] = domain.VehicleFuelPair{Vehicle: domain.VehicleKinds[best], Fuel: fuel}
	}

	var totalMillis float64
	var totalCount int
	stats.ByVehicle = make([]domain.VehicleAverage, domain.VehicleKindCount)
	for k, kind := range domain.VehicleKinds {
		var millis float64
		var count int
		for f := range domain.FuelKinds {
			millis += stats.ServiceMillis[k][f]
			count += stats.Counts[k][f]
		}
		totalMillis += millis
		totalCount += count
		stats.ByVehicle[k] = domain.VehicleAverage{
			Vehicle:               kind,
			Count:                 count,
			AverageServiceSeconds: average(millis, count) / 1000,
		}
	}
	stats.AverageServiceSeconds = average(totalMillis, totalCount) / 1000
	stats.Abandoned = len(snap.Abandonments)

	return stats
}

// ComputeFinancialStats totals revenue and the attendant's pay for a shift.
func ComputeFinancialStats(snap domain.Snapshot, finance config.FinanceConfig, currency string) domain.FinancialStats {
	var revenue float64
	for i := range snap.Receipts {
		r := &snap.Receipts[i]
		if !r.Served() {
			continue
		}
		revenue += r.Cost
	}

	commission := revenue * finance.CommissionRate
	salary := finance.HourlyWage * finance.ShiftHours
	return domain.FinancialStats{
		Revenue:              revenue,
		Commission:           commission,
		Salary:               salary,
		SalaryPlusCommission: salary + commission,
		Currency:             currency,
	}
}

func average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
