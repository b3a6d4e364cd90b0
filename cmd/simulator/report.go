package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

var heading = color.New(color.FgCyan, color.Bold).SprintFunc()

func warn(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(color.Error, format+"\n", args...)
}

func printSummary(w io.Writer, snap domain.Snapshot, elapsed time.Duration) {
	fmt.Fprintln(w, heading("Run"))
	table := uitable.New()
	table.AddRow("Run ID:", snap.RunID)
	table.AddRow("Logical time:", snap.Now.Round(time.Millisecond))
	table.AddRow("Wall time:", elapsed.Round(time.Millisecond))
	table.AddRow("Arrived:", snap.Arrived)
	table.AddRow("Rejected (queue full):", snap.Rejected)
	table.AddRow("Abandoned:", len(snap.Abandonments))
	table.AddRow("Receipts:", len(snap.Receipts))
	fmt.Fprintln(w, table)
	fmt.Fprintln(w)
}

func printPumps(w io.Writer, pumps []domain.PumpInformation) {
	fmt.Fprintln(w, heading("Pumps"))
	table := uitable.New()
	table.AddRow("PUMP", "RANK", "STATE", "SERVED", "DIESEL", "GASOLINE", "LPG")
	for _, p := range pumps {
		table.AddRow(
			p.ID,
			p.Priority,
			p.State,
			p.Served(),
			litres(p.LitresDispensed[domain.FuelDiesel]),
			litres(p.LitresDispensed[domain.FuelGasoline]),
			litres(p.LitresDispensed[domain.FuelLPG]),
		)
	}
	fmt.Fprintln(w, table)
	fmt.Fprintln(w)
}

func printReceipts(w io.Writer, receipts []domain.Receipt) {
	fmt.Fprintln(w, heading("Receipts"))
	table := uitable.New()
	table.MaxColWidth = 36
	table.AddRow("#", "PUMP", "VEHICLE", "FUEL", "LITRES", "COST", "SERVICE", "OUTCOME")
	for _, r := range receipts {
		table.AddRow(
			r.Sequence,
			r.PumpID,
			r.VehicleKind,
			r.FuelKind,
			litres(r.Litres),
			fmt.Sprintf("%.2f", r.Cost),
			r.ServiceTime.Round(time.Millisecond),
			r.Outcome,
		)
	}
	fmt.Fprintln(w, table)
	fmt.Fprintln(w)
}

func printReport(w io.Writer, report *domain.StatisticsReport) {
	fuel := report.Fuel
	fmt.Fprintln(w, heading("Fuel"))
	table := uitable.New()
	table.AddRow("FUEL", "LITRES", "VEHICLES", "AVG LITRES")
	for _, b := range fuel.ByFuel {
		table.AddRow(b.Fuel, litres(b.Litres), b.Vehicles, litres(b.AverageLitres))
	}
	table.AddRow("Total", litres(fuel.TotalLitres), fuel.ServedVehicles, litres(fuel.AverageLitres))
	fmt.Fprintln(w, table)
	fmt.Fprintf(w, "Most used fuel: %s, least used fuel: %s\n", fuel.MostUsedFuel, fuel.LeastUsedFuel)
	fmt.Fprintf(w, "Most used pump: %d, least used pump: %d\n\n", fuel.MostUsedPump, fuel.LeastUsedPump)

	vehicles := report.Vehicles
	fmt.Fprintln(w, heading("Vehicles"))
	table = uitable.New()
	table.AddRow("VEHICLE", "DIESEL", "GASOLINE", "LPG", "AVG SERVICE (s)")
	for _, avg := range vehicles.ByVehicle {
		i, ok := avg.Vehicle.Index()
		if !ok {
			continue
		}
		row := vehicles.Counts[i]
		table.AddRow(avg.Vehicle, row[domain.FuelDiesel], row[domain.FuelGasoline], row[domain.FuelLPG],
			fmt.Sprintf("%.2f", avg.AverageServiceSeconds))
	}
	fmt.Fprintln(w, table)
	fmt.Fprintf(w, "Most common: %s on %s\n", vehicles.MostCommon.Vehicle, vehicles.MostCommon.Fuel)
	for _, pair := range vehicles.MostCommonByFuel {
		fmt.Fprintf(w, "  %s: %s\n", pair.Fuel, pair.Vehicle)
	}
	fmt.Fprintf(w, "Average service time: %.2fs, abandoned: %d\n\n", vehicles.AverageServiceSeconds, vehicles.Abandoned)

	finance := report.Finance
	fmt.Fprintln(w, heading("Finance"))
	table = uitable.New()
	table.AddRow("Revenue:", money(finance.Revenue, finance.Currency))
	table.AddRow("Commission:", money(finance.Commission, finance.Currency))
	table.AddRow("Salary:", money(finance.Salary, finance.Currency))
	table.AddRow("Salary + commission:", money(finance.SalaryPlusCommission, finance.Currency))
	fmt.Fprintln(w, table)
}

func litres(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func money(v float64, currency string) string {
	return fmt.Sprintf("%.2f %s", v, currency)
}
