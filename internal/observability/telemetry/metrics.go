package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Forecourt metrics
	VehiclesArrivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posto_vehicles_arrived_total",
		Help: "Vehicles that reached the forecourt",
	})

	VehiclesRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posto_vehicles_rejected_total",
		Help: "Vehicles that drove past because the queue was full",
	})

	VehiclesAbandonedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posto_vehicles_abandoned_total",
		Help: "Vehicles that left the queue before reaching a pump",
	})

	QueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "posto_queue_length",
		Help: "Vehicles currently waiting in the queue",
	})

	PumpsBusy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "posto_pumps_busy",
		Help: "Pumps currently fueling a vehicle",
	})

	ReceiptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "posto_receipts_total",
		Help: "Receipts issued by outcome",
	}, []string{"outcome"})

	LitresDispensedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "posto_litres_dispensed_total",
		Help: "Litres dispensed by fuel kind",
	}, []string{"fuel"})

	RevenueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posto_revenue_total",
		Help: "Sum of receipt costs",
	})

	// Infrastructure metrics
	StatisticsLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "posto_statistics_latency_seconds",
		Help:    "Time spent computing statistics",
		Buckets: prometheus.DefBuckets,
	}, []string{"report", "cache"})

	ReceiptsPersistedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "posto_receipts_persisted_total",
		Help: "Receipts written to durable storage",
	}, []string{"status"})

	JournalLinesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "posto_journal_lines_total",
		Help: "Receipts appended to the receipt journal",
	}, []string{"status"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "posto_events_published_total",
		Help: "Simulation events forwarded to the message broker",
	}, []string{"subject", "status"})
)
