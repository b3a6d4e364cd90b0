package domain

import (
	"fmt"
	"strings"
	"time"
)

// StopMode says what happens to fuelings in progress when a run stops.
type StopMode string

const (
	// StopTruncate ends every fill at the stop instant with a partial receipt.
	StopTruncate StopMode = "truncate"
	// StopDrain lets every fill in progress finish naturally.
	StopDrain StopMode = "drain"
)

func ParseStopMode(s string) (StopMode, error) {
	switch StopMode(strings.ToLower(strings.TrimSpace(s))) {
	case StopTruncate, "":
		return StopTruncate, nil
	case StopDrain:
		return StopDrain, nil
	default:
		return "", fmt.Errorf("unknown stop mode %q", s)
	}
}

// Snapshot is a consistent copy of the simulation state: it reflects either
// all or none of any completion event.
type Snapshot struct {
	Version      uint64            `json:"version"`
	RunID        string            `json:"run_id"`
	Now          time.Duration     `json:"now"`
	Stopped      bool              `json:"stopped"`
	QueueLength  int               `json:"queue_length"`
	Arrived      int               `json:"arrived"`
	Rejected     int               `json:"rejected"`
	Pumps        []PumpInformation `json:"pumps"`
	Receipts     []Receipt         `json:"receipts"`
	Abandonments []Abandonment     `json:"abandonments"`
}
