package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSimulation_IsValid(t *testing.T) {
	require.NoError(t, DefaultSimulation().Validate())
	require.NoError(t, Default().Validate())
}

func TestSimulationValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Simulation)
		want   string
	}{
		{"spawn min above max", func(s *Simulation) { s.MinSpawnTime = 3000 }, "min_spawn_time"},
		{"service min above max", func(s *Simulation) { s.MinServiceTime = 20000 }, "min_service_time"},
		{"zero queue", func(s *Simulation) { s.MaxQueueSize = 0 }, "max_queue_size"},
		{"zero fueling cap", func(s *Simulation) { s.MaxFuelingTime = 0 }, "max_fueling_time"},
		{"negative velocity", func(s *Simulation) { s.PumpVelocity = -1 }, "pump_velocity"},
		{"no pumps", func(s *Simulation) { s.PumpCount = 0 }, "pump_count"},
		{"rank out of range", func(s *Simulation) { s.PumpPriorities = []int{1, 7} }, "pump 2 priority 7"},
		{"too many ranks", func(s *Simulation) { s.PumpCount = 1; s.PumpPriorities = []int{1, 2} }, "pump_priorities"},
		{"fill fraction", func(s *Simulation) { s.InitialFillMaxFraction = 1 }, "initial_fill_max_fraction"},
		{"tank capacity", func(s *Simulation) { s.TankCapacity.Van = 0 }, "tank capacities"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSimulation()
			tt.mutate(&s)

			err := s.Validate()

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSimulationValidate_ReportsEveryViolation(t *testing.T) {
	s := DefaultSimulation()
	s.MinSpawnTime = 5000
	s.MaxQueueSize = -1

	err := s.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_spawn_time")
	assert.Contains(t, err.Error(), "max_queue_size")
}

func TestLineFormat_RoundTripKeepsOrder(t *testing.T) {
	s := DefaultSimulation()
	s.PumpPriorities = []int{1, 2, 3}
	s.RecordAbandonments = true

	var buf bytes.Buffer
	require.NoError(t, MarshalLines(&buf, s))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(fields))
	assert.Equal(t, "MIN_SPAWN_TIME : 1500 : int", lines[0])
	assert.Equal(t, "PUMP_VELOCITY : 1.5 : float", lines[6])
	assert.Equal(t, "PUMP_PRIORITIES : 1,2,3 : ints", lines[8])

	got, err := UnmarshalLines(&buf, Simulation{})
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestUnmarshalLines_PartialInputKeepsBase(t *testing.T) {
	in := "MAX_QUEUE_SIZE : 10 : int\n\n# comment\nPUMP_VELOCITY : 2,5 : float\n"

	got, err := UnmarshalLines(strings.NewReader(in), DefaultSimulation())

	require.NoError(t, err)
	assert.Equal(t, 10, got.MaxQueueSize)
	assert.Equal(t, 2.5, got.PumpVelocity)
	assert.Equal(t, 1500, got.MinSpawnTime)
}

func TestUnmarshalLines_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown name":  "ANIMATION_TIME : 150 : int",
		"wrong type":    "MAX_QUEUE_SIZE : 10 : float",
		"bad value":     "MAX_QUEUE_SIZE : ten : int",
		"missing parts": "MAX_QUEUE_SIZE 10",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalLines(strings.NewReader(in), DefaultSimulation())
			assert.Error(t, err)
		})
	}
}

func TestLoadWith_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "simulation:\n  max_queue_size: 8\n  pump_count: 4\n  pump_priorities: [2, 1, 3, 3]\npricing:\n  diesel: 1.5\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadWith(viper.New(), path)

	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Simulation.MaxQueueSize)
	assert.Equal(t, 4, cfg.Simulation.PumpCount)
	assert.Equal(t, []int{2, 1, 3, 3}, cfg.Simulation.PumpPriorities)
	assert.Equal(t, 1.5, cfg.Pricing.Diesel)
	assert.Equal(t, 1500, cfg.Simulation.MinSpawnTime)
	assert.Equal(t, 2.49, cfg.Finance.HourlyWage)
}

func TestLoadWith_RejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  min_spawn_time: 9000\n"), 0o644))

	_, err := LoadWith(viper.New(), path)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestSettings_ApplyRoundTrip(t *testing.T) {
	s := DefaultSimulation()
	s.MaxQueueSize = 8
	s.PumpPriorities = []int{2, 1}

	settings := Settings(s)
	require.Len(t, settings, len(fields))

	got, err := ApplySettings(Simulation{}, settings)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = ApplySettings(s, []Setting{{Name: "MAX_QUEUE_SIZE", Value: "3", Type: "float"}})
	assert.Error(t, err)
}
