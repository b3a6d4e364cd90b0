package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// field binds one line of the settings file to a Simulation field.
type field struct {
	name string
	kind string
	get  func(s *Simulation) string
	set  func(s *Simulation, v string) error
}

func intField(name string, ptr func(s *Simulation) *int) field {
	return field{
		name: name,
		kind: "int",
		get:  func(s *Simulation) string { return strconv.Itoa(*ptr(s)) },
		set: func(s *Simulation, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*ptr(s) = n
			return nil
		},
	}
}

func floatField(name string, ptr func(s *Simulation) *float64) field {
	return field{
		name: name,
		kind: "float",
		get:  func(s *Simulation) string { return strconv.FormatFloat(*ptr(s), 'f', -1, 64) },
		set: func(s *Simulation, v string) error {
			f, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
			if err != nil {
				return err
			}
			*ptr(s) = f
			return nil
		},
	}
}

var fields = []field{
	intField("MIN_SPAWN_TIME", func(s *Simulation) *int { return &s.MinSpawnTime }),
	intField("MAX_SPAWN_TIME", func(s *Simulation) *int { return &s.MaxSpawnTime }),
	intField("MIN_SERVICE_TIME", func(s *Simulation) *int { return &s.MinServiceTime }),
	intField("MAX_SERVICE_TIME", func(s *Simulation) *int { return &s.MaxServiceTime }),
	intField("MAX_QUEUE_SIZE", func(s *Simulation) *int { return &s.MaxQueueSize }),
	intField("MAX_FUELING_TIME", func(s *Simulation) *int { return &s.MaxFuelingTime }),
	floatField("PUMP_VELOCITY", func(s *Simulation) *float64 { return &s.PumpVelocity }),
	intField("PUMP_COUNT", func(s *Simulation) *int { return &s.PumpCount }),
	{
		name: "PUMP_PRIORITIES",
		kind: "ints",
		get: func(s *Simulation) string {
			parts := make([]string, len(s.PumpPriorities))
			for i, p := range s.PumpPriorities {
				parts[i] = strconv.Itoa(p)
			}
			return strings.Join(parts, ",")
		},
		set: func(s *Simulation, v string) error {
			s.PumpPriorities = nil
			if v == "" {
				return nil
			}
			for _, part := range strings.Split(v, ",") {
				n, err := strconv.Atoi(strings.TrimSpace(part))
				if err != nil {
					return err
				}
				s.PumpPriorities = append(s.PumpPriorities, n)
			}
			return nil
		},
	},
	intField("LOWEST_PRIORITY_PUMP", func(s *Simulation) *int { return &s.LowestPriorityPump }),
	{
		name: "RECORD_ABANDONMENTS",
		kind: "bool",
		get:  func(s *Simulation) string { return strconv.FormatBool(s.RecordAbandonments) },
		set: func(s *Simulation, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			s.RecordAbandonments = b
			return nil
		},
	},
	floatField("INITIAL_FILL_MAX_FRACTION", func(s *Simulation) *float64 { return &s.InitialFillMaxFraction }),
	floatField("TANK_CAPACITY_CAR", func(s *Simulation) *float64 { return &s.TankCapacity.Car }),
	floatField("TANK_CAPACITY_VAN", func(s *Simulation) *float64 { return &s.TankCapacity.Van }),
	floatField("TANK_CAPACITY_LORRY", func(s *Simulation) *float64 { return &s.TankCapacity.Lorry }),
	{
		name: "SEED",
		kind: "int",
		get:  func(s *Simulation) string { return strconv.FormatInt(s.Seed, 10) },
		set: func(s *Simulation, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return err
			}
			s.Seed = n
			return nil
		},
	},
}

func lookupField(name string) (field, bool) {
	for _, f := range fields {
		if f.name == name {
			return f, true
		}
	}
	return field{}, false
}

// MarshalLines writes s as "NAME : value : type" lines in a fixed order.
func MarshalLines(w io.Writer, s Simulation) error {
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%s : %s : %s\n", f.name, f.get(&s), f.kind); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalLines reads lines produced by MarshalLines on top of base. Names
// missing from the input keep the value from base; unknown names and type
// mismatches are errors. The result is not validated.
func UnmarshalLines(r io.Reader, base Simulation) (Simulation, error) {
	out := base
	out.PumpPriorities = append([]int(nil), base.PumpPriorities...)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ":")
		if len(parts) != 3 {
			return out, fmt.Errorf("line %d: expected NAME : value : type, got %q", lineNo, line)
		}
		name := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		kind := strings.TrimSpace(parts[2])

		if err := applySetting(&out, Setting{Name: name, Value: value, Type: kind}); err != nil {
			return out, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("failed to read settings: %w", err)
	}
	return out, nil
}

// Setting is one named value of a Simulation in its textual form.
type Setting struct {
	Name  string
	Value string
	Type  string
}

// Settings flattens s into its named settings, in line-format order.
func Settings(s Simulation) []Setting {
	out := make([]Setting, len(fields))
	for i, f := range fields {
		out[i] = Setting{Name: f.name, Value: f.get(&s), Type: f.kind}
	}
	return out
}

// ApplySettings overlays settings on base with the same rules as
// UnmarshalLines.
func ApplySettings(base Simulation, settings []Setting) (Simulation, error) {
	out := base
	out.PumpPriorities = append([]int(nil), base.PumpPriorities...)
	for _, st := range settings {
		if err := applySetting(&out, st); err != nil {
			return out, err
		}
	}
	return out, nil
}

func applySetting(s *Simulation, st Setting) error {
	f, ok := lookupField(st.Name)
	if !ok {
		return fmt.Errorf("unknown setting %q", st.Name)
	}
	if st.Type != f.kind {
		return fmt.Errorf("setting %s has type %s, got %s", st.Name, f.kind, st.Type)
	}
	if err := f.set(s, st.Value); err != nil {
		return fmt.Errorf("setting %s: %w", st.Name, err)
	}
	return nil
}
