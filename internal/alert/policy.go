// Package alert classifies a flight state into an alert level.
//
// Evaluation is a pure function of the visible fields of a staging record and
// never touches the store, so policies can be tested and swapped freely.
package alert

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Level is the categorical alert classification.
type Level string

const (
	Normal   Level = "Normal"
	Warning  Level = "Warning"
	Critical Level = "Critical"
)

// Input is the part of a staging record a policy may look at.
type Input struct {
	OnGround bool
	Altitude *float64 // meters
	Velocity *float64 // m/s
}

// Result is the outcome of an evaluation. Rule is empty for the default.
type Result struct {
	Level Level
	Rule  string
}

// Policy is a total decision function over Input.
type Policy interface {
	Evaluate(in Input) Result
}

// Rule matches when every condition it sets holds. Bounds on a missing field
// never match. Min bounds are inclusive, max bounds exclusive.
type Rule struct {
	Name            string   `yaml:"name"`
	Level           Level    `yaml:"level"`
	OnGround        *bool    `yaml:"on_ground,omitempty"`
	VelocityMin     *float64 `yaml:"velocity_min,omitempty"`
	VelocityMax     *float64 `yaml:"velocity_max,omitempty"`
	AltitudeMin     *float64 `yaml:"altitude_min,omitempty"`
	AltitudeMax     *float64 `yaml:"altitude_max,omitempty"`
	VelocityMissing *bool    `yaml:"velocity_missing,omitempty"`
	AltitudeMissing *bool    `yaml:"altitude_missing,omitempty"`
}

// Matches reports whether the rule applies to in.
func (r Rule) Matches(in Input) bool {
	if r.OnGround != nil && *r.OnGround != in.OnGround {
		return false
	}
	if r.VelocityMissing != nil && *r.VelocityMissing != (in.Velocity == nil) {
		return false
	}
	if r.AltitudeMissing != nil && *r.AltitudeMissing != (in.Altitude == nil) {
		return false
	}
	if !inRange(in.Velocity, r.VelocityMin, r.VelocityMax) {
		return false
	}
	return inRange(in.Altitude, r.AltitudeMin, r.AltitudeMax)
}

func inRange(v, min, max *float64) bool {
	if min == nil && max == nil {
		return true
	}
	if v == nil {
		return false
	}
	if min != nil && *v < *min {
		return false
	}
	if max != nil && *v >= *max {
		return false
	}
	return true
}

// RuleTable evaluates rules in order; the first match wins, otherwise Normal.
type RuleTable struct {
	Rules []Rule `yaml:"rules"`
}

// Evaluate implements Policy.
func (t RuleTable) Evaluate(in Input) Result {
	for _, r := range t.Rules {
		if r.Matches(in) {
			return Result{Level: r.Level, Rule: r.Name}
		}
	}
	return Result{Level: Normal}
}

// Validate checks that every rule is named and produces a level.
func (t RuleTable) Validate() error {
	seen := make(map[string]bool, len(t.Rules))
	for i, r := range t.Rules {
		if r.Name == "" {
			return fmt.Errorf("rule %d has no name", i)
		}
		if r.Level == "" {
			return fmt.Errorf("rule %s has no level", r.Name)
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate rule %s", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

// DefaultRules is the built-in rule table (meters, m/s).
func DefaultRules() RuleTable {
	return RuleTable{Rules: []Rule{
		{Name: "ground_overspeed", Level: Critical, OnGround: ptr(true), VelocityMin: ptr(100.0)},
		{Name: "low_level_high_speed", Level: Critical, OnGround: ptr(false), AltitudeMax: ptr(1000.0), VelocityMin: ptr(150.0)},
		{Name: "overspeed", Level: Critical, VelocityMin: ptr(300.0)},
		{Name: "airborne_slow", Level: Warning, OnGround: ptr(false), AltitudeMin: ptr(500.0), VelocityMax: ptr(50.0)},
		{Name: "missing_altitude", Level: Warning, OnGround: ptr(false), AltitudeMissing: ptr(true)},
		{Name: "missing_velocity", Level: Warning, OnGround: ptr(false), VelocityMissing: ptr(true)},
		{Name: "altitude_ceiling", Level: Warning, AltitudeMin: ptr(22000.0)},
	}}
}

// LoadRules reads a YAML rule table from path.
func LoadRules(path string) (RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleTable{}, fmt.Errorf("failed to read alert policy: %w", err)
	}

	var table RuleTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return RuleTable{}, fmt.Errorf("failed to parse alert policy: %w", err)
	}
	if err := table.Validate(); err != nil {
		return RuleTable{}, fmt.Errorf("invalid alert policy: %w", err)
	}
	return table, nil
}

// Load returns the rule table at path, or the default table when path is empty.
func Load(path string) (Policy, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	return LoadRules(path)
}
