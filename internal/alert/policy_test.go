package alert

import (
	"os"
	"path/filepath"
	"testing"
)

func f(v float64) *float64 { return &v }

type evalTest struct {
	Name string
	In   Input
	Level
	Rule string
}

var evalTests = []evalTest{
	{"parked", Input{OnGround: true, Altitude: f(0), Velocity: f(0)}, Normal, ""},
	{"cruise", Input{Altitude: f(11000), Velocity: f(240)}, Normal, ""},
	{"taxi fast", Input{OnGround: true, Altitude: f(0), Velocity: f(120)}, Critical, "ground_overspeed"},
	{"low and fast", Input{Altitude: f(400), Velocity: f(180)}, Critical, "low_level_high_speed"},
	{"supersonic", Input{Altitude: f(15000), Velocity: f(320)}, Critical, "overspeed"},
	{"slow aloft", Input{Altitude: f(3000), Velocity: f(30)}, Warning, "airborne_slow"},
	{"slow climbout", Input{Altitude: f(200), Velocity: f(30)}, Normal, ""},
	{"no altitude", Input{Velocity: f(200)}, Warning, "missing_altitude"},
	{"no velocity", Input{Altitude: f(9000)}, Warning, "missing_velocity"},
	{"nothing at all", Input{}, Warning, "missing_altitude"},
	{"ground unknowns", Input{OnGround: true}, Normal, ""},
	{"ceiling", Input{Altitude: f(22000), Velocity: f(200)}, Warning, "altitude_ceiling"},
	{"boundary min inclusive", Input{OnGround: true, Velocity: f(100)}, Critical, "ground_overspeed"},
	{"boundary max exclusive", Input{Altitude: f(1000), Velocity: f(150)}, Normal, ""},
}

func TestDefaultRules(t *testing.T) {
	policy := DefaultRules()
	if err := policy.Validate(); err != nil {
		t.Fatalf("default rules invalid: %v", err)
	}

	for _, test := range evalTests {
		got := policy.Evaluate(test.In)
		if got.Level != test.Level || got.Rule != test.Rule {
			t.Errorf("%s: expected %s/%q, got %s/%q", test.Name, test.Level, test.Rule, got.Level, got.Rule)
		}
	}
}

func TestEmptyTableIsNormal(t *testing.T) {
	if got := (RuleTable{}).Evaluate(Input{OnGround: true, Velocity: f(999)}); got.Level != Normal {
		t.Errorf("expected Normal from an empty table, got %s", got.Level)
	}
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	doc := `
rules:
  - name: very_high
    level: Critical
    altitude_min: 12000
  - name: on_ground
    level: Info
    on_ground: true
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	policy, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := policy.Evaluate(Input{Altitude: f(12500)}); got.Level != Critical || got.Rule != "very_high" {
		t.Errorf("expected very_high, got %+v", got)
	}
	if got := policy.Evaluate(Input{OnGround: true}); got.Level != "Info" {
		t.Errorf("expected custom level Info, got %+v", got)
	}
	if got := policy.Evaluate(Input{Altitude: f(100)}); got.Level != Normal {
		t.Errorf("expected Normal, got %+v", got)
	}
}

func TestLoadRulesRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	os.WriteFile(path, []byte("rules:\n  - name: nameless_level\n"), 0o644)

	if _, err := LoadRules(path); err == nil {
		t.Error("expected an error for a rule without level")
	}
	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	policy, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := policy.(RuleTable); !ok {
		t.Errorf("expected RuleTable, got %T", policy)
	}
}
