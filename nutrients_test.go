package main

import (
	"strings"
	"testing"
)

func TestMicronutrients_CanonicalSet(t *testing.T) {
	if len(micronutrients) != 23 {
		t.Fatalf("canonical set has %d keys, want 23", len(micronutrients))
	}

	seen := map[string]bool{}
	for _, n := range micronutrients {
		if seen[n.Key] {
			t.Errorf("duplicate key %q", n.Key)
		}
		seen[n.Key] = true
		switch n.Unit {
		case "g", "mg", "mcg":
		default:
			t.Errorf("key %q has unknown unit %q", n.Key, n.Unit)
		}
	}
}

func TestZeroMicros(t *testing.T) {
	z := zeroMicros()
	if len(z) != len(micronutrients) {
		t.Fatalf("zeroMicros has %d keys, want %d", len(z), len(micronutrients))
	}
	for k, v := range z {
		if v != 0 {
			t.Errorf("key %q = %v, want 0", k, v)
		}
	}
}

func TestCanonicalMicros(t *testing.T) {
	in := map[string]float64{
		"fiber":      4.2,
		"unobtanium": 12, // not a tracked nutrient
	}

	out := canonicalMicros(in)

	if out["fiber"] != 4.2 {
		t.Errorf("fiber = %v, want 4.2", out["fiber"])
	}
	if _, ok := out["unobtanium"]; ok {
		t.Error("unknown key survived normalization")
	}
	if out["calcium"] != 0 {
		t.Errorf("calcium = %v, want 0 default", out["calcium"])
	}
	if len(out) != len(micronutrients) {
		t.Errorf("normalized map has %d keys, want %d", len(out), len(micronutrients))
	}
}

// The extraction prompt, the fold seed, and the default goals must all agree
// on the key set; each is derived from the canonical list, and this pins it.
func TestCanonicalKeysConsistency(t *testing.T) {
	for _, n := range micronutrients {
		if !strings.Contains(analyzeSystemPrompt, `"`+n.Key+`": number`) {
			t.Errorf("prompt schema is missing key %q", n.Key)
		}
		if _, ok := defaultGoals.Micros[n.Key]; !ok {
			t.Errorf("default goals are missing key %q", n.Key)
		}
	}
	if len(defaultGoals.Micros) != len(micronutrients) {
		t.Errorf("default goals carry %d keys, want %d", len(defaultGoals.Micros), len(micronutrients))
	}
}

func TestMicronutrientUnitLines(t *testing.T) {
	lines := micronutrientUnitLines()
	if !strings.Contains(lines, "- Grams: fiber") {
		t.Errorf("grams line wrong:\n%s", lines)
	}
	if !strings.Contains(lines, "Milligrams (mg): sodium") {
		t.Errorf("milligrams line wrong:\n%s", lines)
	}
	if !strings.Contains(lines, "Micrograms (mcg): vitaminA") {
		t.Errorf("micrograms line wrong:\n%s", lines)
	}
}

func TestNormalizeLogType(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"FOOD", logTypeFood},
		{"EXERCISE", logTypeExercise},
		{"exercise", logTypeExercise},
		{"Exercise", logTypeExercise},
		{"", logTypeFood},
		{"snack", logTypeFood},
	}
	for _, tc := range cases {
		if got := normalizeLogType(tc.in); got != tc.want {
			t.Errorf("normalizeLogType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
