package main

import "strings"

// microAmounts maps canonical micronutrient keys to amounts in the fixed
// unit of each nutrient. Stored as JSONB in nutrition_logs.
type microAmounts map[string]float64

// micronutrient is one entry in the canonical tracked-nutrient list.
type micronutrient struct {
	Key  string
	Unit string // "g", "mg" or "mcg"
}

// micronutrients is the single source of truth for the tracked nutrient set.
// The extraction prompt, the aggregation seed, and the default goals all
// derive from this list, so the three can never disagree on the keys.
var micronutrients = []micronutrient{
	// General
	{"fiber", "g"},
	{"sodium", "mg"},

	// Vitamins
	{"vitaminA", "mcg"},
	{"vitaminC", "mg"},
	{"vitaminD", "mcg"},
	{"vitaminE", "mg"},
	{"vitaminK", "mcg"},

	// B-Complex
	{"vitaminB1", "mg"},
	{"vitaminB2", "mg"},
	{"vitaminB3", "mg"},
	{"vitaminB5", "mg"},
	{"vitaminB6", "mg"},
	{"vitaminB7", "mcg"},
	{"vitaminB9", "mcg"},
	{"vitaminB12", "mcg"},

	// Minerals
	{"calcium", "mg"},
	{"iron", "mg"},
	{"magnesium", "mg"},
	{"potassium", "mg"},
	{"zinc", "mg"},
	{"phosphorus", "mg"},
	{"selenium", "mcg"},
	{"copper", "mg"},
	{"manganese", "mg"},
}

// zeroMicros returns a fresh map with every canonical key set to 0.
// Used as the fold seed for daily totals and as the exercise-entry default.
func zeroMicros() microAmounts {
	m := make(microAmounts, len(micronutrients))
	for _, n := range micronutrients {
		m[n.Key] = 0
	}
	return m
}

// canonicalMicros normalizes an arbitrary nutrient map to the canonical key
// set: unknown keys are dropped, missing keys default to 0.
func canonicalMicros(in map[string]float64) microAmounts {
	out := zeroMicros()
	for _, n := range micronutrients {
		if v, ok := in[n.Key]; ok {
			out[n.Key] = v
		}
	}
	return out
}

// micronutrientUnitLines renders the per-unit key groups for the extraction
// prompt, e.g. "- Milligrams (mg): sodium, vitaminC, ...".
func micronutrientUnitLines() string {
	byUnit := map[string][]string{}
	for _, n := range micronutrients {
		byUnit[n.Unit] = append(byUnit[n.Unit], n.Key)
	}
	lines := []string{
		"- Grams: " + strings.Join(byUnit["g"], ", "),
		"- Milligrams (mg): " + strings.Join(byUnit["mg"], ", "),
		"- Micrograms (mcg): " + strings.Join(byUnit["mcg"], ", "),
	}
	return strings.Join(lines, "\n")
}

// micronutrientKeyList renders all canonical keys as a JSON-ish field list
// for the prompt's schema example: `"fiber": number, "sodium": number, ...`.
func micronutrientKeyList() string {
	parts := make([]string, len(micronutrients))
	for i, n := range micronutrients {
		parts[i] = `"` + n.Key + `": number`
	}
	return strings.Join(parts, ", ")
}

// defaultGoals mirrors standard adult RDA values. Iron uses the higher
// women's RDA (18mg vs 8mg for men) so the bar never understates need.
var defaultGoals = dailyGoals{
	Calories: 2000,
	ProteinG: 150,
	CarbsG:   200,
	FatG:     65,
	Micros: microAmounts{
		"fiber":  30,
		"sodium": 2300,

		"vitaminA": 900,
		"vitaminC": 90,
		"vitaminD": 15,
		"vitaminE": 15,
		"vitaminK": 120,

		"vitaminB1":  1.2,
		"vitaminB2":  1.3,
		"vitaminB3":  16,
		"vitaminB5":  5,
		"vitaminB6":  1.3,
		"vitaminB7":  30,
		"vitaminB9":  400,
		"vitaminB12": 2.4,

		"calcium":    1000,
		"iron":       18,
		"magnesium":  400,
		"potassium":  3400,
		"zinc":       11,
		"phosphorus": 700,
		"selenium":   55,
		"copper":     0.9,
		"manganese":  2.3,
	},
}