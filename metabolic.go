package main

import "math"

// activityMultipliers maps activity level strings to their TDEE multiplier.
// This is the single source of truth for valid activity levels — also used
// for input validation in putProfile.
var activityMultipliers = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"active":    1.725,
}

// genderMale and genderFemale are the accepted gender values; the BMR
// constant differs between them.
const (
	genderMale   = "male"
	genderFemale = "female"
)

// computeMetabolics computes BMR (Mifflin-St Jeor) and TDEE from a profile,
// both rounded to the nearest integer. Returns ok=false only for an unknown
// activity level; height, weight and age are not bounds-checked — garbage in
// yields a well-defined but meaningless number.
func computeMetabolics(p *userProfile) (bmr, tdee int, ok bool) {
	mult, found := activityMultipliers[p.ActivityLevel]
	if !found {
		return 0, 0, false
	}

	bmrF := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.AgeYears)
	if p.Gender == genderMale {
		bmrF += 5
	} else {
		bmrF -= 161
	}

	return int(math.Round(bmrF)), int(math.Round(bmrF * mult)), true
}

// computeBMI returns body mass index (kg/m², one decimal) and its standard
// WHO category.
func computeBMI(heightCM, weightKG float64) (bmi float64, category string) {
	m := heightCM / 100
	bmi = math.Round(weightKG/(m*m)*10) / 10
	switch {
	case bmi < 18.5:
		category = "Underweight"
	case bmi < 25:
		category = "Normal weight"
	case bmi < 30:
		category = "Overweight"
	default:
		category = "Obese"
	}
	return bmi, category
}

// populateComputedMetabolics fills the computed-only fields on p. No-ops on
// an unknown activity level; BMI additionally needs a positive height.
func populateComputedMetabolics(p *userProfile) {
	if bmr, tdee, ok := computeMetabolics(p); ok {
		p.ComputedBMR = &bmr
		p.ComputedTDEE = &tdee
	}
	if p.HeightCM > 0 {
		bmi, category := computeBMI(p.HeightCM, p.WeightKG)
		p.BMI = &bmi
		p.BMICategory = &category
	}
}
