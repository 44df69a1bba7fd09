package main

import (
	"math"
	"time"
)

// dayTotals holds the aggregated numbers for one calendar day.
// Food and exercise calories are both non-negative; the sign is applied
// only when they are combined into NetCalories.
type dayTotals struct {
	FoodCalories     int          `json:"food_calories"`
	ExerciseCalories int          `json:"exercise_calories"`
	NetCalories      int          `json:"net_calories"`
	ProteinG         float64      `json:"protein_g"`
	CarbsG           float64      `json:"carbs_g"`
	FatG             float64      `json:"fat_g"`
	Micros           microAmounts `json:"micros"`
}

// monthDay is one day's entry in the monthly summary series.
type monthDay struct {
	Date             DateOnly `json:"date"`
	FoodCalories     int      `json:"food_calories"`
	ExerciseCalories int      `json:"exercise_calories"`
	NetCalories      int      `json:"net_calories"`
}

// monthSummary is the response shape for GET /api/logs/monthly-summary.
// AverageDailyIntake divides by the month's calendar day count, not the
// number of days with data, so days without logs count as zero-calorie days.
type monthSummary struct {
	Month              string     `json:"month"`
	Days               []monthDay `json:"days"`
	TotalConsumed      int        `json:"total_consumed"`
	TotalBurned        int        `json:"total_burned"`
	AverageDailyIntake int        `json:"average_daily_intake"`
}

// summarizeDay folds a day's logs into totals. Macros and micros are summed
// across all entries regardless of type; exercise entries are expected to
// carry zeroes there and get no special casing. Unknown micro keys on an
// entry are ignored; canonical keys an entry lacks contribute 0.
func summarizeDay(logs []nutritionLog) dayTotals {
	t := dayTotals{Micros: zeroMicros()}
	for _, l := range logs {
		if l.Type == logTypeExercise {
			t.ExerciseCalories += l.Calories
		} else {
			t.FoodCalories += l.Calories
		}
		t.ProteinG += l.ProteinG
		t.CarbsG += l.CarbsG
		t.FatG += l.FatG
		for _, n := range micronutrients {
			t.Micros[n.Key] += l.Micros[n.Key]
		}
	}
	t.NetCalories = t.FoodCalories - t.ExerciseCalories
	return t
}

// daysInMonth returns the calendar day count of a month (28–31, leap-aware).
// Day 0 of the following month normalizes to this month's last day.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// summarizeMonth builds the per-day calorie series for a month plus its
// summary stats. Every calendar day appears exactly once, ordered ascending;
// days with no logs yield all-zero entries. Logs outside the month are
// skipped, so callers may pass an unfiltered slice.
func summarizeMonth(logs []nutritionLog, year int, month time.Month) monthSummary {
	numDays := daysInMonth(year, month)

	// Bucket logs by day-of-month for a single pass over the input.
	byDay := make(map[int][]nutritionLog)
	for _, l := range logs {
		if l.Date.Year() == year && l.Date.Month() == month {
			d := l.Date.Day()
			byDay[d] = append(byDay[d], l)
		}
	}

	s := monthSummary{
		Month: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
		Days:  make([]monthDay, numDays),
	}
	for d := 1; d <= numDays; d++ {
		totals := summarizeDay(byDay[d])
		s.Days[d-1] = monthDay{
			Date:             DateOnly{time.Date(year, month, d, 0, 0, 0, 0, time.UTC)},
			FoodCalories:     totals.FoodCalories,
			ExerciseCalories: totals.ExerciseCalories,
			NetCalories:      totals.NetCalories,
		}
		s.TotalConsumed += totals.FoodCalories
		s.TotalBurned += totals.ExerciseCalories
	}
	s.AverageDailyIntake = int(math.Round(float64(s.TotalConsumed) / float64(numDays)))
	return s
}
