package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// nutritionLog maps to nutrition_logs. One row per food or exercise item the
// extraction pipeline recognized in a submission. Calories are stored as a
// positive magnitude for both types; the type column decides the sign when
// totals are combined. Micros is a JSONB column holding the canonical
// 23-key micronutrient map; SourceURLs is a text[] of grounding citations.
type nutritionLog struct {
	ID          string       `json:"id" db:"id"`
	UserID      int          `json:"user_id" db:"user_id"`
	Date        DateOnly     `json:"date" db:"date"`
	Type        string       `json:"type" db:"type"`
	Description string       `json:"description" db:"description"`
	Calories    int          `json:"calories" db:"calories"`
	ProteinG    float64      `json:"protein_g" db:"protein_g"`
	CarbsG      float64      `json:"carbs_g" db:"carbs_g"`
	FatG        float64      `json:"fat_g" db:"fat_g"`
	Micros      microAmounts `json:"micros" db:"micros"`
	SourceURLs  []string     `json:"source_urls" db:"source_urls"`
	CreatedAt   *time.Time   `json:"created_at" db:"created_at"`
}

// weightEntry maps to weight_log. The UNIQUE(user_id, date) constraint keeps
// at most one sample per calendar day; upserting an existing date overwrites
// the weight in place and the original row id survives.
type weightEntry struct {
	ID       string   `json:"id" db:"id"`
	UserID   int      `json:"user_id" db:"user_id"`
	Date     DateOnly `json:"date" db:"date"`
	WeightKG float64  `json:"weight_kg" db:"weight_kg"`
}

// userProfile maps to user_profile, one row per user keyed by user_id.
// The computed fields are populated server-side on reads and never stored;
// db:"-" tells RowToStructByName to skip them during scanning.
type userProfile struct {
	UserID        int     `json:"user_id" db:"user_id"`
	Name          string  `json:"name" db:"name"`
	Email         *string `json:"email,omitempty" db:"email"`
	HeightCM      float64 `json:"height_cm" db:"height_cm"`
	WeightKG      float64 `json:"weight_kg" db:"weight_kg"`
	AgeYears      int     `json:"age_years" db:"age_years"`
	Gender        string  `json:"gender" db:"gender"`
	ActivityLevel string  `json:"activity_level" db:"activity_level"`

	ComputedBMR  *int     `json:"computed_bmr,omitempty" db:"-"`
	ComputedTDEE *int     `json:"computed_tdee,omitempty" db:"-"`
	BMI          *float64 `json:"bmi,omitempty" db:"-"`
	BMICategory  *string  `json:"bmi_category,omitempty" db:"-"`
}

// dailyGoals is the static target configuration used as denominators for
// progress displays. Not persisted or user-editable.
type dailyGoals struct {
	Calories int          `json:"calories"`
	ProteinG float64      `json:"protein_g"`
	CarbsG   float64      `json:"carbs_g"`
	FatG     float64      `json:"fat_g"`
	Micros   microAmounts `json:"micros"`
}

/* ─── Request / response shapes ──────────────────────────────────────── */

// analyzeRequest is the request body for POST /api/logs/analyze.
// Date is optional and supports back-dating; it defaults to today.
type analyzeRequest struct {
	Text string `json:"text"`
	Date string `json:"date"`
}

// analyzeResponse returns the logs created from one submission plus the
// grounding citation URLs the model reported for the whole call.
type analyzeResponse struct {
	Logs    []nutritionLog `json:"logs"`
	Sources []string       `json:"sources"`
}

// dailySummary is the response shape for GET /api/logs/daily.
type dailySummary struct {
	Date   string         `json:"date"`
	Totals dayTotals      `json:"totals"`
	Items  []nutritionLog `json:"items"`
	Goals  dailyGoals     `json:"goals"`
}

// putProfileRequest is the request body for PUT /api/profile.
type putProfileRequest struct {
	Name          string  `json:"name"`
	Email         *string `json:"email"`
	HeightCM      float64 `json:"height_cm"`
	WeightKG      float64 `json:"weight_kg"`
	AgeYears      int     `json:"age_years"`
	Gender        string  `json:"gender"`
	ActivityLevel string  `json:"activity_level"`
}
