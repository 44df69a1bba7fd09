package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// defaultProfile returns the profile row values a fresh user starts with,
// keyed by their user id.
func defaultProfile(userID int, name string, email string) userProfile {
	return userProfile{
		UserID:        userID,
		Name:          name,
		Email:         &email,
		HeightCM:      175,
		WeightKG:      75,
		AgeYears:      30,
		Gender:        genderMale,
		ActivityLevel: "moderate",
	}
}

// getProfile returns the authenticated user's profile with computed BMR,
// TDEE and BMI populated.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := queryOne[userProfile](h.db, c,
		"SELECT * FROM user_profile WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	populateComputedMetabolics(&p)

	c.JSON(http.StatusOK, p)
}

// putProfile replaces the authenticated user's profile. Full replacement,
// not a field mask — the client always sends the complete profile.
// PUT /api/profile.
func (h *Handler) putProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body putProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	if body.HeightCM <= 0 || body.WeightKG <= 0 || body.AgeYears <= 0 {
		apiError(c, http.StatusBadRequest, "height_cm, weight_kg and age_years must be positive")
		return
	}
	if body.Gender != genderMale && body.Gender != genderFemale {
		apiError(c, http.StatusBadRequest, "gender must be male or female")
		return
	}
	// Validate activity_level before saving — an unknown level silently breaks
	// all future TDEE calculations with no visible error.
	if _, ok := activityMultipliers[body.ActivityLevel]; !ok {
		apiError(c, http.StatusBadRequest, "activity_level must be one of: sedentary, light, moderate, active")
		return
	}

	p, err := queryOne[userProfile](h.db, c,
		`INSERT INTO user_profile (user_id, name, email, height_cm, weight_kg, age_years, gender, activity_level)
		 VALUES (@userID, @name, @email, @heightCM, @weightKG, @ageYears, @gender, @activityLevel)
		 ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			age_years = EXCLUDED.age_years,
			gender = EXCLUDED.gender,
			activity_level = EXCLUDED.activity_level
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":        userID,
			"name":          body.Name,
			"email":         body.Email,
			"heightCM":      body.HeightCM,
			"weightKG":      body.WeightKG,
			"ageYears":      body.AgeYears,
			"gender":        body.Gender,
			"activityLevel": body.ActivityLevel,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	populateComputedMetabolics(&p)

	c.JSON(http.StatusOK, p)
}
