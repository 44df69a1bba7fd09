package main

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Stored values for the nutrition_log_type enum. The model answers in upper
// case ("FOOD"/"EXERCISE"); normalizeLogType maps to these.
const (
	logTypeFood     = "food"
	logTypeExercise = "exercise"
)

// normalizeLogType lowercases a model-reported type and defaults anything
// unrecognized to food, the conservative reading for a nutrition log.
func normalizeLogType(t string) string {
	if strings.EqualFold(t, logTypeExercise) {
		return logTypeExercise
	}
	return logTypeFood
}

// analyzeAndLog handles POST /api/logs/analyze.
// Sends the free text through the extraction pipeline, then persists one row
// per recognized item with a server-assigned id, the submitted date (the
// user may be back-dating) and the creation timestamp.
//
// Inserts are sequential and non-atomic: if one fails, the rows already
// written stay (each is individually deletable afterwards) and the request
// fails. A parse failure produces zero rows — all-or-nothing per submission.
func (h *Handler) analyzeAndLog(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		apiError(c, http.StatusBadRequest, "text is required")
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	items, sources, err := analyzeTextEntry(c.Request.Context(), h.geminiBaseURL, req.Text)
	if err != nil {
		log.Printf("[analyze] extraction failed: %v", err)
		switch {
		case errors.Is(err, errNoAPIKey):
			apiError(c, http.StatusInternalServerError, "gemini api key not configured")
		case errors.Is(err, errMalformedResponse):
			apiError(c, http.StatusUnprocessableEntity, "could not understand the entry, please try again")
		default:
			apiError(c, http.StatusBadGateway, "nutrition analysis failed, please try again")
		}
		return
	}
	if sources == nil {
		sources = []string{}
	}

	logs := make([]nutritionLog, 0, len(items))
	for _, item := range items {
		// Micros go over the wire as a JSON string; the jsonb column casts it.
		microsJSON, err := json.Marshal(canonicalMicros(item.Micros))
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to save entry")
			return
		}
		row, err := queryOne[nutritionLog](h.db, c,
			`INSERT INTO nutrition_logs (id, user_id, date, type, description, calories, protein_g, carbs_g, fat_g, micros, source_urls)
			 VALUES (@id, @userID, @date, @type, @description, @calories, @proteinG, @carbsG, @fatG, @micros, @sourceURLs)
			 RETURNING *`,
			pgx.NamedArgs{
				"id":          uuid.New().String(),
				"userID":      userID,
				"date":        req.Date,
				"type":        normalizeLogType(item.Type),
				"description": item.ItemName,
				"calories":    int(math.Round(math.Abs(item.Calories))),
				"proteinG":    item.Macros.Protein,
				"carbsG":      item.Macros.Carbs,
				"fatG":        item.Macros.Fat,
				"micros":      string(microsJSON),
				"sourceURLs":  sources,
			})
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to save entry")
			return
		}
		logs = append(logs, row)
	}

	c.JSON(http.StatusCreated, analyzeResponse{Logs: logs, Sources: sources})
}

// getDailyLogs returns a day's logs plus aggregated totals and the static goals.
// GET /api/logs/daily?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailyLogs(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))

	// Validate date format before querying — an invalid value silently returns no rows.
	if _, err := time.Parse("2006-01-02", date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	items, err := queryMany[nutritionLog](h.db, c,
		`SELECT * FROM nutrition_logs
		 WHERE user_id = @userID AND date = @date
		 ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch logs")
		return
	}
	// Ensure items is an empty array (not null) in JSON
	if items == nil {
		items = []nutritionLog{}
	}

	c.JSON(http.StatusOK, dailySummary{
		Date:   date,
		Totals: summarizeDay(items),
		Items:  items,
		Goals:  defaultGoals,
	})
}

// getMonthlySummary returns the per-day calorie series and summary stats for
// a month. GET /api/logs/monthly-summary?month=YYYY-MM (defaults to the
// current month). Every calendar day of the month is present in the series.
func (h *Handler) getMonthlySummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	monthStr := c.DefaultQuery("month", time.Now().Format("2006-01"))

	monthStart, err := time.Parse("2006-01", monthStr)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}
	year, month := monthStart.Year(), monthStart.Month()
	monthEnd := monthStart.AddDate(0, 1, -1)

	logs, err := queryMany[nutritionLog](h.db, c,
		`SELECT * FROM nutrition_logs
		 WHERE user_id = @userID AND date >= @start AND date <= @end`,
		pgx.NamedArgs{
			"userID": userID,
			"start":  monthStart.Format("2006-01-02"),
			"end":    monthEnd.Format("2006-01-02"),
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch logs")
		return
	}

	c.JSON(http.StatusOK, summarizeMonth(logs, year, month))
}

// deleteLog removes a nutrition log entry. Deletes are idempotent: removing
// an id that does not exist (or was already removed) still returns 204, so a
// retried delete never surfaces a spurious failure.
// DELETE /api/logs/:id.
func (h *Handler) deleteLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	if _, err := h.db.Exec(c,
		"DELETE FROM nutrition_logs WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID}); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete log")
		return
	}

	c.Status(http.StatusNoContent)
}

// getGoals returns the static daily nutrient targets.
// GET /api/goals.
func (h *Handler) getGoals(c *gin.Context) {
	c.JSON(http.StatusOK, defaultGoals)
}
