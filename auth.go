package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a pre-computed bcrypt hash used when a login email isn't found.
// Running bcrypt against it (instead of returning early) keeps response time
// constant, preventing timing-based account enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// login verifies email/password and returns the user's auth token.
// POST /api/login (public — no auth required).
func (h *Handler) login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Email == "" || body.Password == "" {
		apiError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	u, lookupErr := queryOne[user](h.db, c,
		"SELECT * FROM users WHERE email = @email",
		pgx.NamedArgs{"email": body.Email})

	// Always run bcrypt to keep response time constant regardless of whether
	// the email was found.
	hashToCheck := string(dummyHash)
	if lookupErr == nil {
		hashToCheck = u.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hashToCheck), []byte(body.Password))

	if lookupErr != nil || compareErr != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": u.AuthToken, "user_id": u.ID})
}

// register creates a user with a bcrypt-hashed password, a fresh auth token
// and a default profile row, then returns the token so the client is logged
// in immediately.
// POST /api/register (public — no auth required).
func (h *Handler) register(c *gin.Context) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" || body.Email == "" || body.Password == "" {
		apiError(c, http.StatusBadRequest, "name, email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create account")
		return
	}

	u, err := queryOne[user](h.db, c,
		`INSERT INTO users (name, email, password, auth_token)
		 VALUES (@name, @email, @password, @authToken)
		 RETURNING *`,
		pgx.NamedArgs{
			"name":      body.Name,
			"email":     body.Email,
			"password":  string(hash),
			"authToken": uuid.New().String(),
		})
	if err != nil {
		// The unique constraint on email is the usual culprit here.
		apiError(c, http.StatusConflict, "an account with that email already exists")
		return
	}

	p := defaultProfile(u.ID, body.Name, body.Email)
	if _, err := h.db.Exec(c,
		`INSERT INTO user_profile (user_id, name, email, height_cm, weight_kg, age_years, gender, activity_level)
		 VALUES (@userID, @name, @email, @heightCM, @weightKG, @ageYears, @gender, @activityLevel)`,
		pgx.NamedArgs{
			"userID": p.UserID, "name": p.Name, "email": p.Email,
			"heightCM": p.HeightCM, "weightKG": p.WeightKG, "ageYears": p.AgeYears,
			"gender": p.Gender, "activityLevel": p.ActivityLevel,
		}); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create profile")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": u.AuthToken, "user_id": u.ID})
}

// logout invalidates the presented token by rotating the stored one.
// POST /api/logout (authenticated).
func (h *Handler) logout(c *gin.Context) {
	userID := c.GetInt("user_id")

	if _, err := h.db.Exec(c,
		"UPDATE users SET auth_token = @token WHERE id = @userID",
		pgx.NamedArgs{"token": uuid.New().String(), "userID": userID}); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to log out")
		return
	}

	c.Status(http.StatusNoContent)
}

// authMiddleware validates the Bearer token and sets user_id on the context.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		var userID int
		err := h.db.QueryRow(c, "SELECT id FROM users WHERE auth_token = $1", token).Scan(&userID)
		if err != nil {
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
