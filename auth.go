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

// register creates an account with a bcrypt-hashed password and issues an
// auth token. POST /api/register (public — no auth required).
func (h *Handler) register(c *gin.Context) {
	if h.db == nil {
		apiError(c, http.StatusServiceUnavailable, "accounts require a configured database")
		return
	}

	var body struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	if body.Email == "" || !strings.Contains(body.Email, "@") {
		apiError(c, http.StatusBadRequest, "a valid email is required")
		return
	}
	if body.Password == "" {
		apiError(c, http.StatusBadRequest, "password is required")
		return
	}
	if body.Password != body.ConfirmPassword {
		apiError(c, http.StatusBadRequest, "passwords don't match")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create account")
		return
	}
	authToken := uuid.New().String()

	u, err := queryOne[user](h.db, c,
		`INSERT INTO users (email, name, password, auth_token)
		 VALUES (@email, @name, @password, @authToken)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING *`,
		pgx.NamedArgs{
			"email": body.Email, "name": body.Name,
			"password": string(hash), "authToken": authToken,
		})
	if err != nil {
		// DO NOTHING yields zero rows when the email is taken, which surfaces
		// here as ErrNoRows from CollectOneRow.
		apiError(c, http.StatusConflict, "email already registered")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": u.AuthToken, "user_id": u.ID})
}

// login verifies email/password and returns the user's auth token.
// POST /api/login (public — no auth required).
func (h *Handler) login(c *gin.Context) {
	if h.db == nil {
		apiError(c, http.StatusServiceUnavailable, "accounts require a configured database")
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	u, lookupErr := queryOne[user](h.db, c,
		"SELECT * FROM users WHERE email = @email",
		pgx.NamedArgs{"email": strings.TrimSpace(strings.ToLower(body.Email))})

	// Always run bcrypt to keep response time constant regardless of whether
	// the email was found — prevents timing-based account enumeration.
	hashToCheck := string(dummyHash)
	if lookupErr == nil {
		hashToCheck = u.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hashToCheck), []byte(body.Password))

	if lookupErr != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if compareErr != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": u.AuthToken, "user_id": u.ID, "name": u.Name})
}

// authMiddleware validates the Bearer token and sets user_id on the context.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Single-user mode without a database: everything runs as one user,
		// mirroring the dashboard's built-in demo account.
		if h.db == nil {
			c.Set("user_id", 1)
			c.Next()
			return
		}

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
