package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/digital-event-scheduler/server/internal/auth"
)

// AuthHandler issues and clears the session cookie. Token issuance trusts
// the supplied email: the upstream identity provider has already
// authenticated the user before the SPA asks for a session.
type AuthHandler struct {
	Tokens *auth.TokenService
	Expiry time.Duration
	Env    string
	Logger zerolog.Logger
}

func NewAuthHandler(tokens *auth.TokenService, expiry time.Duration, env string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{Tokens: tokens, Expiry: expiry, Env: env, Logger: logger}
}

type tokenRequest struct {
	Email string `json:"email"`
}

// IssueToken handles POST /jwt.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeBody(r, &req); err != nil {
		nack(w, "invalid request body")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		nack(w, "Email is required")
		return
	}

	token, err := h.Tokens.Issue(email)
	if err != nil {
		storeFail(w, h.Logger, "issue token", err)
		return
	}

	auth.SetSessionCookie(w, token, h.Env, h.Expiry)
	ack(w, "token issued")
}

// Logout handles POST /logout. The clear instruction must carry the same
// cookie attributes as the set or browsers keep the stale cookie around.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.Env)
	ack(w, "logged out")
}
