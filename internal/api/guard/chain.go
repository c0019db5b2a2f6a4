package guard

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/digital-event-scheduler/server/internal/auth"
)

const maxBodyBytes = 1 << 20

type contextKey string

const identityKey contextKey = "trustedIdentity"

// payloadProbe pulls only the fields the gates care about out of the JSON
// body. The body itself is restored for the handler.
type payloadProbe struct {
	Email   string `json:"email"`
	EventID string `json:"eventID"`
}

// Chain builds a middleware that evaluates the given gates in order. The
// first deny stops the request with a generic 403; on success the trusted
// identity is bound to the request context.
func Chain(logger zerolog.Logger, gates ...Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := &Request{}

			if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
				req.Token = cookie.Value
			}

			if r.Body != nil {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
				if err != nil {
					deny(w, logger, "body", err)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				var probe payloadProbe
				if len(body) > 0 {
					// A malformed body is the handler's problem; the gates
					// just see empty fields and fail closed where it matters.
					_ = json.Unmarshal(body, &probe)
				}
				req.Email = probe.Email
				req.EventID = probe.EventID
			}

			for _, gate := range gates {
				if err := gate.Authorize(r.Context(), req); err != nil {
					deny(w, logger, gate.Name(), err)
					return
				}
			}

			ctx := context.WithValue(r.Context(), identityKey, req.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identity returns the trusted identity bound by the token gate, or "" when
// the request did not pass through a chain.
func Identity(r *http.Request) string {
	if r == nil {
		return ""
	}
	if identity, ok := r.Context().Value(identityKey).(string); ok {
		return identity
	}
	return ""
}

func deny(w http.ResponseWriter, logger zerolog.Logger, gate string, err error) {
	logger.Warn().Err(err).Str("gate", gate).Msg("request denied")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"acknowledged": false,
		"message":      "forbidden access",
	})
}
