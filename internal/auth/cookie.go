package auth

import (
	"net/http"
	"time"
)

// SessionCookieName identifies the app's session cookie.
const SessionCookieName = "des_token"

// SetSessionCookie writes the session token. Attributes depend on the
// deployment environment: production serves the SPA from another origin, so
// the cookie must be Secure with SameSite=None; everywhere else it stays
// same-site and plain HTTP friendly.
func SetSessionCookie(w http.ResponseWriter, token string, env string, expiry time.Duration) {
	http.SetCookie(w, sessionCookie(token, env, int(expiry.Seconds())))
}

// ClearSessionCookie expires the session cookie. The attributes must match
// the ones used when setting it or browsers may refuse to clear it.
func ClearSessionCookie(w http.ResponseWriter, env string) {
	http.SetCookie(w, sessionCookie("", env, -1))
}

func sessionCookie(value string, env string, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	}
	if env == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	} else {
		cookie.Secure = false
		cookie.SameSite = http.SameSiteStrictMode
	}
	return cookie
}
