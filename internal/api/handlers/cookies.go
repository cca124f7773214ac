package handlers

import (
	"net/http"
	"time"

	"github.com/dom/vidshare-backend/internal/api/middleware"
)

const RefreshTokenCookie = "refreshToken"

// CookieSettings controls the session cookies set on login and refresh.
type CookieSettings struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (c CookieSettings) setSession(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, c.cookie(middleware.AccessTokenCookie, accessToken, c.AccessTTL))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, refreshToken, c.RefreshTTL))
}

func (c CookieSettings) clearSession(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		cookie := c.cookie(name, "", 0)
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		http.SetCookie(w, cookie)
	}
}

func (c CookieSettings) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
