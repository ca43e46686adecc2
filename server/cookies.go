package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-session-server/auth"
)

const (
	// CookieAccessToken carries the access token
	CookieAccessToken = "token"
	// CookieRefreshToken carries the refresh token; it never appears in a response body
	CookieRefreshToken = "refreshToken"
)

// applyCredentialCookies turns the tokens in a session result into cookies.
// A set token becomes a cookie, a cleared result expires both cookies.
func (s *Server) applyCredentialCookies(w http.ResponseWriter, res *auth.Result) {
	if res.ClearCredentials {
		s.clearCookie(w, CookieAccessToken)
		s.clearCookie(w, CookieRefreshToken)
		return
	}
	if res.AccessToken != "" {
		s.setCookie(w, CookieAccessToken, res.AccessToken, s.config.GetAccessTokenTTL())
	}
	if res.RefreshToken != "" {
		s.setCookie(w, CookieRefreshToken, res.RefreshToken, s.config.GetRefreshTokenTTL())
	}
}

func (s *Server) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.GetSecureCookies(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

func (s *Server) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.GetSecureCookies(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
