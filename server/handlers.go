package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jrsteele09/go-session-server/auth"
	apperrors "github.com/jrsteele09/go-session-server/internal/errors"
	"github.com/jrsteele09/go-session-server/users"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxBodyBytes    = 1 << 20
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the body of every session endpoint. The access token is
// echoed for clients that prefer a bearer header; the refresh token never is.
type authResponse struct {
	Success bool          `json:"success"`
	User    *users.Public `json:"user,omitempty"`
	Token   string        `json:"token,omitempty"`
	Message string        `json:"message,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RegisterHandler creates an account and opens its first session
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(w, r, "RegisterHandler", &req); err != nil {
			writeError(w, err)
			return
		}

		res, err := s.auth.Register(r.Context(), req.Email, req.Password, req.FullName)
		if err != nil {
			writeError(w, err)
			return
		}
		s.writeAuthResult(w, http.StatusCreated, res)
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, "LoginHandler", &req); err != nil {
			writeError(w, err)
			return
		}

		res, err := s.auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		s.writeAuthResult(w, http.StatusOK, res)
	}
}

// CheckStatusHandler re-issues the access token for the authenticated principal
func (s *Server) CheckStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := PrincipalFromContext(r.Context())
		res, err := s.auth.CheckStatus(r.Context(), principal)
		if err != nil {
			writeError(w, err)
			return
		}
		s.writeAuthResult(w, http.StatusOK, res)
	}
}

// RefreshHandler rotates the refresh token held in the refresh cookie
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshToken, err := refreshTokenFromRequest(r, "RefreshHandler")
		if err != nil {
			writeError(w, err)
			return
		}

		res, err := s.auth.RefreshSession(r.Context(), refreshToken)
		if err != nil {
			writeError(w, err)
			return
		}
		s.writeAuthResult(w, http.StatusOK, res)
	}
}

// LogoutHandler always clears both cookies, even when the refresh cookie is already gone
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var refreshToken string
		if cookie, err := r.Cookie(CookieRefreshToken); err == nil {
			refreshToken = cookie.Value
		}
		s.writeAuthResult(w, http.StatusOK, s.auth.Logout(r.Context(), refreshToken))
	}
}

// PrivateHandler answers for any principal that made it through the route's guards
func (s *Server) PrivateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := PrincipalFromContext(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"message": "private route reached",
			"user":    principal.Public(),
		})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// writeAuthResult moves tokens into cookies and writes the rest as the JSON body
func (s *Server) writeAuthResult(w http.ResponseWriter, status int, res *auth.Result) {
	s.applyCredentialCookies(w, res)
	writeJSON(w, status, authResponse{
		Success: true,
		User:    res.User,
		Token:   res.AccessToken,
		Message: res.Message,
	})
}

func refreshTokenFromRequest(r *http.Request, op string) (string, error) {
	cookie, err := r.Cookie(CookieRefreshToken)
	if err != nil || cookie.Value == "" {
		return "", apperrors.Unauthorized(op, "Refresh token not found", err)
	}
	return cookie.Value, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, op string, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.Validation(op, "invalid request body", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to write response")
	}
}

// writeError maps err through the public error table. The internal cause is
// logged and never written to the response.
func writeError(w http.ResponseWriter, err error) {
	status, kind, message := apperrors.Public(err)

	event := log.Debug()
	switch {
	case status >= http.StatusInternalServerError:
		event = log.Error()
	case errors.Is(err, apperrors.ErrConflict):
		event = log.Warn()
	}
	event.Err(err).Int("status", status).Msg("request failed")

	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}
