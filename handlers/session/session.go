package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

type (
	Session interface {
		Login(ctx context.Context, email, password string)
		Logout(ctx context.Context)
		IsAuthenticated() bool
		Loading() bool
		Error() string
		Claims() *jwt.RegisteredClaims
	}

	LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	StatusResponse struct {
		Authenticated bool       `json:"authenticated"`
		Loading       bool       `json:"loading"`
		Error         string     `json:"error,omitempty"`
		Subject       string     `json:"subject,omitempty"`
		ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	}
)

func status(sess Session) StatusResponse {
	resp := StatusResponse{
		Authenticated: sess.IsAuthenticated(),
		Loading:       sess.Loading(),
		Error:         sess.Error(),
	}
	if claims := sess.Claims(); claims != nil {
		resp.Subject = claims.Subject
		if claims.ExpiresAt != nil {
			exp := claims.ExpiresAt.Time
			resp.ExpiresAt = &exp
		}
	}
	return resp
}

func HandleStatus(sess Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, status(sess))
	}
}

// HandleLogin logs in with the posted credentials. An empty body, or empty
// fields, fall back to the configured defaults.
func HandleLogin(sess Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid request body"})
			return
		}

		sess.Login(r.Context(), req.Email, req.Password)

		resp := status(sess)
		if !resp.Authenticated {
			logrus.WithField("error", resp.Error).Warn("Facade login failed")
			render.Status(r, http.StatusUnauthorized)
		}
		render.JSON(w, r, resp)
	}
}

func HandleLogout(sess Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess.Logout(r.Context())
		render.JSON(w, r, status(sess))
	}
}
