package fakeapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

type contextKey string

const ClaimsContextKey = contextKey("claims")

const (
	shortSession    = 2 * time.Hour
	rememberSession = 30 * 24 * time.Hour
)

type (
	// AppClaims represents the custom claims for the JWT.
	AppClaims struct {
		jwt.RegisteredClaims
		Email string `json:"email"`
	}

	loginRequest struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RememberMe int    `json:"remember_me"`
	}
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"message": "Invalid request body"})
		return
	}

	log := logrus.WithField("email", req.Email)

	password, ok := s.users[req.Email]
	if !ok || password != req.Password {
		log.Warn("Rejected login")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, map[string]string{"message": "These credentials do not match our records."})
		return
	}

	lifetime := shortSession
	if req.RememberMe == 1 {
		lifetime = rememberSession
	}

	token, err := s.createJWT(req.Email, lifetime)
	if err != nil {
		log.WithError(err).Error("Failed to create JWT")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"message": "Failed to create token"})
		return
	}

	log.Info("Issued token")
	render.JSON(w, r, map[string]string{"token": token})
}

// IssueToken mints a token for email as a successful login would.
func (s *Server) IssueToken(email string) (string, error) {
	return s.createJWT(email, shortSession)
}

func (s *Server) createJWT(email string, lifetime time.Duration) (string, error) {
	now := s.now()
	claims := AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseJWT verifies a token issued by this server.
func (s *Server) ParseJWT(tokenString string) (*AppClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AppClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// authJWT rejects requests without a valid bearer token.
func (s *Server) authJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"message": "Unauthenticated."})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"message": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := s.ParseJWT(parts[1])
		if err != nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"message": "Unauthenticated."})
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// methodOverride lets a POST stand in for PATCH, PUT or DELETE through the
// _method query parameter, for clients that cannot send those verbs with a
// multipart body.
func methodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch m := strings.ToUpper(r.URL.Query().Get("_method")); m {
			case http.MethodPatch, http.MethodPut, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func claimsFrom(r *http.Request) *AppClaims {
	claims, _ := r.Context().Value(ClaimsContextKey).(*AppClaims)
	return claims
}
