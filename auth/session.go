package auth

import (
	"bytes"
	"canvas-templates/api"
	"canvas-templates/core"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const LoginPath = "/api/v1/login"

const loginFailedMessage = "Login failed"

type (
	loginPayload struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RememberMe int    `json:"remember_me"`
	}

	loginResponse struct {
		Token string `json:"token"`
	}

	errorResponse struct {
		Message string `json:"message"`
	}

	// Session owns the bearer token and the login/logout lifecycle. It is
	// the only writer of the token, in memory and in the TokenStore.
	Session struct {
		client   *api.Client
		store    core.TokenStore
		defaults core.Credentials

		mu      sync.RWMutex
		token   string
		loading bool
		err     string
	}
)

// NewSession restores the persisted token from store. client is only used
// for the login request, which never carries a token.
func NewSession(ctx context.Context, client *api.Client, store core.TokenStore, defaults core.Credentials) (*Session, error) {
	s := &Session{
		client:   client.WithTokens(nil),
		store:    store,
		defaults: defaults,
	}

	token, err := store.Load(ctx)
	switch {
	case errors.Is(err, core.ErrTokenNotFound):
	case err != nil:
		return nil, fmt.Errorf("load persisted token: %w", err)
	default:
		s.token = token
		logrus.Info("Restored persisted session token")
	}
	return s, nil
}

// Token implements api.TokenSource.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.Token()
	return ok
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error returns the message of the last failed login, or "".
func (s *Session) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// LoginDefault logs in with the configured default credentials.
func (s *Session) LoginDefault(ctx context.Context) {
	s.Login(ctx, "", "")
}

// Login exchanges credentials for a bearer token. An empty email or
// password falls back to the configured default. The outcome is observed
// through IsAuthenticated and Error; Login itself reports nothing.
func (s *Session) Login(ctx context.Context, email, password string) {
	if email == "" {
		email = s.defaults.Email
	}
	if password == "" {
		password = s.defaults.Password
	}

	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	log := logrus.WithField("email", email)

	token, err := s.requestToken(ctx, email, password)
	if err == nil {
		err = s.setToken(ctx, token)
	}
	if err != nil {
		log.WithError(err).Warn("Login failed")
		s.fail(ctx, err)
		return
	}

	log.Info("Logged in")
}

func (s *Session) requestToken(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(loginPayload{
		Email:      email,
		Password:   password,
		RememberMe: 1,
	})
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(ctx, s.client.URL(LoginPath), api.Options{
		Method: http.MethodPost,
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !api.IsSuccess(resp.StatusCode) {
		var errData errorResponse
		if json.NewDecoder(resp.Body).Decode(&errData) == nil && errData.Message != "" {
			return "", errors.New(errData.Message)
		}
		return "", errors.New(loginFailedMessage)
	}

	var data loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if data.Token == "" {
		return "", errors.New("login response did not include a token")
	}
	return data.Token, nil
}

func (s *Session) setToken(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.store.Save(ctx, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

func (s *Session) fail(ctx context.Context, err error) {
	msg := err.Error()
	if msg == "" {
		msg = "Unknown error"
	}

	s.mu.Lock()
	s.token = ""
	s.err = msg
	s.mu.Unlock()

	s.clearStored(ctx)
}

// clearStored removes the persisted token, ignoring cancellation of ctx so
// an abandoned login or logout still clears storage.
func (s *Session) clearStored(ctx context.Context) {
	if err := s.store.Clear(context.WithoutCancel(ctx)); err != nil {
		logrus.WithError(err).Error("Failed to clear persisted token")
	}
}

// Logout drops the token from memory and storage. Logging out of an
// unauthenticated session does nothing.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	had := s.token != ""
	s.token = ""
	s.mu.Unlock()

	s.clearStored(ctx)
	if had {
		logrus.Info("Logged out")
	}
}

// Claims decodes the token's registered claims without verifying the
// signature, for display only. It returns nil when there is no token or
// the token is not a JWT.
func (s *Session) Claims() *jwt.RegisteredClaims {
	token, ok := s.Token()
	if !ok {
		return nil
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}
