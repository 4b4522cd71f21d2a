package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type mockSession struct {
	accept    string
	token     bool
	err       string
	gotEmail  string
	gotPass   string
	loggedOut bool
}

func (m *mockSession) Login(ctx context.Context, email, password string) {
	m.gotEmail, m.gotPass = email, password
	if password == m.accept {
		m.token, m.err = true, ""
		return
	}
	m.token, m.err = false, "Login failed"
}

func (m *mockSession) Logout(ctx context.Context) {
	m.loggedOut = true
	m.token = false
}

func (m *mockSession) IsAuthenticated() bool { return m.token }
func (m *mockSession) Loading() bool         { return false }
func (m *mockSession) Error() string         { return m.err }

func (m *mockSession) Claims() *jwt.RegisteredClaims {
	if !m.token {
		return nil
	}
	return &jwt.RegisteredClaims{
		Subject:   "dev@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) StatusResponse {
	t.Helper()
	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func TestHandleLogin_Success(t *testing.T) {
	sess := &mockSession{accept: "pw"}
	req := httptest.NewRequest(http.MethodPost, "/session/login", strings.NewReader(`{"email":"dev@example.com","password":"pw"}`))
	rec := httptest.NewRecorder()

	HandleLogin(sess).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status code mismatch: got %d", rec.Code)
	}
	resp := decodeStatus(t, rec)
	if !resp.Authenticated || resp.Subject != "dev@example.com" || resp.ExpiresAt == nil {
		t.Errorf("status mismatch: %+v", resp)
	}
	if sess.gotEmail != "dev@example.com" {
		t.Errorf("email mismatch: got %q", sess.gotEmail)
	}
}

func TestHandleLogin_Failure(t *testing.T) {
	sess := &mockSession{accept: "pw"}
	req := httptest.NewRequest(http.MethodPost, "/session/login", strings.NewReader(`{"email":"dev@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()

	HandleLogin(sess).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Status code mismatch: got %d", rec.Code)
	}
	if resp := decodeStatus(t, rec); resp.Authenticated || resp.Error != "Login failed" {
		t.Errorf("status mismatch: %+v", resp)
	}
}

func TestHandleLogin_EmptyBodyUsesDefaults(t *testing.T) {
	sess := &mockSession{accept: ""}
	req := httptest.NewRequest(http.MethodPost, "/session/login", http.NoBody)
	rec := httptest.NewRecorder()

	HandleLogin(sess).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status code mismatch: got %d", rec.Code)
	}
	if sess.gotEmail != "" || sess.gotPass != "" {
		t.Errorf("empty body should pass empty credentials, got %q/%q", sess.gotEmail, sess.gotPass)
	}
}

func TestHandleLogin_InvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/session/login", strings.NewReader(`{"email":`))
	rec := httptest.NewRecorder()

	HandleLogin(&mockSession{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status code mismatch: got %d, want 400", rec.Code)
	}
}

func TestHandleLogout(t *testing.T) {
	sess := &mockSession{token: true}
	rec := httptest.NewRecorder()

	HandleLogout(sess).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/session/logout", nil))

	if !sess.loggedOut {
		t.Error("Logout was not called")
	}
	if resp := decodeStatus(t, rec); resp.Authenticated || resp.ExpiresAt != nil {
		t.Errorf("status mismatch: %+v", resp)
	}
}

func TestHandleStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleStatus(&mockSession{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session", nil))

	if resp := decodeStatus(t, rec); resp.Authenticated || resp.Subject != "" {
		t.Errorf("status mismatch: %+v", resp)
	}
}
