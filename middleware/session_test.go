package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeAuth bool

func (f fakeAuth) IsAuthenticated() bool { return bool(f) }

func TestRequireSession(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := map[bool]int{
		true:  http.StatusTeapot,
		false: http.StatusUnauthorized,
	}
	for authenticated, want := range tests {
		rec := httptest.NewRecorder()
		RequireSession(fakeAuth(authenticated))(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != want {
			t.Errorf("authenticated=%v: got %d, want %d", authenticated, rec.Code, want)
		}
	}
}
