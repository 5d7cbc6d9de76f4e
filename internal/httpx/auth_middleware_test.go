package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lendingapi/internal/platform/crypto"
)

const testSecret = "test-secret"

type stubAccounts map[string]bool

func (s stubAccounts) IsActive(_ context.Context, userID string) (bool, error) {
	active, ok := s[userID]
	if !ok {
		return false, errors.New("not found")
	}
	return active, nil
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := crypto.GenerateToken(testSecret, crypto.Subject{UserID: userID, Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return "Bearer " + token
}

func TestAuthMiddleware(t *testing.T) {
	accounts := stubAccounts{"u1": true, "u2": false}

	var gotUser, gotRole string
	handler := AuthMiddleware(testSecret, accounts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotRole = UserIDFrom(r), RoleFrom(r)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"active user", bearer(t, "u1", "USER"), http.StatusOK},
		{"locked user", bearer(t, "u2", "USER"), http.StatusForbidden},
		{"unknown user", bearer(t, "u3", "USER"), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me/loans", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
		})
	}

	if gotUser != "u1" || gotRole != "USER" {
		t.Errorf("Expected caller u1/USER in context, got %s/%s", gotUser, gotRole)
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := AuthMiddleware(testSecret, nil)(RequireAdmin(okHandler()))

	req := httptest.NewRequest(http.MethodPut, "/settings", nil)
	req.Header.Set("Authorization", bearer(t, "u1", "USER"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for USER, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/settings", nil)
	req.Header.Set("Authorization", bearer(t, "a1", "ADMIN"))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for ADMIN, got %d", w.Code)
	}
}
