package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendingapi/internal/auth"
	"lendingapi/internal/platform/crypto"
	"lendingapi/internal/testutil"
	"lendingapi/internal/user"
)

const secret = "test-secret"

func setup(t *testing.T) (*testutil.Env, *auth.Service, user.User) {
	t.Helper()
	env := testutil.NewEnv()
	hash, err := crypto.HashPassword("Sup3r$ecret")
	require.NoError(t, err)
	u, err := env.Users.Register(context.Background(), "reader@example.com", "reader", hash)
	require.NoError(t, err)
	return env, auth.NewService(secret, time.Hour, env.Users), u
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	env, svc, u := setup(t)

	t.Run("success", func(t *testing.T) {
		tok, err := svc.Login(ctx, "reader", "Sup3r$ecret")
		require.NoError(t, err)
		assert.Equal(t, 3600, tok.ExpiresIn)
		assert.Equal(t, u.ID, tok.User.ID)

		claims, err := crypto.ParseToken(secret, tok.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.UserID())
		assert.Equal(t, "reader", claims.Username)
		assert.Equal(t, string(user.RoleUser), claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "reader", "nope")
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost", "Sup3r$ecret")
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("locked", func(t *testing.T) {
		require.NoError(t, env.Users.Lock(ctx, env.Admin, u.ID))
		_, err := svc.Login(ctx, "reader", "Sup3r$ecret")
		assert.ErrorIs(t, err, auth.ErrInactive)
	})
}

func TestHTTPHandler_Login(t *testing.T) {
	_, svc, _ := setup(t)
	handler := auth.NewHTTPHandler(svc)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"success", map[string]string{"username": "reader", "password": "Sup3r$ecret"}, http.StatusOK, ""},
		{"bad credentials", map[string]string{"username": "reader", "password": "x"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"missing password", map[string]string{"username": "reader"}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Login(w, testutil.NewRequest(http.MethodPost, "/auth/login", tt.body))

			resp := testutil.RecordHTTPResponse(w)
			assert.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, resp.ErrorCode())
				return
			}
			assert.NotEmpty(t, resp.Data()["access_token"])
		})
	}
}
