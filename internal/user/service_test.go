package user_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendingapi/internal/httpx"
	"lendingapi/internal/testutil"
	"lendingapi/internal/user"
)

var ctx = context.Background()

func TestRegister(t *testing.T) {
	env := testutil.NewEnv()

	u, err := env.Users.Register(ctx, "reader@example.com", "reader", "hash")
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.Equal(t, user.StatusActive, u.Status)
	assert.True(t, u.TotalFines.IsZero())

	_, err = env.Users.Register(ctx, "other@example.com", "reader", "hash")
	assert.ErrorIs(t, err, user.ErrAlreadyExists)
}

func TestEnsureAdmin(t *testing.T) {
	env := testutil.NewEnv()

	first, err := env.Users.EnsureAdmin(ctx, "root", "hash")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, first.Role)

	again, err := env.Users.EnsureAdmin(ctx, "root", "other")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestCounters(t *testing.T) {
	env := testutil.NewEnv()
	u := env.MustUser(user.RoleUser)

	require.NoError(t, env.Users.RecordBorrow(ctx, u.ID))
	require.NoError(t, env.Users.RecordBorrow(ctx, u.ID))
	require.NoError(t, env.Users.RecordClose(ctx, u.ID))
	require.NoError(t, env.Users.AddFines(ctx, u.ID, decimal.NewFromInt(5000)))
	require.NoError(t, env.Users.AddFines(ctx, u.ID, decimal.Zero))

	got := env.User(u.ID)
	assert.Equal(t, 1, got.CurrentBorrowed)
	assert.Equal(t, 2, got.TotalBorrowed)
	assert.True(t, decimal.NewFromInt(5000).Equal(got.TotalFines))

	require.NoError(t, env.Users.RecordClose(ctx, u.ID))
	require.NoError(t, env.Users.RecordClose(ctx, u.ID))
	assert.Equal(t, -1, env.User(u.ID).CurrentBorrowed)
}

func TestLockUnlock(t *testing.T) {
	env := testutil.NewEnv()
	u := env.MustUser(user.RoleUser)

	err := env.Users.Lock(ctx, user.Caller{ID: u.ID, Role: user.RoleUser}, u.ID)
	assert.ErrorIs(t, err, user.ErrForbidden)

	require.NoError(t, env.Users.Lock(ctx, env.Admin, u.ID))
	active, err := env.Users.IsActive(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, env.Users.Unlock(ctx, env.Admin, u.ID))
	active, err = env.Users.IsActive(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, active)

	assert.ErrorIs(t, env.Users.Lock(ctx, env.Admin, "missing"), user.ErrNotFound)
}

func TestHTTPHandler_Register(t *testing.T) {
	env := testutil.NewEnv()
	handler := user.NewHTTPHandler(env.Users)

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			body:       map[string]string{"email": "a@example.com", "username": "alice", "password": "Sup3r$ecret"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "duplicate username",
			body:       map[string]string{"email": "b@example.com", "username": "alice", "password": "Sup3r$ecret"},
			wantStatus: http.StatusConflict,
			wantCode:   "ALREADY_EXISTS",
		},
		{
			name:       "weak password",
			body:       map[string]string{"email": "c@example.com", "username": "carol", "password": "password"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/auth/register", tt.body))

			resp := testutil.RecordHTTPResponse(w)
			assert.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, resp.ErrorCode())
				return
			}
			assert.NotContains(t, resp.Data(), "password")
			assert.Equal(t, "0", resp.Data()["total_fines"])
		})
	}
}

func TestHTTPHandler_Lock(t *testing.T) {
	env := testutil.NewEnv()
	handler := user.NewHTTPHandler(env.Users)
	target := env.MustUser(user.RoleUser)

	r := httptest.NewRequest(http.MethodPost, "/users/"+target.ID+"/lock", nil)
	r.SetPathValue("id", target.ID)
	r = r.WithContext(httpx.ContextWithUser(r.Context(), env.Admin.ID, string(env.Admin.Role)))

	w := httptest.NewRecorder()
	handler.Lock(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, user.StatusLocked, env.User(target.ID).Status)

	r = httptest.NewRequest(http.MethodPost, "/users/"+target.ID+"/unlock", nil)
	r.SetPathValue("id", target.ID)
	r = r.WithContext(httpx.ContextWithUser(r.Context(), target.ID, string(user.RoleUser)))

	w = httptest.NewRecorder()
	handler.Unlock(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
