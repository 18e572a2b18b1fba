package session_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/libradesk/libradesk/internal/errs"
	"github.com/libradesk/libradesk/internal/model"
	"github.com/libradesk/libradesk/internal/session"
	"github.com/libradesk/libradesk/internal/session/mocks"
)

func mintToken(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	claims := session.Claims{}
	claims.Profile.Name = "Maxine Reader"
	claims.Profile.Role = role
	claims.Email = "maxine@example.org"
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func newManager(t *testing.T, c *gomock.Controller, persisted string) (*session.Manager, *mocks.MockAuthAPI, *mocks.MockTokenStore) {
	t.Helper()
	api := mocks.NewMockAuthAPI(c)
	store := mocks.NewMockTokenStore(c)
	store.EXPECT().ReadToken(gomock.Any()).Return(persisted, nil)
	m := session.NewManager(context.Background(), api, store, zap.NewExample())
	return m, api, store
}

func TestDecodeIdentity(t *testing.T) {
	t.Parallel()

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()
		token := mintToken(t, "librarian", time.Hour)
		identity, err := session.DecodeIdentity(token)
		require.NoError(t, err)
		require.Equal(t, "user-42", identity.ID)
		require.Equal(t, "Maxine Reader", identity.Name)
		require.Equal(t, "maxine@example.org", identity.Email)
		require.Equal(t, model.RoleLibrarian, identity.Role)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		token := mintToken(t, "reader", -time.Minute)
		_, err := session.DecodeIdentity(token)
		require.ErrorIs(t, err, errs.ErrBadToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()
		_, err := session.DecodeIdentity("not.a.token")
		require.ErrorIs(t, err, errs.ErrBadToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		t.Parallel()
		token := mintToken(t, "superuser", time.Hour)
		_, err := session.DecodeIdentity(token)
		require.ErrorIs(t, err, errs.ErrBadToken)
	})
}

func TestManager_Login(t *testing.T) {
	t.Parallel()

	type response struct {
		resp model.AuthResponse
		code int
		err  error
	}
	adminToken := mintToken(t, "admin", time.Hour)

	var tests = []struct {
		name          string
		email         string
		password      string
		callsAPI      bool
		persists      bool
		response      response
		wantErr       error
		authenticated bool
	}{
		{
			name:     "ok admin",
			email:    "admin@example.org",
			password: "swordfish42",
			callsAPI: true,
			persists: true,
			response: response{
				resp: model.AuthResponse{AccessToken: adminToken},
				code: http.StatusOK,
			},
			authenticated: true,
		},
		{
			name:     "bad credentials",
			email:    "admin@example.org",
			password: "swordfish42",
			callsAPI: true,
			response: response{code: http.StatusUnauthorized},
			wantErr:  errs.ErrUnauthorized,
		},
		{
			name:     "network failure",
			email:    "admin@example.org",
			password: "swordfish42",
			callsAPI: true,
			response: response{code: 0, err: errors.New("connection refused")},
		},
		{
			name:     "malformed token is fatal",
			email:    "admin@example.org",
			password: "swordfish42",
			callsAPI: true,
			response: response{
				resp: model.AuthResponse{AccessToken: "broken"},
				code: http.StatusOK,
			},
			wantErr: errs.ErrBadToken,
		},
		{
			name:     "validation: empty email never hits the network",
			email:    "",
			password: "swordfish42",
		},
		{
			name:     "validation: short password never hits the network",
			email:    "admin@example.org",
			password: "short",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			m, api, store := newManager(t, c, "")

			if tt.callsAPI {
				api.EXPECT().
					Login(gomock.Any(), model.LoginRequest{Email: tt.email, Password: tt.password}).
					Return(tt.response.resp, tt.response.code, tt.response.err)
			}
			if tt.persists {
				store.EXPECT().WriteToken(gomock.Any(), tt.response.resp.AccessToken).Return(nil)
			}

			err := m.Login(context.Background(), tt.email, tt.password)
			if tt.authenticated {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				if tt.wantErr != nil {
					require.ErrorIs(t, err, tt.wantErr)
				}
			}

			state := m.State()
			require.Equal(t, tt.authenticated, state.Authenticated)
			require.False(t, state.Loading)
			if !tt.authenticated {
				require.Empty(t, state.Token)
				require.Nil(t, state.Identity)
			}
		})
	}
}

func TestManager_HasRole(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()

	t.Run("no identity means no role at all", func(t *testing.T) {
		m, _, _ := newManager(t, c, "")
		require.False(t, m.HasRole(model.RoleReader))
		require.False(t, m.HasRole(model.RoleLibrarian))
		require.False(t, m.HasRole(model.RoleAdmin))
		require.False(t, m.HasRole(model.RoleReader, model.RoleLibrarian, model.RoleAdmin))
	})

	t.Run("admin is admin, not reader", func(t *testing.T) {
		m, _, _ := newManager(t, c, mintToken(t, "admin", time.Hour))
		require.True(t, m.HasRole(model.RoleAdmin))
		require.False(t, m.HasRole(model.RoleReader))
		// membership in an explicit set that includes admin
		require.True(t, m.HasRole(model.RoleLibrarian, model.RoleAdmin))
	})
}

func TestManager_Restore(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()

	t.Run("valid persisted token restores the session", func(t *testing.T) {
		m, _, _ := newManager(t, c, mintToken(t, "reader", time.Hour))
		state := m.State()
		require.True(t, state.Authenticated)
		require.NotNil(t, state.Identity)
		require.Equal(t, model.RoleReader, state.Identity.Role)
	})

	t.Run("bad persisted token is cleared and reported", func(t *testing.T) {
		api := mocks.NewMockAuthAPI(c)
		store := mocks.NewMockTokenStore(c)
		store.EXPECT().ReadToken(gomock.Any()).Return("corrupted", nil)
		store.EXPECT().ClearToken(gomock.Any()).Return(nil)

		m := session.NewManager(context.Background(), api, store, zap.NewExample())
		state := m.State()
		require.False(t, state.Authenticated)
		require.NotEmpty(t, state.Err)
	})

	t.Run("no persisted token means a clean empty state", func(t *testing.T) {
		m, _, _ := newManager(t, c, "")
		require.Equal(t, session.State{}, m.State())
	})
}

func TestManager_LogoutIdempotent(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()

	m, _, store := newManager(t, c, mintToken(t, "reader", time.Hour))
	store.EXPECT().ClearToken(gomock.Any()).Return(nil).Times(1)

	ctx := context.Background()
	m.Logout(ctx)
	after := m.State()
	m.Logout(ctx)
	require.Equal(t, after, m.State())
	require.Equal(t, session.State{}, m.State())
}

func TestManager_ConcurrentInvalidate(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()

	m, _, store := newManager(t, c, mintToken(t, "reader", time.Hour))
	// three concurrent 401 handlers collapse into one effective logout
	store.EXPECT().ClearToken(gomock.Any()).Return(nil).Times(1)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Invalidate()
		}()
	}
	wg.Wait()

	require.Equal(t, session.State{}, m.State())
}

func TestManager_Register(t *testing.T) {
	t.Parallel()

	valid := model.RegisterRequest{
		Name:     "New Reader",
		Email:    "new@example.org",
		Password: "longenough",
		Confirm:  "longenough",
	}

	var tests = []struct {
		name     string
		req      model.RegisterRequest
		callsAPI bool
		code     int
		wantErr  error
	}{
		{name: "created", req: valid, callsAPI: true, code: http.StatusCreated},
		{name: "conflict", req: valid, callsAPI: true, code: http.StatusConflict, wantErr: errs.ErrConflict},
		{
			name: "confirmation mismatch never hits the network",
			req: model.RegisterRequest{
				Name:     "New Reader",
				Email:    "new@example.org",
				Password: "longenough",
				Confirm:  "different1",
			},
		},
		{
			name: "missing name never hits the network",
			req: model.RegisterRequest{
				Email:    "new@example.org",
				Password: "longenough",
				Confirm:  "longenough",
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			m, api, _ := newManager(t, c, "")

			if tt.callsAPI {
				api.EXPECT().Register(gomock.Any(), tt.req).Return(tt.code, nil)
			}

			err := m.Register(context.Background(), tt.req)
			if tt.callsAPI && tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				if tt.wantErr != nil {
					require.ErrorIs(t, err, tt.wantErr)
				}
			}
			// registration never authenticates by itself
			require.False(t, m.State().Authenticated)
		})
	}
}
