package handler_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazario/auth-service/internal/auth"
	"github.com/bazario/auth-service/internal/config"
	"github.com/bazario/auth-service/internal/handler"
	"github.com/bazario/auth-service/internal/model"
	"github.com/bazario/auth-service/internal/repository"
	"github.com/bazario/auth-service/internal/router"
	"github.com/bazario/auth-service/internal/service"
)

// Minimal in-memory stores so the full stack (router, middleware,
// handler, service) runs against real Echo requests.

type memStores struct {
	mu       sync.Mutex
	nextID   uint64
	users    map[uint64]model.User
	roles    map[uint64]string
	sessions map[string]uint64
	findErr  error // injected session-lookup failure
}

func newMemStores() *memStores {
	return &memStores{
		users:    map[uint64]model.User{},
		roles:    map[uint64]string{},
		sessions: map[string]uint64{},
	}
}

func (m *memStores) Create(_ context.Context, u model.User) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.Email == u.Email || e.Mobile == u.Mobile {
			return 0, repository.ErrDuplicate
		}
	}
	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memStores) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (m *memStores) GetByMobile(_ context.Context, mobile string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Mobile == mobile {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (m *memStores) GetByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return model.User{}, sql.ErrNoRows
}

func (m *memStores) ResolveForUser(_ context.Context, userID uint64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.roles[userID]; ok {
		return r, nil
	}
	return "", repository.ErrNoRole
}

func (m *memStores) Assign(_ context.Context, userID uint64, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[userID] = role
	return nil
}

func (m *memStores) CreateSession(ctx context.Context, userID uint64, token, device string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = userID
	return nil
}

func (m *memStores) FindByToken(_ context.Context, token string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return 0, m.findErr
	}
	if uid, ok := m.sessions[token]; ok {
		return uid, nil
	}
	return 0, repository.ErrSessionNotFound
}

func (m *memStores) DeleteByUserAndToken(_ context.Context, userID uint64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uid, ok := m.sessions[token]; ok && uid == userID {
		delete(m.sessions, token)
	}
	return nil
}

func (m *memStores) DeleteAllByUser(_ context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for tok, uid := range m.sessions {
		if uid == userID {
			delete(m.sessions, tok)
		}
	}
	return nil
}

// sessionStore adapts memStores to the SessionStore interface (Create
// collides with the user-store method name).
type sessionStore struct{ *memStores }

func (s sessionStore) Create(ctx context.Context, userID uint64, token, device string) error {
	return s.CreateSession(ctx, userID, token, device)
}

type app struct {
	e      *echo.Echo
	stores *memStores
	tokens *auth.TokenService
}

func newApp(t *testing.T) *app {
	t.Helper()
	cfg := config.Config{
		Env:            "test",
		JWTSecret:      "handler-test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		HashWorkers:    2,
	}
	stores := newMemStores()
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	creds := service.NewCredentialService(stores, stores, sessionStore{stores},
		auth.NewHasher(), tokens, cfg.HashWorkers, nil)

	e := echo.New()
	passthrough := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, creds), tokens, passthrough)
	return &app{e: e, stores: stores, tokens: tokens}
}

func (a *app) seedUser(t *testing.T, email, password, role string) uint64 {
	t.Helper()
	hash, err := auth.NewHasher().Hash(password)
	require.NoError(t, err)
	uid, err := a.stores.Create(context.Background(), model.User{Email: email, Mobile: email, PasswordHash: hash})
	require.NoError(t, err)
	if role != "" {
		require.NoError(t, a.stores.Assign(context.Background(), uid, role))
	}
	return uid
}

func (a *app) do(method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var rdr *strings.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	} else {
		rdr = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("unknown email answers 404", func(t *testing.T) {
		a := newApp(t)
		rec := a.do(http.MethodPost, "/v1/auth/login", `{"email":"ghost@example.com","password":"pw"}`, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User not found", decode(t, rec)["message"])
	})

	t.Run("wrong password answers 401", func(t *testing.T) {
		a := newApp(t)
		a.seedUser(t, "a@example.com", "rightpw", model.RoleCustomer)
		rec := a.do(http.MethodPost, "/v1/auth/login", `{"email":"a@example.com","password":"wrong"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decode(t, rec)["message"])
	})

	t.Run("missing role answers 500 with a generic message", func(t *testing.T) {
		a := newApp(t)
		a.seedUser(t, "a@example.com", "pw", "") // no role row
		rec := a.do(http.MethodPost, "/v1/auth/login", `{"email":"a@example.com","password":"pw"}`, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", decode(t, rec)["message"])
	})

	t.Run("success returns tokens and sets cookies", func(t *testing.T) {
		a := newApp(t)
		uid := a.seedUser(t, "a@example.com", "pw", model.RoleVendor)
		rec := a.do(http.MethodPost, "/v1/auth/login",
			`{"email":"a@example.com","password":"pw"}`,
			map[string]string{"device-token": "test-device"})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, "Login successful", body["message"])
		data := body["data"].(map[string]any)
		assert.Equal(t, float64(uid), data["userId"])
		assert.NotEmpty(t, data["accessToken"])
		assert.NotEmpty(t, data["refreshToken"])

		// The session row is keyed by the returned refresh token.
		owner, err := a.stores.FindByToken(context.Background(), data["refreshToken"].(string))
		require.NoError(t, err)
		assert.Equal(t, uid, owner)

		for name, maxAge := range map[string]int{"accessToken": 15 * 60, "refreshToken": 7 * 24 * 3600} {
			ck := cookieByName(rec, name)
			require.NotNil(t, ck, "cookie %s", name)
			assert.True(t, ck.HttpOnly)
			assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
			assert.Equal(t, maxAge, ck.MaxAge)
		}
	})

	t.Run("empty body answers 400", func(t *testing.T) {
		a := newApp(t)
		rec := a.do(http.MethodPost, "/v1/auth/login", `{}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("creates an account", func(t *testing.T) {
		a := newApp(t)
		rec := a.do(http.MethodPost, "/v1/auth/register",
			`{"firstName":"Ada","email":"ada@example.com","mobile":"300","password":"pw","role":"VENDOR"}`, nil)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("duplicate identifier answers 409", func(t *testing.T) {
		a := newApp(t)
		a.seedUser(t, "a@example.com", "pw", model.RoleCustomer)
		rec := a.do(http.MethodPost, "/v1/auth/register",
			`{"email":"a@example.com","mobile":"301","password":"pw"}`, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Account already exists", decode(t, rec)["message"])
	})
}

func TestRefreshEndpoint(t *testing.T) {
	login := func(t *testing.T, a *app) (uint64, string, string) {
		t.Helper()
		uid := a.seedUser(t, "a@example.com", "pw", model.RoleCustomer)
		rec := a.do(http.MethodPost, "/v1/auth/login", `{"email":"a@example.com","password":"pw"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		data := decode(t, rec)["data"].(map[string]any)
		return uid, data["accessToken"].(string), data["refreshToken"].(string)
	}

	t.Run("live refresh token yields a new access token", func(t *testing.T) {
		a := newApp(t)
		uid, _, refresh := login(t, a)
		rec := a.do(http.MethodPost, "/v1/auth/refresh", `{"refreshToken":"`+refresh+`"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		data := decode(t, rec)["data"].(map[string]any)
		assert.Equal(t, float64(uid), data["userId"])
		assert.NotEmpty(t, data["accessToken"])
		assert.NotNil(t, cookieByName(rec, "accessToken"))
	})

	t.Run("no token answers 401", func(t *testing.T) {
		a := newApp(t)
		rec := a.do(http.MethodPost, "/v1/auth/refresh", `{}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "No token provided", decode(t, rec)["message"])
	})

	t.Run("unknown token answers 401", func(t *testing.T) {
		a := newApp(t)
		login(t, a)
		stray, err := a.tokens.IssueRefresh(1, model.RoleCustomer)
		require.NoError(t, err)
		rec := a.do(http.MethodPost, "/v1/auth/refresh", `{"refreshToken":"`+stray+`"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid token", decode(t, rec)["message"])
	})

	t.Run("store outage answers 500, not 401", func(t *testing.T) {
		a := newApp(t)
		_, _, refresh := login(t, a)
		a.stores.findErr = errors.New("driver: bad connection")

		rec := a.do(http.MethodPost, "/v1/auth/refresh", `{"refreshToken":"`+refresh+`"}`, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", decode(t, rec)["message"])
	})
}

func TestLogoutEndpoint(t *testing.T) {
	login := func(t *testing.T, a *app) (string, string) {
		t.Helper()
		a.seedUser(t, "a@example.com", "pw", model.RoleCustomer)
		rec := a.do(http.MethodPost, "/v1/auth/login", `{"email":"a@example.com","password":"pw"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		data := decode(t, rec)["data"].(map[string]any)
		return data["accessToken"].(string), data["refreshToken"].(string)
	}

	t.Run("requires a bearer token", func(t *testing.T) {
		a := newApp(t)
		rec := a.do(http.MethodGet, "/v1/auth/logout", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "No token provided", decode(t, rec)["message"])
	})

	t.Run("revokes the session and clears cookies", func(t *testing.T) {
		a := newApp(t)
		access, refresh := login(t, a)

		req := httptest.NewRequest(http.MethodGet, "/v1/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
		rec := httptest.NewRecorder()
		a.e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Logout successful", decode(t, rec)["message"])

		for _, name := range []string{"accessToken", "refreshToken"} {
			ck := cookieByName(rec, name)
			require.NotNil(t, ck, "cookie %s", name)
			assert.Empty(t, ck.Value)
			assert.Negative(t, ck.MaxAge)
		}

		// The revoked refresh token can no longer be exchanged.
		refreshRec := a.do(http.MethodPost, "/v1/auth/refresh", `{"refreshToken":"`+refresh+`"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, refreshRec.Code)
	})

	t.Run("logout is idempotent over HTTP", func(t *testing.T) {
		a := newApp(t)
		access, refresh := login(t, a)

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/v1/auth/logout", nil)
			req.Header.Set("Authorization", "Bearer "+access)
			req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
			rec := httptest.NewRecorder()
			a.e.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code, "call %d", i+1)
		}
	})

	t.Run("without a refresh token all sessions die", func(t *testing.T) {
		a := newApp(t)
		access, refresh := login(t, a)
		// Second device.
		rec := a.do(http.MethodPost, "/v1/auth/login", `{"email":"a@example.com","password":"pw"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		second := decode(t, rec)["data"].(map[string]any)["refreshToken"].(string)

		req := httptest.NewRequest(http.MethodGet, "/v1/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		out := httptest.NewRecorder()
		a.e.ServeHTTP(out, req)
		require.Equal(t, http.StatusOK, out.Code)

		for _, tok := range []string{refresh, second} {
			r := a.do(http.MethodPost, "/v1/auth/refresh", `{"refreshToken":"`+tok+`"}`, nil)
			assert.Equal(t, http.StatusUnauthorized, r.Code)
		}
	})
}

func TestMeEndpoint(t *testing.T) {
	a := newApp(t)
	a.seedUser(t, "a@example.com", "pw", model.RoleAdmin)
	rec := a.do(http.MethodPost, "/v1/auth/login", `{"email":"a@example.com","password":"pw"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	access := decode(t, rec)["data"].(map[string]any)["accessToken"].(string)

	me := a.do(http.MethodGet, "/v1/me", "", map[string]string{"Authorization": "Bearer " + access})
	require.Equal(t, http.StatusOK, me.Code)
	data := decode(t, me)["data"].(map[string]any)
	assert.Equal(t, model.RoleAdmin, data["role"])
}
