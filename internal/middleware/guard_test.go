package middleware_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopazon/internal/api"
	"shopazon/internal/config"
	"shopazon/internal/localstore"
	"shopazon/internal/middleware"
	"shopazon/internal/models"
	"shopazon/internal/session"
)

var cacheSeq int

// newSessionStore builds a session store backed by a fake API. The backend's
// session probe answers 401 unless a user is supplied.
func newSessionStore(t *testing.T, probeUser *models.User) (*session.Store, *localstore.Store, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sanctum/csrf-cookie":
			http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "tok", Path: "/"})
			w.WriteHeader(http.StatusNoContent)
		case "/api/user":
			if probeUser == nil {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"message": "Unauthenticated."})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"data": probeUser})
		default:
			http.NotFound(w, r)
		}
	}))

	client, err := api.New(config.APIConfig{
		BaseURL: srv.URL + "/api",
		Origin:  srv.URL,
		Timeout: 5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)

	cacheSeq++
	cache, err := localstore.Open(config.SessionConfig{
		Secret:      "test-secret",
		CacheDriver: "sqlite",
		CacheDSN:    fmt.Sprintf("file:guard_test_%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), cacheSeq),
		StorageKey:  "shopazon_user",
	})
	require.NoError(t, err)

	return session.NewStore(client, cache, zap.NewNop()), cache, srv.Close
}

func guardedApp(store *session.Store, requireAdmin bool) *fiber.App {
	app := fiber.New()
	app.Get("/guarded", middleware.Guard(store, requireAdmin), func(c *fiber.Ctx) error {
		user := middleware.CurrentUser(c)
		return c.JSON(fiber.Map{"user_id": user.ID})
	})
	return app
}

func TestGuardResolvedAnonymousRedirectsToLogin(t *testing.T) {
	store, _, closeFn := newSessionStore(t, nil)
	defer closeFn()
	store.Hydrate(context.Background())
	require.True(t, store.Resolved())

	app := guardedApp(store, false)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded?tab=2", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?redirect=%2Fguarded%3Ftab%3D2", resp.Header.Get("Location"),
		"the attempted location rides along for post-login return")
}

func TestGuardResolvedUserPasses(t *testing.T) {
	user := &models.User{ID: "3", Role: models.RoleCustomer}
	store, _, closeFn := newSessionStore(t, user)
	defer closeFn()
	store.Hydrate(context.Background())

	app := guardedApp(store, false)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGuardResolvedNonAdminSentHome(t *testing.T) {
	user := &models.User{ID: "3", Role: models.RoleCustomer}
	store, _, closeFn := newSessionStore(t, user)
	defer closeFn()
	store.Hydrate(context.Background())

	app := guardedApp(store, true)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestGuardUnresolvedTrustsCache(t *testing.T) {
	store, cache, closeFn := newSessionStore(t, nil)
	defer closeFn()
	require.NoError(t, cache.SaveUser(&models.User{ID: "7", Role: models.RoleCustomer}))
	require.False(t, store.Resolved(), "resolution deliberately not started")

	app := guardedApp(store, false)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "a cached user renders without waiting for verification")
}

func TestGuardUnresolvedCachedNonAdminRedirectsImmediately(t *testing.T) {
	store, cache, closeFn := newSessionStore(t, nil)
	defer closeFn()
	require.NoError(t, cache.SaveUser(&models.User{ID: "7", Role: models.RoleCustomer}))

	app := guardedApp(store, true)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode,
		"the cached role is enough to bounce a non-admin without a server round trip")
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestGuardUnresolvedWithoutCacheIsLoading(t *testing.T) {
	store, _, closeFn := newSessionStore(t, nil)
	defer closeFn()

	app := guardedApp(store, false)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "loading", body["state"])
}

func TestSafeRedirectTarget(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", "/"},
		{"relative path", "/orders", "/orders"},
		{"relative with query", "/shop?sort=price_asc", "/shop?sort=price_asc"},
		{"absolute url", "https://evil.example.com/", "/"},
		{"scheme-relative", "//evil.example.com", "/"},
		{"bare word", "orders", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, middleware.SafeRedirectTarget(tt.raw))
		})
	}
}
