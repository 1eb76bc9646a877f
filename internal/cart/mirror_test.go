package cart_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopazon/internal/api"
	"shopazon/internal/cart"
	"shopazon/internal/config"
	"shopazon/internal/localstore"
	"shopazon/internal/models"
	"shopazon/internal/session"
)

type fakeBackend struct {
	mu        sync.Mutex
	loginUser *models.User
	cart      *models.Cart
	cartFails bool
}

func (b *fakeBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		switch {
		case r.URL.Path == "/sanctum/csrf-cookie":
			http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "tok", Path: "/"})
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/login":
			json.NewEncoder(w).Encode(map[string]interface{}{"data": b.loginUser})
		case r.URL.Path == "/api/logout":
			json.NewEncoder(w).Encode(map[string]string{"message": "Logged out"})
		case r.URL.Path == "/api/cart" && r.URL.Query().Get("user_id") == b.loginUser.ID.String():
			if b.cartFails {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"message": "Server Error"})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"data": b.cart})
		default:
			http.NotFound(w, r)
		}
	})
}

var cacheSeq int

func newFixture(t *testing.T, backend *fakeBackend) (*cart.Mirror, *session.Store, func()) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())

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
		CacheDSN:    fmt.Sprintf("file:mirror_test_%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), cacheSeq),
		StorageKey:  "shopazon_user",
	})
	require.NoError(t, err)

	store := session.NewStore(client, cache, zap.NewNop())
	mirror := cart.NewMirror(client, store, zap.NewNop())
	return mirror, store, srv.Close
}

func testCart() *models.Cart {
	return &models.Cart{
		ID:     "1",
		UserID: "3",
		Items: []models.CartItem{
			{ID: "10", ProductID: "100", Quantity: 2},
			{ID: "11", ProductID: "101", Quantity: 1},
		},
	}
}

func TestLoginTriggersRefresh(t *testing.T) {
	backend := &fakeBackend{
		loginUser: &models.User{ID: "3", Role: models.RoleCustomer},
		cart:      testCart(),
	}
	mirror, store, closeFn := newFixture(t, backend)
	defer closeFn()

	assert.Equal(t, 0, mirror.Count())

	_, err := store.Login(context.Background(), "grace@example.com", "secret")
	require.NoError(t, err)

	// The session change callback runs synchronously on the login path.
	assert.Equal(t, 3, mirror.Count())
	assert.Len(t, mirror.Items(), 2)
}

func TestLogoutClearsMirror(t *testing.T) {
	backend := &fakeBackend{
		loginUser: &models.User{ID: "3", Role: models.RoleCustomer},
		cart:      testCart(),
	}
	mirror, store, closeFn := newFixture(t, backend)
	defer closeFn()

	_, err := store.Login(context.Background(), "grace@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, 3, mirror.Count())

	store.Logout(context.Background())
	assert.Equal(t, 0, mirror.Count())
	assert.Nil(t, mirror.Cart())
}

func TestRefreshFailureKeepsStaleCart(t *testing.T) {
	backend := &fakeBackend{
		loginUser: &models.User{ID: "3", Role: models.RoleCustomer},
		cart:      testCart(),
	}
	mirror, store, closeFn := newFixture(t, backend)
	defer closeFn()

	_, err := store.Login(context.Background(), "grace@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, 3, mirror.Count())

	backend.mu.Lock()
	backend.cartFails = true
	backend.mu.Unlock()

	mirror.Refresh(context.Background())
	assert.Equal(t, 3, mirror.Count(), "a failed refresh leaves the last known cart in place")
}

func TestAdoptIgnoresMalformedPayload(t *testing.T) {
	backend := &fakeBackend{
		loginUser: &models.User{ID: "3", Role: models.RoleCustomer},
		cart:      testCart(),
	}
	mirror, store, closeFn := newFixture(t, backend)
	defer closeFn()

	_, err := store.Login(context.Background(), "grace@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, 3, mirror.Count())

	mirror.Adopt(nil)
	assert.Equal(t, 3, mirror.Count())

	mirror.Adopt(&models.Cart{ID: "1", UserID: "3"})
	assert.Equal(t, 3, mirror.Count(), "a cart without an items collection is not adopted")

	mirror.Adopt(&models.Cart{ID: "1", UserID: "3", Items: []models.CartItem{}})
	assert.Equal(t, 0, mirror.Count(), "an explicitly empty cart is adopted")
}

func TestRefreshWithoutUserClears(t *testing.T) {
	backend := &fakeBackend{
		loginUser: &models.User{ID: "3", Role: models.RoleCustomer},
		cart:      testCart(),
	}
	mirror, store, closeFn := newFixture(t, backend)
	defer closeFn()

	_, err := store.Login(context.Background(), "grace@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, 3, mirror.Count())

	store.Logout(context.Background())
	mirror.Refresh(context.Background())
	assert.Nil(t, mirror.Cart())
}
