package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopazon/internal/api"
	"shopazon/internal/cart"
	"shopazon/internal/config"
	"shopazon/internal/handlers"
	"shopazon/internal/localstore"
	"shopazon/internal/session"
	"shopazon/internal/toast"
)

// backendCall is one request the fake commerce API received.
type backendCall struct {
	Method      string
	Path        string
	Body        []byte
	ContentType string
}

// fakeAPI records every call and answers from a route table keyed by
// "METHOD /path".
type fakeAPI struct {
	mu     sync.Mutex
	calls  []backendCall
	routes map[string]http.HandlerFunc
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{routes: make(map[string]http.HandlerFunc)}
}

func (f *fakeAPI) on(method, path string, h http.HandlerFunc) {
	f.routes[method+" "+path] = h
}

func (f *fakeAPI) callsTo(method, path string) []backendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []backendCall
	for _, call := range f.calls {
		if call.Method == method && call.Path == path {
			out = append(out, call)
		}
	}
	return out
}

func (f *fakeAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sanctum/csrf-cookie" {
			http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "tok", Path: "/"})
			w.WriteHeader(http.StatusNoContent)
			return
		}

		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.calls = append(f.calls, backendCall{
			Method:      r.Method,
			Path:        r.URL.Path,
			Body:        body,
			ContentType: r.Header.Get("Content-Type"),
		})
		route := f.routes[r.Method+" "+r.URL.Path]
		f.mu.Unlock()

		if route == nil {
			http.NotFound(w, r)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		route(w, r)
	})
}

func respondJSON(status int, payload interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(payload)
	}
}

var cacheSeq int

type fixture struct {
	app     *fiber.App
	client  *api.Client
	session *session.Store
	mirror  *cart.Mirror
	toasts  *toast.Store
}

func newFixture(t *testing.T, backend *fakeAPI) (*fixture, func()) {
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
		CacheDSN:    fmt.Sprintf("file:handlers_test_%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), cacheSeq),
		StorageKey:  "shopazon_user",
	})
	require.NoError(t, err)

	logger := zap.NewNop()
	sessionStore := session.NewStore(client, cache, logger)
	toasts := toast.NewStore()
	mirror := cart.NewMirror(client, sessionStore, logger)

	app := fiber.New()
	handlers.NewStorefrontHandler(client, mirror, toasts, logger).RegisterRoutes(app)
	handlers.NewCartHandler(client, sessionStore, mirror, toasts, logger).RegisterRoutes(app)
	admin := app.Group("/admin")
	handlers.NewAdminProductHandler(client, toasts, nil, logger).RegisterRoutes(admin)
	handlers.NewAdminCategoryHandler(client, toasts, nil, logger).RegisterRoutes(admin)

	fx := &fixture{app: app, client: client, session: sessionStore, mirror: mirror, toasts: toasts}
	return fx, srv.Close
}

func decodeView(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func toastMessages(body map[string]interface{}) []string {
	raw, _ := body["toasts"].([]interface{})
	var out []string
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			if msg, ok := m["message"].(string); ok {
				out = append(out, msg)
			}
		}
	}
	return out
}

func TestCategoryListRendersRows(t *testing.T) {
	backend := newFakeAPI()
	backend.on(http.MethodGet, "/api/categories", respondJSON(http.StatusOK, map[string]interface{}{
		"data": []map[string]interface{}{
			{"id": 1, "name": "Electronics", "products_count": 4},
			{"id": 2, "name": "Clothing", "products_count": 9},
		},
	}))
	fx, closeFn := newFixture(t, backend)
	defer closeFn()

	resp, err := fx.app.Test(httptest.NewRequest(http.MethodGet, "/admin/categories", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeView(t, resp)
	assert.Equal(t, "success", body["state"])

	data := body["data"].(map[string]interface{})
	assert.Len(t, data["categories"], 2)
}

func TestCategoryListEmptyStateIsNotAnError(t *testing.T) {
	backend := newFakeAPI()
	backend.on(http.MethodGet, "/api/categories", respondJSON(http.StatusOK, map[string]interface{}{
		"data": []interface{}{},
	}))
	fx, closeFn := newFixture(t, backend)
	defer closeFn()

	resp, err := fx.app.Test(httptest.NewRequest(http.MethodGet, "/admin/categories", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeView(t, resp)
	assert.Equal(t, "empty", body["state"])
	assert.Equal(t, "No categories yet.", body["message"])
}

func TestCategoryDeleteRequiresConfirmation(t *testing.T) {
	backend := newFakeAPI()
	fx, closeFn := newFixture(t, backend)
	defer closeFn()

	resp, err := fx.app.Test(httptest.NewRequest(http.MethodDelete, "/admin/categories/5", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeView(t, resp)
	assert.Equal(t, "confirm_required", body["state"])
	assert.Empty(t, backend.callsTo(http.MethodDelete, "/api/categories/5"),
		"nothing reaches the backend before the user confirms")
}

func TestCategoryDeleteSuccess(t *testing.T) {
	backend := newFakeAPI()
	backend.on(http.MethodDelete, "/api/categories/5", respondJSON(http.StatusOK, map[string]string{
		"message": "Category deleted",
	}))
	fx, closeFn := newFixture(t, backend)
	defer closeFn()

	resp, err := fx.app.Test(httptest.NewRequest(http.MethodDelete, "/admin/categories/5?confirm=true", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeView(t, resp)
	assert.Equal(t, "success", body["state"])
	assert.Contains(t, toastMessages(body), "Category deleted.")
	assert.Len(t, backend.callsTo(http.MethodDelete, "/api/categories/5"), 1)
}

func TestCategoryDeleteForbidden(t *testing.T) {
	backend := newFakeAPI()
	backend.on(http.MethodDelete, "/api/categories/5", respondJSON(http.StatusForbidden, map[string]string{
		"message": "This action is unauthorized.",
	}))
	fx, closeFn := newFixture(t, backend)
	defer closeFn()

	resp, err := fx.app.Test(httptest.NewRequest(http.MethodDelete, "/admin/categories/5?confirm=true", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "the upstream status is relayed")
	body := decodeView(t, resp)
	assert.Equal(t, "error", body["state"])
	assert.Equal(t, "This action is unauthorized.", body["message"])
	assert.Contains(t, toastMessages(body), "This action is unauthorized.")
}

func TestCartQuantityClampedBeforeSend(t *testing.T) {
	backend := newFakeAPI()
	backend.on(http.MethodPut, "/api/cart/items/10", respondJSON(http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"id": 1, "user_id": 3,
			"items": []map[string]interface{}{{"id": 10, "product_id": 100, "quantity": 1}},
		},
	}))
	fx, closeFn := newFixture(t, backend)
	defer closeFn()

	req := httptest.NewRequest(http.MethodPut, "/cart/items/10", strings.NewReader(`{"quantity":0}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := fx.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	calls := backend.callsTo(http.MethodPut, "/api/cart/items/10")
	require.Len(t, calls, 1)
	var sent map[string]int
	require.NoError(t, json.Unmarshal(calls[0].Body, &sent))
	assert.Equal(t, 1, sent["quantity"], "a zero quantity is clamped locally, never sent")

	assert.Equal(t, 1, fx.mirror.Count(), "the mutation response is adopted into the mirror")
}

func TestCartAddFailureLeavesMirrorAlone(t *testing.T) {
	backend := newFakeAPI()
	backend.on(http.MethodPost, "/api/cart/items", respondJSON(http.StatusUnprocessableEntity, map[string]interface{}{
		"message": "The given data was invalid.",
		"errors":  map[string][]string{"product_id": {"The selected product is out of stock."}},
	}))
	fx, closeFn := newFixture(t, backend)
	defer closeFn()

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"product_id":"100","quantity":2}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := fx.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeView(t, resp)
	assert.Equal(t, "error", body["state"])
	assert.Contains(t, toastMessages(body), "The selected product is out of stock.")
	assert.Nil(t, fx.mirror.Cart())
}

func TestProductCreateSendsOneMultipartRequest(t *testing.T) {
	backend := newFakeAPI()
	backend.on(http.MethodPost, "/api/products", respondJSON(http.StatusCreated, map[string]interface{}{
		"data": map[string]interface{}{"id": 42, "name": "Lamp", "price": "40.00"},
	}))
	fx, closeFn := newFixture(t, backend)
	defer closeFn()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	require.NoError(t, w.WriteField("name", "Lamp"))
	require.NoError(t, w.WriteField("description", "A desk lamp"))
	require.NoError(t, w.WriteField("price", "40.00"))
	require.NoError(t, w.WriteField("stock", "3"))
	require.NoError(t, w.WriteField("category_id", "7"))
	require.NoError(t, w.WriteField("is_active", "true"))
	require.NoError(t, w.WriteField("primary_index", "0"))
	for _, name := range []string{"front.jpg", "side.jpg"} {
		part, err := w.CreateFormFile("images[]", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg-bytes-" + name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/products", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := fx.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	calls := backend.callsTo(http.MethodPost, "/api/products")
	require.Len(t, calls, 1, "fields, files and the primary index travel in one request")

	mediaType, params := parseMultipart(t, calls[0])
	require.Equal(t, "multipart/form-data", mediaType)

	form := readMultipartForm(t, calls[0].Body, params["boundary"])
	assert.Equal(t, "Lamp", form.Value["name"][0])
	assert.Equal(t, "0", form.Value["primary_index"][0])
	assert.Equal(t, "1", form.Value["is_active"][0])
	assert.Len(t, form.File["images[]"], 2)
	assert.Equal(t, "front.jpg", form.File["images[]"][0].Filename)
}

func TestProductCreateRejectsMissingName(t *testing.T) {
	backend := newFakeAPI()
	fx, closeFn := newFixture(t, backend)
	defer closeFn()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	require.NoError(t, w.WriteField("price", "40.00"))
	require.NoError(t, w.WriteField("category_id", "7"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/products", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := fx.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, backend.callsTo(http.MethodPost, "/api/products"),
		"local validation failures never reach the backend")
}

func TestStorefrontHomeSectionsAreIndependent(t *testing.T) {
	backend := newFakeAPI()
	backend.on(http.MethodGet, "/api/featured-products", respondJSON(http.StatusInternalServerError, map[string]string{
		"message": "Server Error",
	}))
	backend.on(http.MethodGet, "/api/latest-products", respondJSON(http.StatusOK, map[string]interface{}{
		"data": []map[string]interface{}{{"id": 1, "name": "Lamp", "price": "40.00", "stock": 3}},
	}))
	backend.on(http.MethodGet, "/api/categories", respondJSON(http.StatusOK, map[string]interface{}{
		"data": []map[string]interface{}{{"id": 7, "name": "Lighting"}},
	}))
	fx, closeFn := newFixture(t, backend)
	defer closeFn()

	resp, err := fx.app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode, "one failed section does not fail the page")
	body := decodeView(t, resp)
	assert.Equal(t, "success", body["state"])

	data := body["data"].(map[string]interface{})
	featured := data["featured"].(map[string]interface{})
	assert.Equal(t, "error", featured["state"], "the failed section renders its own error")
	latest := data["latest"].(map[string]interface{})
	assert.Equal(t, "success", latest["state"])
}

func parseMultipart(t *testing.T, call backendCall) (string, map[string]string) {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(call.ContentType)
	require.NoError(t, err)
	return mediaType, params
}

func readMultipartForm(t *testing.T, body []byte, boundary string) *multipart.Form {
	t.Helper()
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	return form
}
