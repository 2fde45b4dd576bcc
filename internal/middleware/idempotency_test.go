package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/medtalks/website/internal/idempotency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// failingStore is an idempotency store whose backend is down
type failingStore struct{}

func (failingStore) Begin(ctx context.Context, key string) (*idempotency.Response, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Complete(ctx context.Context, key string, resp idempotency.Response) error {
	return errors.New("connection refused")
}

func (failingStore) Release(ctx context.Context, key string) error {
	return errors.New("connection refused")
}

// countingHandler answers with the configured status and counts calls
type countingHandler struct {
	calls  int
	status int
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls++
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.status)
	w.Write([]byte(`{"success":true,"reference_number":"MT-20250301-AAAAA"}`))
}

func postWithKey(path, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(idempotency.HeaderName, key)
	}
	return req
}

func TestIdempotencyMiddleware_Replay(t *testing.T) {
	store := idempotency.NewMemoryStore(time.Minute, time.Hour)
	next := &countingHandler{status: http.StatusCreated}
	h := IdempotencyMiddleware(store, zap.NewNop())(next)

	first := httptest.NewRecorder()
	h.ServeHTTP(first, postWithKey("/api/partnership-application", "abc"))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, postWithKey("/api/partnership-application", "abc"))

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, "true", second.Header().Get(ReplayedHeader))
	assert.Empty(t, first.Header().Get(ReplayedHeader))

	// Same key on another path is a different request
	other := httptest.NewRecorder()
	h.ServeHTTP(other, postWithKey("/api/course/enroll", "abc"))
	assert.Equal(t, 2, next.calls)
}

func TestIdempotencyMiddleware_PassThrough(t *testing.T) {
	tests := []struct {
		name   string
		method string
		key    string
	}{
		{name: "no key", method: http.MethodPost},
		{name: "not a post", method: http.MethodGet, key: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &countingHandler{status: http.StatusOK}
			h := IdempotencyMiddleware(idempotency.NewMemoryStore(time.Minute, time.Hour), zap.NewNop())(next)

			for i := 0; i < 2; i++ {
				req := httptest.NewRequest(tt.method, "/api/course/enroll", nil)
				if tt.key != "" {
					req.Header.Set(idempotency.HeaderName, tt.key)
				}
				h.ServeHTTP(httptest.NewRecorder(), req)
			}

			assert.Equal(t, 2, next.calls)
		})
	}
}

func TestIdempotencyMiddleware_InFlight(t *testing.T) {
	store := idempotency.NewMemoryStore(time.Minute, time.Hour)
	_, err := store.Begin(context.Background(), "/api/course/enroll:abc")
	require.NoError(t, err)
	next := &countingHandler{status: http.StatusOK}
	rec := httptest.NewRecorder()

	IdempotencyMiddleware(store, zap.NewNop())(next).ServeHTTP(rec, postWithKey("/api/course/enroll", "abc"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 0, next.calls)
	assert.JSONEq(t, `{"success":false,"message":"A request with this Idempotency-Key is still being processed."}`, rec.Body.String())
}

func TestIdempotencyMiddleware_ServerErrorReleasesKey(t *testing.T) {
	store := idempotency.NewMemoryStore(time.Minute, time.Hour)
	next := &countingHandler{status: http.StatusInternalServerError}
	h := IdempotencyMiddleware(store, zap.NewNop())(next)

	h.ServeHTTP(httptest.NewRecorder(), postWithKey("/api/course/enroll", "abc"))
	next.status = http.StatusOK
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, postWithKey("/api/course/enroll", "abc"))

	assert.Equal(t, 2, next.calls)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIdempotencyMiddleware_PanicReleasesKey(t *testing.T) {
	store := idempotency.NewMemoryStore(time.Minute, time.Hour)
	h := IdempotencyMiddleware(store, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	assert.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), postWithKey("/api/course/enroll", "abc"))
	})

	resp, err := store.Begin(context.Background(), "/api/course/enroll:abc")
	assert.NoError(t, err)
	assert.Nil(t, resp)
}

func TestIdempotencyMiddleware_StoreUnavailable(t *testing.T) {
	next := &countingHandler{status: http.StatusOK}
	rec := httptest.NewRecorder()

	IdempotencyMiddleware(failingStore{}, zap.NewNop())(next).ServeHTTP(rec, postWithKey("/api/course/enroll", "abc"))

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIdempotencyMiddleware_KeyTooLong(t *testing.T) {
	next := &countingHandler{status: http.StatusOK}
	rec := httptest.NewRecorder()

	IdempotencyMiddleware(idempotency.NewMemoryStore(time.Minute, time.Hour), zap.NewNop())(next).
		ServeHTTP(rec, postWithKey("/api/course/enroll", strings.Repeat("k", 300)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, next.calls)
}

// fieldCheckHandler rejects bodies without "ok":true, the way a validating endpoint does
type fieldCheckHandler struct {
	calls int
}

func (h *fieldCheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls++
	var payload map[string]any
	json.NewDecoder(r.Body).Decode(&payload)
	if payload["ok"] != true {
		writeJSONMessage(w, http.StatusBadRequest, "fix fields")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"success":true}`))
}

func jsonPostWithKey(path, key, body string) *http.Request {
	req := postWithKey(path, key)
	req.Body = io.NopCloser(strings.NewReader(body))
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestIdempotencyMiddleware_ClientErrorReleasesKey(t *testing.T) {
	store := idempotency.NewMemoryStore(time.Minute, time.Hour)
	next := &fieldCheckHandler{}
	h := IdempotencyMiddleware(store, zap.NewNop())(next)

	first := httptest.NewRecorder()
	h.ServeHTTP(first, jsonPostWithKey("/api/course/enroll", "abc", `{"ok":false}`))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, jsonPostWithKey("/api/course/enroll", "abc", `{"ok":true}`))

	assert.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, `{"success":true}`, second.Body.String())
	assert.Empty(t, second.Header().Get(ReplayedHeader))
	assert.Equal(t, 2, next.calls)
}

func TestIdempotencyMiddleware_BodyMismatch(t *testing.T) {
	tests := []struct {
		name           string
		retryBody      string
		expectedStatus int
		expectedCalls  int
		expectReplay   bool
	}{
		{
			name:           "same fields replay",
			retryBody:      `{"ok":true,"name":"Ada"}`,
			expectedStatus: http.StatusOK,
			expectedCalls:  1,
			expectReplay:   true,
		},
		{
			name:           "fresh challenge token still replays",
			retryBody:      `{"name":"Ada","ok":true,"cf-turnstile-response":"second-token"}`,
			expectedStatus: http.StatusOK,
			expectedCalls:  1,
			expectReplay:   true,
		},
		{
			name:           "different fields are rejected",
			retryBody:      `{"ok":true,"name":"Grace"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := idempotency.NewMemoryStore(time.Minute, time.Hour)
			next := &fieldCheckHandler{}
			h := IdempotencyMiddleware(store, zap.NewNop())(next)

			h.ServeHTTP(httptest.NewRecorder(), jsonPostWithKey("/api/partnership-application", "abc",
				`{"ok":true,"name":"Ada","cf-turnstile-response":"first-token"}`))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, jsonPostWithKey("/api/partnership-application", "abc", tt.retryBody))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedCalls, next.calls)
			if tt.expectReplay {
				assert.Equal(t, "true", rec.Header().Get(ReplayedHeader))
			}
		})
	}
}
