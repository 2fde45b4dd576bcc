package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/medtalks/website/internal/idempotency"
	"go.uber.org/zap"
)

// ReplayedHeader marks responses served from a stored result
const ReplayedHeader = "Idempotent-Replayed"

const maxIdempotencyKeyLength = 255

// IdempotencyMiddleware replays the stored response of a POST repeated with the same Idempotency-Key.
//
// Requests without the header pass through. Keys are scoped to the request path. Only 2xx responses
// are stored; any other status releases the key so the client can correct the request and retry.
// A stored key reused with a different body is rejected with 422.
func IdempotencyMiddleware(store idempotency.Store, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotency.HeaderName)
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLength {
				writeJSONMessage(w, http.StatusBadRequest, "Invalid Idempotency-Key header.")
				return
			}

			body, err := readBody(r)
			if err != nil {
				writeJSONMessage(w, http.StatusBadRequest, "Invalid request body.")
				return
			}
			fingerprint := requestFingerprint(r, body)

			scoped := r.URL.Path + ":" + key
			stored, err := store.Begin(r.Context(), scoped)
			switch {
			case errors.Is(err, idempotency.ErrInFlight):
				writeJSONMessage(w, http.StatusConflict, "A request with this Idempotency-Key is still being processed.")
				return
			case err != nil:
				// Without the store the request is served unguarded
				logger.Warn("idempotency store unavailable",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			case stored != nil && stored.Fingerprint != "" && stored.Fingerprint != fingerprint:
				writeJSONMessage(w, http.StatusUnprocessableEntity, "This Idempotency-Key was already used with a different request.")
				return
			case stored != nil:
				if stored.ContentType != "" {
					w.Header().Set("Content-Type", stored.ContentType)
				}
				w.Header().Set(ReplayedHeader, "true")
				w.WriteHeader(stored.Status)
				w.Write(stored.Body)
				return
			}

			ctx := context.WithoutCancel(r.Context())
			rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				if p := recover(); p != nil {
					release(ctx, store, scoped, logger)
					panic(p)
				}
			}()

			next.ServeHTTP(rec, r)

			if rec.status < http.StatusOK || rec.status >= http.StatusMultipleChoices {
				release(ctx, store, scoped, logger)
				return
			}
			err = store.Complete(ctx, scoped, idempotency.Response{
				Status:      rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
				Fingerprint: fingerprint,
			})
			if err != nil {
				logger.Warn("failed to store idempotent response", zap.String("key", scoped), zap.Error(err))
			}
		})
	}
}

func release(ctx context.Context, store idempotency.Store, key string, logger *zap.Logger) {
	if err := store.Release(ctx, key); err != nil {
		logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

// readBody reads the request body and restores it for the next handler
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, err
}

// requestFingerprint hashes the submitted fields without the single-use challenge token,
// so a retry carrying a fresh token still matches its original request.
func requestFingerprint(r *http.Request, body []byte) string {
	canonical := body
	if isJSON(r) {
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err == nil {
			delete(payload, TurnstileTokenField)
			if raw, err := json.Marshal(payload); err == nil {
				canonical = raw
			}
		}
	} else if values, err := url.ParseQuery(string(body)); err == nil {
		values.Del(TurnstileTokenField)
		canonical = []byte(values.Encode())
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// recordingWriter passes the response through while keeping a copy of it
type recordingWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

func (rw *recordingWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// writeJSONMessage writes the site's standard failure body
func writeJSONMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
