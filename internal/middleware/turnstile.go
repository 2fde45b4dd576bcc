package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/medtalks/website/internal/flash"
	"github.com/medtalks/website/internal/turnstile"
	"go.uber.org/zap"
)

// TurnstileTokenField is the form and JSON field carrying the challenge token
const TurnstileTokenField = "cf-turnstile-response"

const msgVerificationFailed = "Security verification failed. Please try again."

// Verifier checks a challenge token for a caller
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) turnstile.Outcome
}

// Flasher queues a notice for the next rendered page
type Flasher interface {
	Add(w http.ResponseWriter, r *http.Request, category, text string) error
}

// TurnstileMiddleware verifies the challenge token of mutating requests before they reach the handler.
//
// JSON clients get a 403 on failure; form posts are redirected back with an error notice.
func TurnstileMiddleware(verifier Verifier, flasher Flasher, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}

			jsonRequest := isJSON(r)
			var token string
			if jsonRequest {
				token = jsonToken(r)
			} else {
				token = r.FormValue(TurnstileTokenField)
			}

			ip := ClientIP(r)
			outcome := verifier.Verify(r.Context(), token, ip)
			if outcome.Success {
				next.ServeHTTP(w, r)
				return
			}

			logger.Warn("bot verification failed",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.String("path", r.URL.Path),
				zap.String("ip", ip),
				zap.Strings("error_codes", outcome.ErrorCodes),
				zap.String("error", outcome.Error),
			)

			if jsonRequest || wantsJSON(r) {
				writeJSONMessage(w, http.StatusForbidden, msgVerificationFailed)
				return
			}
			if err := flasher.Add(w, r, flash.CategoryError, msgVerificationFailed); err != nil {
				logger.Error("failed to set flash notice", zap.Error(err))
			}
			http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		})
	}
}

// jsonToken reads the token from a JSON body and restores the body for the handler
func jsonToken(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	token, _ := payload[TurnstileTokenField].(string)
	return token
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
