package turnstile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c := New("secret", "")

	assert.Equal(t, DefaultVerifyURL, c.VerifyURL)
	assert.Equal(t, 10*time.Second, c.HTTP.Timeout)
}

func TestClient_Verify(t *testing.T) {
	tests := []struct {
		name          string
		secret        string
		token         string
		remoteIP      string
		handler       http.HandlerFunc
		expected      Outcome
		expectedCalls int32
		errorPrefix   string
	}{
		{
			name:          "missing token",
			secret:        "secret",
			token:         "",
			expected:      Outcome{Error: ErrMissingToken},
			expectedCalls: 0,
		},
		{
			name:          "missing secret",
			secret:        "",
			token:         "tok",
			expected:      Outcome{Error: ErrNotConfigured},
			expectedCalls: 0,
		},
		{
			name:     "success passes diagnostics through",
			secret:   "secret",
			token:    "tok",
			remoteIP: "203.0.113.7",
			handler: func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "secret", r.PostForm.Get("secret"))
				assert.Equal(t, "tok", r.PostForm.Get("response"))
				assert.Equal(t, "203.0.113.7", r.PostForm.Get("remoteip"))
				w.Write([]byte(`{"success":true,"challenge_ts":"2025-03-01T12:00:00.000Z","hostname":"medtalks.example","error-codes":[],"action":"contact","cdata":"abc"}`))
			},
			expected: Outcome{
				Success:     true,
				ChallengeTS: "2025-03-01T12:00:00.000Z",
				Hostname:    "medtalks.example",
				ErrorCodes:  []string{},
				Action:      "contact",
				CData:       "abc",
			},
			expectedCalls: 1,
		},
		{
			name:   "rejected token",
			secret: "secret",
			token:  "tok",
			handler: func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, r.ParseForm())
				assert.False(t, r.PostForm.Has("remoteip"))
				w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
			},
			expected:      Outcome{ErrorCodes: []string{"invalid-input-response"}},
			expectedCalls: 1,
		},
		{
			name:   "malformed response",
			secret: "secret",
			token:  "tok",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte(`<html>bad gateway</html>`))
			},
			expectedCalls: 1,
			errorPrefix:   "verification response malformed (status 502)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				assert.Equal(t, http.MethodPost, r.Method)
				if tt.handler != nil {
					tt.handler(w, r)
				}
			}))
			defer server.Close()

			c := New(tt.secret, server.URL)

			out := c.Verify(context.Background(), tt.token, tt.remoteIP)

			assert.Equal(t, tt.expectedCalls, calls.Load())
			if tt.errorPrefix != "" {
				assert.False(t, out.Success)
				assert.Contains(t, out.Error, tt.errorPrefix)
				return
			}
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestClient_VerifyTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	out := New("secret", url).Verify(context.Background(), "tok", "")

	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "verification request failed")
}

func TestClient_VerifyTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := New("secret", server.URL)
	c.HTTP.Timeout = 50 * time.Millisecond

	out := c.Verify(context.Background(), "tok", "")

	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "verification request failed")
}
