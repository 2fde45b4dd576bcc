// Package flash carries one-shot notices across a redirect in a signed cookie
package flash

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the name of the cookie holding pending notices
const CookieName = "flash"

// Notice categories used by the page templates
const (
	CategorySuccess = "success"
	CategoryError   = "error"
	CategoryInfo    = "info"
)

// Message is a single notice shown on the next rendered page
type Message struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

type claims struct {
	Messages []Message `json:"messages"`
	jwt.RegisteredClaims
}

// Store reads and writes notices signed with an HMAC secret
type Store struct {
	secret []byte
	maxAge time.Duration
	secure bool
	now    func() time.Time
}

// NewStore creates a notice store. Cookies are marked Secure when secure is set.
func NewStore(secret string, maxAge time.Duration, secure bool) *Store {
	return &Store{
		secret: []byte(secret),
		maxAge: maxAge,
		secure: secure,
		now:    time.Now,
	}
}

// Add appends a notice to the ones already pending on the request
func (s *Store) Add(w http.ResponseWriter, r *http.Request, category, text string) error {
	messages := s.read(r)
	messages = append(messages, Message{Category: category, Text: text})

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Messages: messages,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("failed to sign flash cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Pop returns the pending notices and clears the cookie.
//
// Tampered or expired cookies yield no notices.
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) []Message {
	if _, err := r.Cookie(CookieName); err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s.read(r)
}

func (s *Store) read(r *http.Request) []Message {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	var c claims
	_, err = jwt.ParseWithClaims(cookie.Value, &c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil
	}
	return c.Messages
}
