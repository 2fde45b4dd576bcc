package services

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

const (
	referencePrefix       = "MT"
	referenceAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referenceSuffixLength = 5
)

// ReferenceGenerator generates application reference numbers like MT-20250301-K7Q2Z
type ReferenceGenerator struct {
	now    func() time.Time
	random io.Reader
}

// NewReferenceGenerator creates a generator drawing from the system random source
func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{
		now:    time.Now,
		random: rand.Reader,
	}
}

// Next returns a new reference number dated with the current UTC date.
//
// Each suffix character is drawn uniformly from A-Z and 0-9.
func (g *ReferenceGenerator) Next() (string, error) {
	alphabetSize := big.NewInt(int64(len(referenceAlphabet)))
	suffix := make([]byte, referenceSuffixLength)
	for i := range suffix {
		n, err := rand.Int(g.random, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate reference number: %w", err)
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}

	return fmt.Sprintf("%s-%s-%s", referencePrefix, g.now().UTC().Format("20060102"), suffix), nil
}
