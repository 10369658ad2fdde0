// Package token generates per-job authorization secrets.
package token

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Length of every generated secret.
	Length = 32
)

// New returns a 32-character alphanumeric secret drawn from crypto/rand.
//
// The secret is a bare capability token: it is handed to the job creator
// once, stored in plain text for the record's lifetime and never rotated.
// That is an accepted limitation of the authorization model, not an
// oversight.
func New() (string, error) {
	// Reject bytes beyond the largest multiple of the alphabet size so
	// every character is uniformly distributed.
	const limit = 256 - 256%len(alphabet)

	out := make([]byte, 0, Length)
	buf := make([]byte, Length)
	for len(out) < Length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == Length {
				break
			}
		}
	}
	return string(out), nil
}

// Matches compares a presented secret against the stored one in constant
// time.
func Matches(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
