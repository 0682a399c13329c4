package common

import (
	"crypto/rand"
	"math/big"

	"github.com/oklog/ulid/v2"
)

// NewULID returns a 26-char lexicographically sortable id. Used for link
// tokens: they are never all-digit, so they stay disjoint from numeric ids.
func NewULID() (string, error) {
	id, err := ulid.New(ulid.Now(), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

const shortCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewShortCode returns a random alphanumeric code for SMS-friendly links.
func NewShortCode(length int) (string, error) {
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(shortCodeAlphabet))))
		if err != nil {
			return "", err
		}
		out[i] = shortCodeAlphabet[n.Int64()]
	}
	return string(out), nil
}
