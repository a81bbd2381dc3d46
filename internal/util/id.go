package util

import (
	"crypto/rand"
	"encoding/base64"
)

// NewID returns a random URL-safe identifier, used for request ids and
// opaque session tokens.
func NewID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
