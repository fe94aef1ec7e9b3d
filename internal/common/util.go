package common

import (
	"crypto/rand"
	"encoding/base64"
)

// MakeRandURLSafeString returns size random bytes encoded with unpadded
// URL-safe base64. It is used for one-time tokens that end up in emails.
func MakeRandURLSafeString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateRandByteArray returns a slice of n cryptographically random bytes.
// crypto/rand.Read never fails on supported platforms, so an error here is
// treated as fatal.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites b with zeros. It is a no-op for nil slices.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
