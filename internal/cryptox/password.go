// Package cryptox holds the password digest used by the credential store.
//
// A digest is Argon2id over (password, salt) with a fixed 32-byte output.
// The salt is random per account and stored next to the digest; the
// plaintext is never persisted.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize   = 16
	DigestSize = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// NewSalt returns a fresh random salt.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// Digest derives the password digest for the given salt.
func Digest(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, DigestSize)
}

// HashPassword generates a new salt and returns it together with the digest.
func HashPassword(password []byte) (salt, digest []byte) {
	salt = NewSalt()
	return salt, Digest(password, salt)
}

// VerifyPassword recomputes the digest of plaintext with the stored salt and
// compares it with expected in constant time.
func VerifyPassword(plaintext, salt, expected []byte) bool {
	if len(salt) == 0 || len(expected) == 0 {
		return false
	}
	candidate := Digest(plaintext, salt)
	defer common.WipeByteArray(candidate)
	return subtle.ConstantTimeCompare(candidate, expected) == 1
}
