package models

import "time"

// TokenPurpose selects one of the two independent token ledgers.
type TokenPurpose string

const (
	PurposeVerification TokenPurpose = "verification"
	PurposeReset        TokenPurpose = "reset"
)

func (p TokenPurpose) Valid() bool {
	return p == PurposeVerification || p == PurposeReset
}

type Token struct {
	Email     string    `bson:"_id"`
	Value     string    `bson:"token"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Expired reports whether the token is no longer usable at now.
// A token is still valid at exactly ExpiresAt.
func (t *Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
