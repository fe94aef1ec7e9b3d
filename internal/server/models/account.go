package models

import "time"

type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
)

// Account is the stored credential record. Email and Phone are optional but
// at least one is present; empty values are persisted as absent so that the
// uniqueness constraints only apply to real values.
type Account struct {
	ID           string        `bson:"_id"`
	FullName     string        `bson:"full_name"`
	Email        string        `bson:"email,omitempty"`
	Phone        string        `bson:"phone,omitempty"`
	Salt         []byte        `bson:"salt"`
	PasswordHash []byte        `bson:"password_hash"`
	Verified     bool          `bson:"verified"`
	Status       AccountStatus `bson:"status"`
	CreatedAt    time.Time     `bson:"created_at"`
}

// PublicAccount is the only account shape handed out of the credential store.
type PublicAccount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func (a *Account) Public() PublicAccount {
	return PublicAccount{ID: a.ID, Name: a.FullName, Email: a.Email, Phone: a.Phone}
}
