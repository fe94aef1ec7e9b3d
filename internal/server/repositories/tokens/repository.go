// Package tokens stores single-use, time-bounded tokens. Each purpose
// (verification, reset) has its own table or collection and at most one
// live token per email.
package tokens

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type Repository interface {
	// Replace atomically drops every token stored for token.Email and
	// stores token in their place.
	Replace(ctx context.Context, token *models.Token) error
	// Consume atomically removes every token for email, provided one of them
	// equals value, and returns the matching token. Expiry is not checked
	// here. common.ErrTokenNotFound means nothing matched and nothing was
	// removed.
	Consume(ctx context.Context, email, value string) (*models.Token, error)
}

// TableName maps a purpose to its table or collection name.
func TableName(purpose models.TokenPurpose) (string, error) {
	switch purpose {
	case models.PurposeVerification:
		return "verification_tokens", nil
	case models.PurposeReset:
		return "reset_tokens", nil
	default:
		return "", fmt.Errorf("unknown token purpose %q", purpose)
	}
}

func mustTableName(purpose models.TokenPurpose) string {
	name, err := TableName(purpose)
	if err != nil {
		panic(err)
	}
	return name
}
