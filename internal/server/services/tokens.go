package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"
)

// tokenBytes is the entropy of an issued token before encoding.
const tokenBytes = 16

// TokenLedgers resolves the repository for a purpose.
type TokenLedgers interface {
	Tokens(purpose models.TokenPurpose) tokens.Repository
}

// TokenService issues and consumes single-use, time-bounded tokens.
type TokenService struct {
	ledgers TokenLedgers
	clock   timex.Clock
	ttl     time.Duration
}

func NewTokenService(ledgers TokenLedgers, clock timex.Clock, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = common.DefaultTokenTTL
	}
	return &TokenService{ledgers: ledgers, clock: clock, ttl: ttl}
}

// Issue replaces any live token for (email, purpose) with a new one.
func (s *TokenService) Issue(ctx context.Context, email string, purpose models.TokenPurpose) (*models.Token, error) {
	if !purpose.Valid() {
		return nil, fmt.Errorf("unknown token purpose %q", purpose)
	}

	value, err := common.MakeRandURLSafeString(tokenBytes)
	if err != nil {
		return nil, err
	}

	token := &models.Token{Email: email, Value: value, ExpiresAt: s.clock.Now().Add(s.ttl)}
	if err := s.ledgers.Tokens(purpose).Replace(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Consume spends the token. It returns common.ErrTokenNotFound when no
// stored token matches and common.ErrTokenExpired when the match is past its
// expiry; in both the matched and the expired case the ledger entry is gone.
func (s *TokenService) Consume(ctx context.Context, email string, purpose models.TokenPurpose, value string) error {
	if !purpose.Valid() {
		return fmt.Errorf("unknown token purpose %q", purpose)
	}
	if email == "" || value == "" {
		return common.ErrTokenNotFound
	}

	token, err := s.ledgers.Tokens(purpose).Consume(ctx, email, value)
	if err != nil {
		return err
	}
	if token.Expired(s.clock.Now()) {
		return common.ErrTokenExpired
	}
	return nil
}
