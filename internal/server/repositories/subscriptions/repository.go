// Package subscriptions maps accounts to plans, one row per account.
package subscriptions

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when the account has no subscription.
	Get(ctx context.Context, accountID string) (*models.Subscription, error)
	// Upsert creates or overwrites the account's subscription.
	Upsert(ctx context.Context, accountID, planID string) error
}
