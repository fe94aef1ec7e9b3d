// Package usage stores per-account, per-day usage counters and the recent
// activity trail (newest first, capped at common.MaxRecentActivities).
//
// Day arguments are UTC midnights as produced by timex.DayOf.
package usage

import (
	"context"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type Repository interface {
	// Increment adds one to the day's counter, creating the record at 1.
	Increment(ctx context.Context, accountID string, day time.Time) error
	// RecordActivity prepends activity, trims the trail and increments the
	// counter as one atomic step.
	RecordActivity(ctx context.Context, accountID string, day time.Time, activity models.Activity) error
	// Get returns common.ErrorNotFound when nothing was recorded that day.
	Get(ctx context.Context, accountID string, day time.Time) (*models.UsageRecord, error)
}
