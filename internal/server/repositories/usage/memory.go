package usage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"
)

type key struct {
	accountID string
	day       string
}

type MemoryRepository struct {
	mu      sync.Mutex
	records map[key]*models.UsageRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[key]*models.UsageRecord)}
}

func (r *MemoryRepository) Increment(_ context.Context, accountID string, day time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record(accountID, day).CurrentUsage++
	return nil
}

func (r *MemoryRepository) RecordActivity(_ context.Context, accountID string, day time.Time, activity models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.record(accountID, day)
	rec.CurrentUsage++
	rec.RecentActivities = slices.Insert(rec.RecentActivities, 0, activity)
	if len(rec.RecentActivities) > common.MaxRecentActivities {
		rec.RecentActivities = rec.RecentActivities[:common.MaxRecentActivities]
	}
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, accountID string, day time.Time) (*models.UsageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[key{accountID, timex.DayKey(day)}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *rec
	c.RecentActivities = slices.Clone(rec.RecentActivities)
	return &c, nil
}

// record returns the day's record, creating it. Caller holds mu.
func (r *MemoryRepository) record(accountID string, day time.Time) *models.UsageRecord {
	k := key{accountID, timex.DayKey(day)}
	rec, ok := r.records[k]
	if !ok {
		rec = &models.UsageRecord{AccountID: accountID, Day: k.day}
		r.records[k] = rec
	}
	return rec
}
