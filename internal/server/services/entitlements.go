package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/plans"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/usage"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"
)

// EntitlementService owns the plan catalog, subscriptions and daily usage.
type EntitlementService struct {
	plans         plans.Repository
	subscriptions subscriptions.Repository
	usage         usage.Repository
	clock         timex.Clock
}

func NewEntitlementService(p plans.Repository, s subscriptions.Repository, u usage.Repository, clock timex.Clock) *EntitlementService {
	return &EntitlementService{plans: p, subscriptions: s, usage: u, clock: clock}
}

// SeedPlans installs the canonical catalog into empty storage.
func (s *EntitlementService) SeedPlans(ctx context.Context) (bool, error) {
	return s.plans.SeedIfEmpty(ctx, models.DefaultPlans())
}

func (s *EntitlementService) ListPlans(ctx context.Context) ([]models.Plan, error) {
	return s.plans.List(ctx)
}

// GetPlan returns common.ErrUnknownPlan for a plan id not in the catalog.
func (s *EntitlementService) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	p, err := s.plans.Get(ctx, planID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownPlan
		}
		return nil, err
	}
	return p, nil
}

// GetSubscription resolves the account's plan. No subscription means the
// free plan (nothing is written); a subscription to a plan that has left
// the catalog is rewritten to free.
func (s *EntitlementService) GetSubscription(ctx context.Context, accountID string) (*models.SubscriptionView, error) {
	sub, err := s.subscriptions.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return s.freeView(ctx)
		}
		return nil, err
	}

	p, err := s.plans.Get(ctx, sub.PlanID)
	if err == nil {
		return models.ViewOf(p), nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	if err := s.subscriptions.Upsert(ctx, accountID, common.DefaultPlanID); err != nil {
		return nil, err
	}
	return s.freeView(ctx)
}

// SetSubscription moves the account to planID.
func (s *EntitlementService) SetSubscription(ctx context.Context, accountID, planID string) (*models.SubscriptionView, error) {
	p, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.subscriptions.Upsert(ctx, accountID, p.PlanID); err != nil {
		return nil, err
	}
	return models.ViewOf(p), nil
}

func (s *EntitlementService) RecordLogin(ctx context.Context, accountID string) error {
	return s.usage.Increment(ctx, accountID, timex.DayOf(s.clock.Now()))
}

func (s *EntitlementService) RecordActivity(ctx context.Context, accountID, feature string) error {
	now := s.clock.Now()
	return s.usage.RecordActivity(ctx, accountID, timex.DayOf(now), models.Activity{Feature: feature, Timestamp: now})
}

// GetUsage returns today's counters, zeroed when nothing was recorded.
func (s *EntitlementService) GetUsage(ctx context.Context, accountID string) (*models.UsageView, error) {
	view := &models.UsageView{Period: models.UsagePeriodToday, RecentActivities: []models.Activity{}}

	rec, err := s.usage.Get(ctx, accountID, timex.DayOf(s.clock.Now()))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return view, nil
		}
		return nil, err
	}

	view.CurrentUsage = rec.CurrentUsage
	if rec.RecentActivities != nil {
		view.RecentActivities = rec.RecentActivities
	}
	return view, nil
}

// freeView uses the stored free plan, or the canonical one if the catalog
// lacks it.
func (s *EntitlementService) freeView(ctx context.Context) (*models.SubscriptionView, error) {
	p, err := s.plans.Get(ctx, common.DefaultPlanID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		free := models.FreePlan()
		p = &free
	}
	return models.ViewOf(p), nil
}
