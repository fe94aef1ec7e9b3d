package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/api"
)

func formatPrice(cents int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, strings.ToUpper(currency))
}

func (a *App) Plans(ctx context.Context) error {
	plans, err := a.client.Plans(ctx)
	if err != nil {
		return err
	}
	for _, p := range plans {
		fmt.Fprintf(a.out, "%-8s %-10s %12s  limit %d/day  %s\n",
			p.PlanID, p.Name, formatPrice(p.Price, p.Currency), p.UsageLimit, strings.Join(p.Features, ", "))
	}
	return nil
}

func (a *App) printSubscription(s *api.Subscription) {
	fmt.Fprintf(a.out, "Plan: %s (%s), %s, limit %d/day\nFeatures: %s\n",
		s.PlanName, s.PlanID, formatPrice(s.Price, s.Currency), s.UsageLimit, strings.Join(s.Features, ", "))
}

func (a *App) Subscription(ctx context.Context) error {
	resp, err := a.client.Subscription(ctx)
	if err != nil {
		return err
	}
	if resp.Status != api.StatusOK || resp.Subscription == nil {
		return a.outcome(resp.Status, resp.Message)
	}
	a.printSubscription(resp.Subscription)
	return nil
}

// Upgrade lists the catalog and moves the account to the chosen plan.
func (a *App) Upgrade(ctx context.Context) error {
	if err := a.Plans(ctx); err != nil {
		return err
	}
	planID, err := getSimpleText(a.reader, "Enter plan id", a.out)
	if err != nil {
		return err
	}

	resp, err := a.client.UpgradePlan(ctx, planID)
	if err != nil {
		return err
	}
	return a.outcome(resp.Status, resp.Message)
}

func (a *App) Usage(ctx context.Context) error {
	resp, err := a.client.Usage(ctx)
	if err != nil {
		return err
	}
	if resp.Status != api.StatusOK || resp.Usage == nil {
		return a.outcome(resp.Status, resp.Message)
	}

	fmt.Fprintf(a.out, "%s: %d\n", resp.Usage.Period, resp.Usage.CurrentUsage)
	for _, act := range resp.Usage.RecentActivities {
		fmt.Fprintf(a.out, "  %s  %s\n", act.Timestamp, act.Feature)
	}
	return nil
}

func (a *App) UseFeature(ctx context.Context) error {
	feature, err := getSimpleText(a.reader, "Enter feature", a.out)
	if err != nil {
		return err
	}
	return a.useFeature(ctx, feature)
}

func (a *App) useFeature(ctx context.Context, feature string) error {
	resp, err := a.client.UseFeature(ctx, feature)
	if err != nil {
		return err
	}
	return a.outcome(resp.Status, resp.Message)
}
