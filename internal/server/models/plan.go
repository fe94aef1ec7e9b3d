package models

import "slices"

// Plan is a catalog entry. Price is in minor currency units.
type Plan struct {
	PlanID     string   `bson:"_id" json:"plan_id"`
	Name       string   `bson:"name" json:"name"`
	Price      int64    `bson:"price" json:"price"`
	Currency   string   `bson:"currency" json:"currency"`
	UsageLimit int64    `bson:"usage_limit" json:"usage_limit"`
	Features   []string `bson:"features" json:"features"`
}

func (p *Plan) HasFeature(feature string) bool {
	return slices.Contains(p.Features, feature)
}

type Subscription struct {
	AccountID string `bson:"_id"`
	PlanID    string `bson:"plan_id"`
}

// SubscriptionView is what callers see for an account's current plan.
type SubscriptionView struct {
	PlanID     string   `json:"plan_id"`
	PlanName   string   `json:"plan_name"`
	Price      int64    `json:"price"`
	Currency   string   `json:"currency"`
	UsageLimit int64    `json:"usage_limit"`
	Features   []string `json:"features"`
}

func ViewOf(p *Plan) *SubscriptionView {
	return &SubscriptionView{
		PlanID:     p.PlanID,
		PlanName:   p.Name,
		Price:      p.Price,
		Currency:   p.Currency,
		UsageLimit: p.UsageLimit,
		Features:   slices.Clone(p.Features),
	}
}

// DefaultPlans is the canonical catalog seeded into empty storage.
func DefaultPlans() []Plan {
	return []Plan{
		{PlanID: "free", Name: "Free", Price: 0, Currency: "usd", UsageLimit: 3, Features: []string{"login", "image_basic"}},
		{PlanID: "basic", Name: "Basic", Price: 900, Currency: "usd", UsageLimit: 10, Features: []string{"login", "image_basic", "report_basic"}},
		{PlanID: "pro", Name: "Pro", Price: 2900, Currency: "usd", UsageLimit: 100, Features: []string{"login", "image_advanced", "report_basic"}},
	}
}

// FreePlan returns the canonical free plan.
func FreePlan() Plan {
	return DefaultPlans()[0]
}
