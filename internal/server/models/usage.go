package models

import "time"

type Activity struct {
	Feature   string    `bson:"feature" json:"feature"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// UsageRecord is one account's counters for one UTC day.
// RecentActivities is newest first.
type UsageRecord struct {
	AccountID        string     `bson:"account_id"`
	Day              string     `bson:"day"`
	CurrentUsage     int64      `bson:"current_usage"`
	RecentActivities []Activity `bson:"recent_activities"`
}

type UsageView struct {
	CurrentUsage     int64      `json:"current_usage"`
	Period           string     `json:"period"`
	RecentActivities []Activity `json:"recent_activities"`
}

const UsagePeriodToday = "Today"
