package common

import "time"

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// session access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultTokenTTL is the lifetime of verification and reset tokens.
const DefaultTokenTTL = 15 * time.Minute

// DefaultPlanID is the plan every account falls back to.
const DefaultPlanID = "free"

// MaxRecentActivities caps the per-day activity trail.
const MaxRecentActivities = 100
