package orchestrator

import (
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// Kind tags the business outcome of a flow. Expected conditions are kinds,
// never errors.
type Kind string

const (
	KindOK                    Kind = "ok"
	KindDuplicateIdentity     Kind = "duplicate_identity"
	KindAccountNotFound       Kind = "account_not_found"
	KindInvalidCredentials    Kind = "invalid_credentials"
	KindVerificationRequired  Kind = "verification_required"
	KindInvalidOrExpiredToken Kind = "invalid_or_expired_token"
	KindIdentityMismatch      Kind = "identity_mismatch"
	KindUnknownPlan           Kind = "unknown_plan"
	KindQuotaExceeded         Kind = "quota_exceeded"
)

var messages = map[Kind]string{
	KindOK:                    "Success.",
	KindDuplicateIdentity:     "An account with this email or phone already exists.",
	KindAccountNotFound:       "Account not found.",
	KindInvalidCredentials:    "Invalid credentials.",
	KindVerificationRequired:  "Verification required. Check email for OTP.",
	KindInvalidOrExpiredToken: "Invalid or expired token.",
	KindIdentityMismatch:      "Email/phone mismatch.",
	KindUnknownPlan:           "Unknown plan.",
	KindQuotaExceeded:         "Daily usage limit reached.",
}

// Message is a user-facing sentence for the kind.
func (k Kind) Message() string {
	if m, ok := messages[k]; ok {
		return m
	}
	return string(k)
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	// PlanID defaults to the free plan when empty.
	PlanID string
}

type RegisterResult struct {
	Kind      Kind
	AccountID string
}

type VerifyResult struct {
	Kind Kind
}

type LoginResult struct {
	Kind    Kind
	Account *models.PublicAccount
	// Email is set with KindVerificationRequired so the caller can go
	// back to the verify step.
	Email string
	// AccessToken is set with KindOK when the orchestrator has a
	// session issuer.
	AccessToken string
}

type ForgotPasswordResult struct {
	Kind Kind
}

type ResetPasswordResult struct {
	Kind Kind
}

type SubscriptionResult struct {
	Kind         Kind
	Subscription *models.SubscriptionView
}

type UsageResult struct {
	Kind  Kind
	Usage *models.UsageView
}

type UseFeatureResult struct {
	Kind Kind
}
