// Package api holds the wire messages of the account service. They are
// shared by the gRPC server and the CLI client and travel as JSON.
package api

const ServiceName = "accountkeeper.AccountService"

const (
	MethodRegister       = "Register"
	MethodVerify         = "Verify"
	MethodLogin          = "Login"
	MethodForgotPassword = "ForgotPassword"
	MethodResetPassword  = "ResetPassword"
	MethodLogout         = "Logout"
	MethodPlans          = "Plans"
	MethodSubscription   = "Subscription"
	MethodUpgradePlan    = "UpgradePlan"
	MethodUsage          = "Usage"
	MethodUseFeature     = "UseFeature"
)

// FullMethod returns the gRPC path of a method, e.g.
// "/accountkeeper.AccountService/Login".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// Status is the business outcome of a call.
type Status string

const (
	StatusOK                    Status = "ok"
	StatusDuplicateIdentity     Status = "duplicate_identity"
	StatusAccountNotFound       Status = "account_not_found"
	StatusInvalidCredentials    Status = "invalid_credentials"
	StatusVerificationRequired  Status = "verification_required"
	StatusInvalidOrExpiredToken Status = "invalid_or_expired_token"
	StatusIdentityMismatch      Status = "identity_mismatch"
	StatusUnknownPlan           Status = "unknown_plan"
	StatusQuotaExceeded         Status = "quota_exceeded"
)

type Account struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Plan struct {
	PlanID     string   `json:"plan_id"`
	Name       string   `json:"name"`
	Price      int64    `json:"price"`
	Currency   string   `json:"currency"`
	UsageLimit int64    `json:"usage_limit"`
	Features   []string `json:"features"`
}

type Subscription struct {
	PlanID     string   `json:"plan_id"`
	PlanName   string   `json:"plan_name"`
	Price      int64    `json:"price"`
	Currency   string   `json:"currency"`
	UsageLimit int64    `json:"usage_limit"`
	Features   []string `json:"features"`
}

type Activity struct {
	Feature   string `json:"feature"`
	Timestamp string `json:"timestamp"`
}

type Usage struct {
	CurrentUsage     int64      `json:"current_usage"`
	Period           string     `json:"period"`
	RecentActivities []Activity `json:"recent_activities"`
}

// StatusResponse is returned by calls that carry no payload.
type StatusResponse struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	PlanID   string `json:"plan_id,omitempty"`
}

type RegisterResponse struct {
	Status    Status `json:"status"`
	Message   string `json:"message"`
	AccountID string `json:"account_id,omitempty"`
}

type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"otp_code"`
}

type LoginRequest struct {
	Identifier string `json:"email_or_phone"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	Status      Status   `json:"status"`
	Message     string   `json:"message"`
	AccessToken string   `json:"access_token,omitempty"`
	Account     *Account `json:"account,omitempty"`
	// Email is set with StatusVerificationRequired.
	Email string `json:"email,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

type LogoutRequest struct{}

type PlansRequest struct{}

type PlansResponse struct {
	Plans []Plan `json:"plans"`
}

type SubscriptionRequest struct{}

type SubscriptionResponse struct {
	Status       Status        `json:"status"`
	Message      string        `json:"message"`
	Subscription *Subscription `json:"subscription,omitempty"`
}

type UpgradePlanRequest struct {
	PlanID string `json:"new_plan_id"`
}

type UsageRequest struct{}

type UsageResponse struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Usage   *Usage `json:"usage,omitempty"`
}

type UseFeatureRequest struct {
	Feature string `json:"feature"`
}
