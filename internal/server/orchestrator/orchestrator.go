// Package orchestrator sequences the credential, token and entitlement
// ledgers into the account flows: register, verify, login, password
// recovery, plan upgrade and feature use.
//
// Every flow takes its inputs explicitly and returns a result carrying a
// Kind. The error return is reserved for infrastructure failures and always
// wraps common.ErrUnavailable.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/notify"
)

type Credentials interface {
	CreateAccount(ctx context.Context, name, email, phone, password string) (*models.Account, error)
	FindByIdentifier(ctx context.Context, identifier string) (*models.Account, error)
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	VerifyPassword(plaintext string, salt, digest []byte) bool
	MarkVerified(ctx context.Context, email string) (bool, error)
	ReplacePassword(ctx context.Context, email, newPassword string) (bool, error)
}

type Tokens interface {
	Issue(ctx context.Context, email string, purpose models.TokenPurpose) (*models.Token, error)
	Consume(ctx context.Context, email string, purpose models.TokenPurpose, value string) error
}

type Entitlements interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
	GetPlan(ctx context.Context, planID string) (*models.Plan, error)
	GetSubscription(ctx context.Context, accountID string) (*models.SubscriptionView, error)
	SetSubscription(ctx context.Context, accountID, planID string) (*models.SubscriptionView, error)
	RecordLogin(ctx context.Context, accountID string) error
	RecordActivity(ctx context.Context, accountID, feature string) error
	GetUsage(ctx context.Context, accountID string) (*models.UsageView, error)
}

// Recorder observes flow outcomes, e.g. for metrics.
type Recorder interface {
	Outcome(flow string, kind Kind)
}

// SessionIssuer mints the access token returned by a successful login.
type SessionIssuer interface {
	Issue(accountID string) (string, error)
}

type nopRecorder struct{}

func (nopRecorder) Outcome(string, Kind) {}

type Orchestrator struct {
	credentials  Credentials
	tokens       Tokens
	entitlements Entitlements
	notifier     notify.Notifier
	logger       logging.Logger
	recorder     Recorder
	sessions     SessionIssuer

	enforceFeatureQuota bool
}

type Option func(*Orchestrator)

func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithSessionIssuer makes Login mint an access token. The token is minted
// before the login is counted, so a failure costs no quota.
func WithSessionIssuer(s SessionIssuer) Option {
	return func(o *Orchestrator) { o.sessions = s }
}

// WithFeatureQuota makes UseFeature refuse once the daily limit is reached.
// Off by default: only Login is gated.
func WithFeatureQuota(enforce bool) Option {
	return func(o *Orchestrator) { o.enforceFeatureQuota = enforce }
}

func New(c Credentials, t Tokens, e Entitlements, n notify.Notifier, l logging.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		credentials:  c,
		tokens:       t,
		entitlements: e,
		notifier:     n,
		logger:       l.With("module", "orchestrator"),
		recorder:     nopRecorder{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register creates an unverified account, issues and sends its verification
// token and subscribes it to the requested plan. The plan is checked before
// anything is written.
func (o *Orchestrator) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	const flow = "register"

	planID := in.PlanID
	if planID == "" {
		planID = common.DefaultPlanID
	}

	if _, err := o.entitlements.GetPlan(ctx, planID); err != nil {
		if errors.Is(err, common.ErrUnknownPlan) {
			return RegisterResult{Kind: o.done(ctx, flow, KindUnknownPlan, "plan_id", planID)}, nil
		}
		return RegisterResult{}, o.fail(ctx, flow, "load plan", err)
	}

	account, err := o.credentials.CreateAccount(ctx, in.Name, in.Email, in.Phone, in.Password)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateIdentity) {
			return RegisterResult{Kind: o.done(ctx, flow, KindDuplicateIdentity, "email", in.Email)}, nil
		}
		return RegisterResult{}, o.fail(ctx, flow, "create account", err)
	}

	if in.Email != "" {
		token, err := o.tokens.Issue(ctx, in.Email, models.PurposeVerification)
		if err != nil {
			return RegisterResult{}, o.fail(ctx, flow, "issue verification token", err)
		}
		o.send(ctx, in.Email, "Verify your account", "Your verification token is: "+token.Value)
	} else {
		o.logger.Warn(ctx, "account has no email, verification token not issued", "account_id", account.ID)
	}

	if _, err := o.entitlements.SetSubscription(ctx, account.ID, planID); err != nil {
		return RegisterResult{}, o.fail(ctx, flow, "set subscription", err)
	}

	return RegisterResult{Kind: o.done(ctx, flow, KindOK, "account_id", account.ID), AccountID: account.ID}, nil
}

// Verify spends the verification code and marks the account verified.
func (o *Orchestrator) Verify(ctx context.Context, email, code string) (VerifyResult, error) {
	const flow = "verify"

	if err := o.tokens.Consume(ctx, email, models.PurposeVerification, code); err != nil {
		if isTokenRejection(err) {
			return VerifyResult{Kind: o.done(ctx, flow, KindInvalidOrExpiredToken, "email", email)}, nil
		}
		return VerifyResult{}, o.fail(ctx, flow, "consume token", err)
	}

	ok, err := o.credentials.MarkVerified(ctx, email)
	if err != nil {
		return VerifyResult{}, o.fail(ctx, flow, "mark verified", err)
	}
	if !ok {
		o.logger.Warn(ctx, "token consumed for email without account", "email", email)
	}

	return VerifyResult{Kind: o.done(ctx, flow, KindOK, "email", email)}, nil
}

// Login checks credentials, verification and today's quota, mints the
// session token when an issuer is set, and counts the login against the
// quota when it succeeds.
func (o *Orchestrator) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	const flow = "login"

	account, err := o.credentials.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return LoginResult{Kind: o.done(ctx, flow, KindAccountNotFound, "identifier", identifier)}, nil
		}
		return LoginResult{}, o.fail(ctx, flow, "find account", err)
	}

	if !o.credentials.VerifyPassword(password, account.Salt, account.PasswordHash) {
		return LoginResult{Kind: o.done(ctx, flow, KindInvalidCredentials, "account_id", account.ID)}, nil
	}

	if !account.Verified {
		return LoginResult{
			Kind:  o.done(ctx, flow, KindVerificationRequired, "account_id", account.ID),
			Email: account.Email,
		}, nil
	}

	exceeded, err := o.quotaExceeded(ctx, account.ID)
	if err != nil {
		return LoginResult{}, o.fail(ctx, flow, "check quota", err)
	}
	if exceeded {
		return LoginResult{Kind: o.done(ctx, flow, KindQuotaExceeded, "account_id", account.ID)}, nil
	}

	var accessToken string
	if o.sessions != nil {
		if accessToken, err = o.sessions.Issue(account.ID); err != nil {
			return LoginResult{}, o.fail(ctx, flow, "issue session", err)
		}
	}

	if err := o.entitlements.RecordLogin(ctx, account.ID); err != nil {
		return LoginResult{}, o.fail(ctx, flow, "record login", err)
	}

	public := account.Public()
	return LoginResult{
		Kind:        o.done(ctx, flow, KindOK, "account_id", account.ID),
		Account:     &public,
		AccessToken: accessToken,
	}, nil
}

// ForgotPassword issues a reset token when email and phone both belong to
// the same account.
func (o *Orchestrator) ForgotPassword(ctx context.Context, email, phone string) (ForgotPasswordResult, error) {
	const flow = "forgot_password"

	account, err := o.credentials.FindByIdentifier(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		account, err = o.credentials.FindByIdentifier(ctx, phone)
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ForgotPasswordResult{Kind: o.done(ctx, flow, KindAccountNotFound, "email", email)}, nil
		}
		return ForgotPasswordResult{}, o.fail(ctx, flow, "find account", err)
	}

	if account.Email != email || account.Phone != phone {
		return ForgotPasswordResult{Kind: o.done(ctx, flow, KindIdentityMismatch, "account_id", account.ID)}, nil
	}

	token, err := o.tokens.Issue(ctx, email, models.PurposeReset)
	if err != nil {
		return ForgotPasswordResult{}, o.fail(ctx, flow, "issue reset token", err)
	}
	o.send(ctx, email, "Reset password", "Your reset token is: "+token.Value)

	return ForgotPasswordResult{Kind: o.done(ctx, flow, KindOK, "account_id", account.ID)}, nil
}

// ResetPassword spends the reset token and replaces the password.
func (o *Orchestrator) ResetPassword(ctx context.Context, email, token, newPassword string) (ResetPasswordResult, error) {
	const flow = "reset_password"

	if err := o.tokens.Consume(ctx, email, models.PurposeReset, token); err != nil {
		if isTokenRejection(err) {
			return ResetPasswordResult{Kind: o.done(ctx, flow, KindInvalidOrExpiredToken, "email", email)}, nil
		}
		return ResetPasswordResult{}, o.fail(ctx, flow, "consume token", err)
	}

	ok, err := o.credentials.ReplacePassword(ctx, email, newPassword)
	if err != nil {
		return ResetPasswordResult{}, o.fail(ctx, flow, "replace password", err)
	}
	if !ok {
		o.logger.Warn(ctx, "reset token consumed for email without account", "email", email)
	}

	return ResetPasswordResult{Kind: o.done(ctx, flow, KindOK, "email", email)}, nil
}

// UpgradePlan moves an existing account to planID. No payment is involved.
func (o *Orchestrator) UpgradePlan(ctx context.Context, accountID, planID string) (SubscriptionResult, error) {
	const flow = "upgrade_plan"

	if kind, err := o.requireAccount(ctx, flow, accountID); err != nil || kind != KindOK {
		return SubscriptionResult{Kind: kind}, err
	}

	view, err := o.entitlements.SetSubscription(ctx, accountID, planID)
	if err != nil {
		if errors.Is(err, common.ErrUnknownPlan) {
			return SubscriptionResult{Kind: o.done(ctx, flow, KindUnknownPlan, "plan_id", planID)}, nil
		}
		return SubscriptionResult{}, o.fail(ctx, flow, "set subscription", err)
	}

	return SubscriptionResult{Kind: o.done(ctx, flow, KindOK, "account_id", accountID, "plan_id", view.PlanID), Subscription: view}, nil
}

// UseFeature records one use of feature for today. The daily limit is only
// checked when feature quota enforcement is on.
func (o *Orchestrator) UseFeature(ctx context.Context, accountID, feature string) (UseFeatureResult, error) {
	const flow = "use_feature"

	if kind, err := o.requireAccount(ctx, flow, accountID); err != nil || kind != KindOK {
		return UseFeatureResult{Kind: kind}, err
	}

	if o.enforceFeatureQuota {
		exceeded, err := o.quotaExceeded(ctx, accountID)
		if err != nil {
			return UseFeatureResult{}, o.fail(ctx, flow, "check quota", err)
		}
		if exceeded {
			return UseFeatureResult{Kind: o.done(ctx, flow, KindQuotaExceeded, "account_id", accountID)}, nil
		}
	}

	if err := o.entitlements.RecordActivity(ctx, accountID, feature); err != nil {
		return UseFeatureResult{}, o.fail(ctx, flow, "record activity", err)
	}

	return UseFeatureResult{Kind: o.done(ctx, flow, KindOK, "account_id", accountID, "feature", feature)}, nil
}

// Subscription reports the account's current plan.
func (o *Orchestrator) Subscription(ctx context.Context, accountID string) (SubscriptionResult, error) {
	const flow = "subscription"

	if kind, err := o.requireAccount(ctx, flow, accountID); err != nil || kind != KindOK {
		return SubscriptionResult{Kind: kind}, err
	}

	view, err := o.entitlements.GetSubscription(ctx, accountID)
	if err != nil {
		return SubscriptionResult{}, o.fail(ctx, flow, "get subscription", err)
	}
	return SubscriptionResult{Kind: o.done(ctx, flow, KindOK, "account_id", accountID), Subscription: view}, nil
}

// Usage reports today's counters.
func (o *Orchestrator) Usage(ctx context.Context, accountID string) (UsageResult, error) {
	const flow = "usage"

	if kind, err := o.requireAccount(ctx, flow, accountID); err != nil || kind != KindOK {
		return UsageResult{Kind: kind}, err
	}

	view, err := o.entitlements.GetUsage(ctx, accountID)
	if err != nil {
		return UsageResult{}, o.fail(ctx, flow, "get usage", err)
	}
	return UsageResult{Kind: o.done(ctx, flow, KindOK, "account_id", accountID), Usage: view}, nil
}

// Plans lists the catalog by ascending price.
func (o *Orchestrator) Plans(ctx context.Context) ([]models.Plan, error) {
	plans, err := o.entitlements.ListPlans(ctx)
	if err != nil {
		return nil, o.fail(ctx, "plans", "list plans", err)
	}
	return plans, nil
}

func (o *Orchestrator) requireAccount(ctx context.Context, flow, accountID string) (Kind, error) {
	if _, err := o.credentials.GetAccount(ctx, accountID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return o.done(ctx, flow, KindAccountNotFound, "account_id", accountID), nil
		}
		return "", o.fail(ctx, flow, "get account", err)
	}
	return KindOK, nil
}

func (o *Orchestrator) quotaExceeded(ctx context.Context, accountID string) (bool, error) {
	sub, err := o.entitlements.GetSubscription(ctx, accountID)
	if err != nil {
		return false, err
	}
	usage, err := o.entitlements.GetUsage(ctx, accountID)
	if err != nil {
		return false, err
	}
	return usage.CurrentUsage >= sub.UsageLimit, nil
}

// send dispatches a notification. Failure is logged and swallowed: the
// token already issued stays valid.
func (o *Orchestrator) send(ctx context.Context, to, subject, body string) {
	if err := o.notifier.Send(ctx, to, subject, body); err != nil {
		o.logger.Warn(ctx, "notification failed", "to", to, "subject", subject, "error", err)
	}
}

func (o *Orchestrator) done(ctx context.Context, flow string, kind Kind, args ...any) Kind {
	o.recorder.Outcome(flow, kind)
	o.logger.Info(ctx, flow, append([]any{"outcome", string(kind)}, args...)...)
	return kind
}

func (o *Orchestrator) fail(ctx context.Context, flow, step string, err error) error {
	o.recorder.Outcome(flow, "unavailable")
	o.logger.Error(ctx, flow+" failed", "step", step, "error", err)
	return fmt.Errorf("%w: %s: %w", common.ErrUnavailable, step, err)
}

func isTokenRejection(err error) bool {
	return errors.Is(err, common.ErrTokenNotFound) || errors.Is(err, common.ErrTokenExpired)
}
