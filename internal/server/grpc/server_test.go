package grpc

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/api"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/orchestrator"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const testSecret = "test-secret"

type mailbox struct {
	mu   sync.Mutex
	last map[string]string
}

func (m *mailbox) Send(_ context.Context, to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, tok, _ := strings.Cut(body, ": ")
	m.last[to] = tok
	return nil
}

func (m *mailbox) token(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last[to]
}

type recordingObserver struct {
	mu        sync.Mutex
	codes     []string
	throttled int
}

func (o *recordingObserver) ObserveRPC(_, code string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.codes = append(o.codes, code)
}

func (o *recordingObserver) Throttled(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.throttled++
}

type harness struct {
	conn     *grpc.ClientConn
	mail     *mailbox
	observer *recordingObserver
}

func startServer(t *testing.T, cfg Config, accounts Accounts, mail *mailbox) *harness {
	t.Helper()

	obs := &recordingObserver{}
	cfg.SecretKey = testSecret
	s := NewGRPCServer(cfg, logging.NewNopLogger(), accounts, obs)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Serve(ctx, lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})
	return &harness{conn: conn, mail: mail, observer: obs}
}

func newOrchestrator(mail *mailbox) *orchestrator.Orchestrator {
	rm := repomanager.NewInMemoryRepositoryManager()
	clock := timex.SystemClock{}
	ents := services.NewEntitlementService(rm.Plans(), rm.Subscriptions(), rm.Usage(), clock)
	if _, err := ents.SeedPlans(context.Background()); err != nil {
		panic(err)
	}
	return orchestrator.New(
		services.NewCredentialService(rm.Accounts(), clock),
		services.NewTokenService(rm, clock, 15*time.Minute),
		ents,
		mail,
		logging.NewNopLogger(),
		orchestrator.WithSessionIssuer(auth.NewIssuer(testSecret, time.Hour)),
	)
}

func startWithMemory(t *testing.T, cfg Config) *harness {
	t.Helper()
	mail := &mailbox{last: map[string]string{}}
	return startServer(t, cfg, newOrchestrator(mail), mail)
}

func invoke[Resp any](t *testing.T, ctx context.Context, h *harness, method string, req any) (*Resp, error) {
	t.Helper()
	resp := new(Resp)
	err := h.conn.Invoke(ctx, api.FullMethod(method), req, resp)
	return resp, err
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, token)
}

func TestEndToEnd(t *testing.T) {
	h := startWithMemory(t, Config{})
	ctx := context.Background()

	reg, err := invoke[api.RegisterResponse](t, ctx, h, api.MethodRegister, &api.RegisterRequest{
		Name: "Ann", Email: "ann@x.io", Phone: "5551234", Password: "password1",
	})
	require.NoError(t, err)
	require.Equal(t, api.StatusOK, reg.Status)
	require.NotEmpty(t, reg.AccountID)

	login, err := invoke[api.LoginResponse](t, ctx, h, api.MethodLogin, &api.LoginRequest{Identifier: "ann@x.io", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, api.StatusVerificationRequired, login.Status)
	assert.Equal(t, "ann@x.io", login.Email)
	assert.Empty(t, login.AccessToken)

	ver, err := invoke[api.StatusResponse](t, ctx, h, api.MethodVerify, &api.VerifyRequest{Email: "ann@x.io", Code: h.mail.token("ann@x.io")})
	require.NoError(t, err)
	require.Equal(t, api.StatusOK, ver.Status)

	login, err = invoke[api.LoginResponse](t, ctx, h, api.MethodLogin, &api.LoginRequest{Identifier: " 5551234 ", Password: "password1"})
	require.NoError(t, err)
	require.Equal(t, api.StatusOK, login.Status)
	require.NotEmpty(t, login.AccessToken)
	assert.Equal(t, reg.AccountID, login.Account.ID)

	id, err := auth.GetAccountIDFromToken(login.AccessToken, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, reg.AccountID, id)

	authed := withToken(ctx, login.AccessToken)

	sub, err := invoke[api.SubscriptionResponse](t, authed, h, api.MethodSubscription, &api.SubscriptionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "free", sub.Subscription.PlanID)

	up, err := invoke[api.SubscriptionResponse](t, authed, h, api.MethodUpgradePlan, &api.UpgradePlanRequest{PlanID: "pro"})
	require.NoError(t, err)
	assert.Equal(t, api.StatusOK, up.Status)
	assert.Equal(t, int64(100), up.Subscription.UsageLimit)

	use, err := invoke[api.StatusResponse](t, authed, h, api.MethodUseFeature, &api.UseFeatureRequest{Feature: "image_advanced"})
	require.NoError(t, err)
	assert.Equal(t, api.StatusOK, use.Status)

	usage, err := invoke[api.UsageResponse](t, authed, h, api.MethodUsage, &api.UsageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), usage.Usage.CurrentUsage)
	assert.Equal(t, "Today", usage.Usage.Period)
	require.Len(t, usage.Usage.RecentActivities, 1)
	assert.Equal(t, "image_advanced", usage.Usage.RecentActivities[0].Feature)

	out, err := invoke[api.StatusResponse](t, authed, h, api.MethodLogout, &api.LogoutRequest{})
	require.NoError(t, err)
	assert.Equal(t, api.StatusOK, out.Status)
}

func TestPlans(t *testing.T) {
	h := startWithMemory(t, Config{})

	resp, err := invoke[api.PlansResponse](t, context.Background(), h, api.MethodPlans, &api.PlansRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Plans, 3)
	assert.Equal(t, "free", resp.Plans[0].PlanID)
	assert.Equal(t, int64(900), resp.Plans[1].Price)
}

func TestPasswordReset(t *testing.T) {
	h := startWithMemory(t, Config{})
	ctx := context.Background()

	_, err := invoke[api.RegisterResponse](t, ctx, h, api.MethodRegister, &api.RegisterRequest{
		Name: "Ann", Email: "ann@x.io", Phone: "5551234", Password: "password1",
	})
	require.NoError(t, err)

	mismatch, err := invoke[api.StatusResponse](t, ctx, h, api.MethodForgotPassword, &api.ForgotPasswordRequest{Email: "ann@x.io", Phone: "5550000"})
	require.NoError(t, err)
	assert.Equal(t, api.StatusIdentityMismatch, mismatch.Status)

	forgot, err := invoke[api.StatusResponse](t, ctx, h, api.MethodForgotPassword, &api.ForgotPasswordRequest{Email: "ann@x.io", Phone: "5551234"})
	require.NoError(t, err)
	require.Equal(t, api.StatusOK, forgot.Status)

	reset, err := invoke[api.StatusResponse](t, ctx, h, api.MethodResetPassword, &api.ResetPasswordRequest{
		Email: "ann@x.io", Token: h.mail.token("ann@x.io"), NewPassword: "password2",
	})
	require.NoError(t, err)
	assert.Equal(t, api.StatusOK, reset.Status)

	login, err := invoke[api.LoginResponse](t, ctx, h, api.MethodLogin, &api.LoginRequest{Identifier: "ann@x.io", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, api.StatusInvalidCredentials, login.Status)
}

func TestAccountScopedRequiresToken(t *testing.T) {
	h := startWithMemory(t, Config{})
	ctx := context.Background()

	_, err := invoke[api.UsageResponse](t, ctx, h, api.MethodUsage, &api.UsageRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = invoke[api.UsageResponse](t, withToken(ctx, "garbage"), h, api.MethodUsage, &api.UsageRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	expired, err := auth.GenerateToken("acc-1", []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	_, err = invoke[api.UsageResponse](t, withToken(ctx, expired), h, api.MethodUsage, &api.UsageRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestUnknownAccountInToken(t *testing.T) {
	h := startWithMemory(t, Config{})

	token, err := auth.GenerateToken("0b7e6c1e-0000-0000-0000-000000000000", []byte(testSecret), time.Hour)
	require.NoError(t, err)

	resp, err := invoke[api.SubscriptionResponse](t, withToken(context.Background(), token), h, api.MethodSubscription, &api.SubscriptionRequest{})
	require.NoError(t, err)
	assert.Equal(t, api.StatusAccountNotFound, resp.Status)
	assert.Nil(t, resp.Subscription)
}

func TestValidation(t *testing.T) {
	h := startWithMemory(t, Config{})

	_, err := invoke[api.RegisterResponse](t, context.Background(), h, api.MethodRegister, &api.RegisterRequest{
		Name: "Ann", Email: "nope", Phone: "5551234", Password: "password1",
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestThrottle(t *testing.T) {
	h := startWithMemory(t, Config{AuthRateLimit: 0.001, AuthRateBurst: 2})
	ctx := context.Background()
	req := &api.LoginRequest{Identifier: "nobody@x.io", Password: "password1"}

	for i := 0; i < 2; i++ {
		resp, err := invoke[api.LoginResponse](t, ctx, h, api.MethodLogin, req)
		require.NoError(t, err)
		assert.Equal(t, api.StatusAccountNotFound, resp.Status)
	}

	_, err := invoke[api.LoginResponse](t, ctx, h, api.MethodLogin, req)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	// non-credential calls are not throttled
	_, err = invoke[api.PlansResponse](t, ctx, h, api.MethodPlans, &api.PlansRequest{})
	assert.NoError(t, err)

	h.observer.mu.Lock()
	defer h.observer.mu.Unlock()
	assert.Equal(t, 1, h.observer.throttled)
	assert.Contains(t, h.observer.codes, "ResourceExhausted")
}

type unavailableAccounts struct {
	Accounts
}

func (unavailableAccounts) Plans(context.Context) ([]models.Plan, error) {
	return nil, errors.Join(common.ErrUnavailable, errors.New("db down"))
}

func (unavailableAccounts) Login(context.Context, string, string) (orchestrator.LoginResult, error) {
	return orchestrator.LoginResult{}, errors.New("unexpected")
}

func TestInfrastructureErrors(t *testing.T) {
	mail := &mailbox{last: map[string]string{}}
	h := startServer(t, Config{}, unavailableAccounts{}, mail)
	ctx := context.Background()

	_, err := invoke[api.PlansResponse](t, ctx, h, api.MethodPlans, &api.PlansRequest{})
	assert.Equal(t, codes.Unavailable, status.Code(err))

	_, err = invoke[api.LoginResponse](t, ctx, h, api.MethodLogin, &api.LoginRequest{Identifier: "ann@x.io", Password: "password1"})
	assert.Equal(t, codes.Internal, status.Code(err))
}

type tokenlessAccounts struct {
	Accounts
}

func (tokenlessAccounts) Login(context.Context, string, string) (orchestrator.LoginResult, error) {
	return orchestrator.LoginResult{
		Kind:    orchestrator.KindOK,
		Account: &models.PublicAccount{ID: "acc-1", Name: "Ann"},
	}, nil
}

func TestLogin_WithoutSessionTokenIsInternal(t *testing.T) {
	mail := &mailbox{last: map[string]string{}}
	h := startServer(t, Config{}, tokenlessAccounts{}, mail)

	_, err := invoke[api.LoginResponse](t, context.Background(), h, api.MethodLogin, &api.LoginRequest{Identifier: "ann@x.io", Password: "password1"})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestHealth(t *testing.T) {
	h := startWithMemory(t, Config{})

	resp, err := healthpb.NewHealthClient(h.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: api.ServiceName},
		grpc.CallContentSubtype("proto"))
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestStatusOfCoversEveryKind(t *testing.T) {
	kinds := []orchestrator.Kind{
		orchestrator.KindOK,
		orchestrator.KindDuplicateIdentity,
		orchestrator.KindAccountNotFound,
		orchestrator.KindInvalidCredentials,
		orchestrator.KindVerificationRequired,
		orchestrator.KindInvalidOrExpiredToken,
		orchestrator.KindIdentityMismatch,
		orchestrator.KindUnknownPlan,
		orchestrator.KindQuotaExceeded,
	}
	for _, k := range kinds {
		assert.Equal(t, string(k), string(statusOf(k)))
	}
}

func TestPeerLimiter(t *testing.T) {
	l := newPeerLimiter(1, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"))
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "10.0.0.1", hostOf("10.0.0.1:5555"))
	assert.Equal(t, "bufconn", hostOf("bufconn"))
}
