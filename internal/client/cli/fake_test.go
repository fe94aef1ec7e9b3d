package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/accountkeeper/internal/api"
	"github.com/dmitrijs2005/accountkeeper/internal/client/config"
)

type fakeClient struct {
	calls []string

	registerReq *api.RegisterRequest
	verifyReq   *api.VerifyRequest
	loginReq    *api.LoginRequest
	resetReq    *api.ResetPasswordRequest
	upgradedTo  string
	used        []string

	loginStatus  api.Status
	subStatus    api.Status
	subErr       error
	plans        []api.Plan
	upgradeState api.Status
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		loginStatus:  api.StatusOK,
		subStatus:    api.StatusOK,
		upgradeState: api.StatusOK,
		plans: []api.Plan{
			{PlanID: "free", Name: "Free", Price: 0, Currency: "usd", UsageLimit: 3, Features: []string{"login"}},
			{PlanID: "pro", Name: "Pro", Price: 2900, Currency: "usd", UsageLimit: 100, Features: []string{"login", "image_advanced"}},
		},
	}
}

func (f *fakeClient) Register(_ context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	f.calls = append(f.calls, "register")
	f.registerReq = req
	return &api.RegisterResponse{Status: api.StatusOK, Message: "Registered.", AccountID: "acc-1"}, nil
}

func (f *fakeClient) Verify(_ context.Context, req *api.VerifyRequest) (*api.StatusResponse, error) {
	f.calls = append(f.calls, "verify")
	f.verifyReq = req
	return &api.StatusResponse{Status: api.StatusOK, Message: "Account verified."}, nil
}

func (f *fakeClient) Login(_ context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	f.calls = append(f.calls, "login")
	f.loginReq = req
	resp := &api.LoginResponse{Status: f.loginStatus, Message: string(f.loginStatus)}
	switch f.loginStatus {
	case api.StatusOK:
		resp.Account = &api.Account{ID: "acc-1", Name: "Ann"}
	case api.StatusVerificationRequired:
		resp.Email = "ann@x.io"
	}
	return resp, nil
}

func (f *fakeClient) ForgotPassword(_ context.Context, req *api.ForgotPasswordRequest) (*api.StatusResponse, error) {
	f.calls = append(f.calls, "forgot")
	return &api.StatusResponse{Status: api.StatusOK, Message: "Reset token sent to email."}, nil
}

func (f *fakeClient) ResetPassword(_ context.Context, req *api.ResetPasswordRequest) (*api.StatusResponse, error) {
	f.calls = append(f.calls, "reset")
	f.resetReq = req
	return &api.StatusResponse{Status: api.StatusOK, Message: "Password updated."}, nil
}

func (f *fakeClient) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	return nil
}

func (f *fakeClient) Plans(context.Context) ([]api.Plan, error) {
	f.calls = append(f.calls, "plans")
	return f.plans, nil
}

func (f *fakeClient) Subscription(context.Context) (*api.SubscriptionResponse, error) {
	f.calls = append(f.calls, "subscription")
	if f.subErr != nil {
		return nil, f.subErr
	}
	resp := &api.SubscriptionResponse{Status: f.subStatus, Message: string(f.subStatus)}
	if f.subStatus == api.StatusOK {
		resp.Subscription = &api.Subscription{PlanID: "free", PlanName: "Free", Currency: "usd", UsageLimit: 3}
	}
	return resp, nil
}

func (f *fakeClient) UpgradePlan(_ context.Context, planID string) (*api.SubscriptionResponse, error) {
	f.calls = append(f.calls, "upgrade")
	f.upgradedTo = planID
	return &api.SubscriptionResponse{Status: f.upgradeState, Message: "Upgraded to " + planID + "."}, nil
}

func (f *fakeClient) Usage(context.Context) (*api.UsageResponse, error) {
	f.calls = append(f.calls, "usage")
	return &api.UsageResponse{Status: api.StatusOK, Usage: &api.Usage{
		CurrentUsage:     2,
		Period:           "Today",
		RecentActivities: []api.Activity{{Feature: "image", Timestamp: "2026-10-15T10:00:00Z"}},
	}}, nil
}

func (f *fakeClient) UseFeature(_ context.Context, feature string) (*api.StatusResponse, error) {
	f.calls = append(f.calls, "use")
	f.used = append(f.used, feature)
	return &api.StatusResponse{Status: api.StatusOK, Message: "Used " + feature + "."}, nil
}

func (f *fakeClient) Close() error { return nil }

var _ AccountClient = (*fakeClient)(nil)

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func newTestApp(fc *fakeClient, lines ...string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	input := strings.Join(lines, "\n") + "\n"
	c := &config.Config{}
	c.LoadDefaults()
	return newApp(c, fc, strings.NewReader(input), out), out
}
