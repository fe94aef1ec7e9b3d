package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/api"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient prepares a connection to endpointURL; nothing is dialed
// until the first call. Extra dial options are appended, e.g. a custom
// dialer in tests.
func NewGRPCClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

// LoggedIn reports whether a session token is held.
func (s *GRPCClient) LoggedIn() bool {
	return s.token() != ""
}

func (s *GRPCClient) call(ctx context.Context, method string, req, resp any) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.mapError(s.conn.Invoke(ctx, api.FullMethod(method), req, resp))
}

func (s *GRPCClient) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	resp := &api.RegisterResponse{}
	if err := s.call(ctx, api.MethodRegister, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *GRPCClient) Verify(ctx context.Context, req *api.VerifyRequest) (*api.StatusResponse, error) {
	resp := &api.StatusResponse{}
	if err := s.call(ctx, api.MethodVerify, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Login keeps the access token when the login succeeds.
func (s *GRPCClient) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	resp := &api.LoginResponse{}
	if err := s.call(ctx, api.MethodLogin, req, resp); err != nil {
		return nil, err
	}
	if resp.Status == api.StatusOK {
		s.setToken(resp.AccessToken)
	}
	return resp, nil
}

func (s *GRPCClient) ForgotPassword(ctx context.Context, req *api.ForgotPasswordRequest) (*api.StatusResponse, error) {
	resp := &api.StatusResponse{}
	if err := s.call(ctx, api.MethodForgotPassword, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *GRPCClient) ResetPassword(ctx context.Context, req *api.ResetPasswordRequest) (*api.StatusResponse, error) {
	resp := &api.StatusResponse{}
	if err := s.call(ctx, api.MethodResetPassword, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Logout drops the local session even when the server cannot be reached.
func (s *GRPCClient) Logout(ctx context.Context) error {
	defer s.setToken("")
	return s.call(ctx, api.MethodLogout, &api.LogoutRequest{}, &api.StatusResponse{})
}

func (s *GRPCClient) Plans(ctx context.Context) ([]api.Plan, error) {
	resp := &api.PlansResponse{}
	if err := s.call(ctx, api.MethodPlans, &api.PlansRequest{}, resp); err != nil {
		return nil, err
	}
	return resp.Plans, nil
}

func (s *GRPCClient) Subscription(ctx context.Context) (*api.SubscriptionResponse, error) {
	resp := &api.SubscriptionResponse{}
	if err := s.call(ctx, api.MethodSubscription, &api.SubscriptionRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *GRPCClient) UpgradePlan(ctx context.Context, planID string) (*api.SubscriptionResponse, error) {
	resp := &api.SubscriptionResponse{}
	if err := s.call(ctx, api.MethodUpgradePlan, &api.UpgradePlanRequest{PlanID: planID}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *GRPCClient) Usage(ctx context.Context) (*api.UsageResponse, error) {
	resp := &api.UsageResponse{}
	if err := s.call(ctx, api.MethodUsage, &api.UsageRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *GRPCClient) UseFeature(ctx context.Context, feature string) (*api.StatusResponse, error) {
	resp := &api.StatusResponse{}
	if err := s.call(ctx, api.MethodUseFeature, &api.UseFeatureRequest{Feature: feature}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, st.Message())
	case codes.ResourceExhausted:
		return ErrThrottled
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
