package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/api"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/orchestrator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var statuses = map[orchestrator.Kind]api.Status{
	orchestrator.KindOK:                    api.StatusOK,
	orchestrator.KindDuplicateIdentity:     api.StatusDuplicateIdentity,
	orchestrator.KindAccountNotFound:       api.StatusAccountNotFound,
	orchestrator.KindInvalidCredentials:    api.StatusInvalidCredentials,
	orchestrator.KindVerificationRequired:  api.StatusVerificationRequired,
	orchestrator.KindInvalidOrExpiredToken: api.StatusInvalidOrExpiredToken,
	orchestrator.KindIdentityMismatch:      api.StatusIdentityMismatch,
	orchestrator.KindUnknownPlan:           api.StatusUnknownPlan,
	orchestrator.KindQuotaExceeded:         api.StatusQuotaExceeded,
}

func statusOf(k orchestrator.Kind) api.Status {
	if st, ok := statuses[k]; ok {
		return st
	}
	return api.Status(k)
}

func (s *GRPCServer) toStatusError(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrUnavailable) {
		return status.Error(codes.Unavailable, "service unavailable")
	}
	s.logger.Error(ctx, err.Error())
	return status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request", "email", req.Email)

	res, err := s.accounts.Register(ctx, orchestrator.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		PlanID:   req.PlanID,
	})
	if err != nil {
		return nil, s.toStatusError(ctx, err)
	}

	msg := res.Kind.Message()
	if res.Kind == orchestrator.KindOK {
		msg = "Registered. Check email for verification token."
	}
	return &api.RegisterResponse{Status: statusOf(res.Kind), Message: msg, AccountID: res.AccountID}, nil
}

func (s *GRPCServer) Verify(ctx context.Context, req *api.VerifyRequest) (*api.StatusResponse, error) {
	res, err := s.accounts.Verify(ctx, req.Email, req.Code)
	if err != nil {
		return nil, s.toStatusError(ctx, err)
	}

	msg := res.Kind.Message()
	if res.Kind == orchestrator.KindOK {
		msg = "Account verified."
	}
	return &api.StatusResponse{Status: statusOf(res.Kind), Message: msg}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	res, err := s.accounts.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		return nil, s.toStatusError(ctx, err)
	}

	resp := &api.LoginResponse{Status: statusOf(res.Kind), Message: res.Kind.Message(), Email: res.Email}
	if res.Kind != orchestrator.KindOK {
		return resp, nil
	}

	if res.AccessToken == "" {
		s.logger.Error(ctx, "login succeeded without a session token", "account_id", res.Account.ID)
		return nil, status.Error(codes.Internal, "internal error")
	}

	resp.Message = "Login successful."
	resp.AccessToken = res.AccessToken
	resp.Account = &api.Account{
		ID:    res.Account.ID,
		Name:  res.Account.Name,
		Email: res.Account.Email,
		Phone: res.Account.Phone,
	}
	return resp, nil
}

func (s *GRPCServer) ForgotPassword(ctx context.Context, req *api.ForgotPasswordRequest) (*api.StatusResponse, error) {
	res, err := s.accounts.ForgotPassword(ctx, req.Email, req.Phone)
	if err != nil {
		return nil, s.toStatusError(ctx, err)
	}

	msg := res.Kind.Message()
	if res.Kind == orchestrator.KindOK {
		msg = "Reset token sent to email."
	}
	return &api.StatusResponse{Status: statusOf(res.Kind), Message: msg}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *api.ResetPasswordRequest) (*api.StatusResponse, error) {
	res, err := s.accounts.ResetPassword(ctx, req.Email, req.Token, req.NewPassword)
	if err != nil {
		return nil, s.toStatusError(ctx, err)
	}

	msg := res.Kind.Message()
	if res.Kind == orchestrator.KindOK {
		msg = "Password updated."
	}
	return &api.StatusResponse{Status: statusOf(res.Kind), Message: msg}, nil
}

// Logout acknowledges; sessions are stateless and the client drops its token.
func (s *GRPCServer) Logout(ctx context.Context, req *api.LogoutRequest) (*api.StatusResponse, error) {
	s.logger.Info(ctx, "Logout")
	return &api.StatusResponse{Status: api.StatusOK, Message: "Logged out."}, nil
}

func (s *GRPCServer) Plans(ctx context.Context, req *api.PlansRequest) (*api.PlansResponse, error) {
	plans, err := s.accounts.Plans(ctx)
	if err != nil {
		return nil, s.toStatusError(ctx, err)
	}

	resp := &api.PlansResponse{Plans: make([]api.Plan, 0, len(plans))}
	for _, p := range plans {
		resp.Plans = append(resp.Plans, api.Plan{
			PlanID:     p.PlanID,
			Name:       p.Name,
			Price:      p.Price,
			Currency:   p.Currency,
			UsageLimit: p.UsageLimit,
			Features:   p.Features,
		})
	}
	return resp, nil
}

func (s *GRPCServer) Subscription(ctx context.Context, req *api.SubscriptionRequest) (*api.SubscriptionResponse, error) {
	accountID, err := accountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.accounts.Subscription(ctx, accountID)
	if err != nil {
		return nil, s.toStatusError(ctx, err)
	}
	return subscriptionResponse(res), nil
}

func (s *GRPCServer) UpgradePlan(ctx context.Context, req *api.UpgradePlanRequest) (*api.SubscriptionResponse, error) {
	accountID, err := accountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.accounts.UpgradePlan(ctx, accountID, req.PlanID)
	if err != nil {
		return nil, s.toStatusError(ctx, err)
	}

	resp := subscriptionResponse(res)
	if res.Kind == orchestrator.KindOK {
		resp.Message = "Upgraded to " + res.Subscription.PlanID + "."
	}
	return resp, nil
}

func (s *GRPCServer) Usage(ctx context.Context, req *api.UsageRequest) (*api.UsageResponse, error) {
	accountID, err := accountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.accounts.Usage(ctx, accountID)
	if err != nil {
		return nil, s.toStatusError(ctx, err)
	}

	resp := &api.UsageResponse{Status: statusOf(res.Kind), Message: res.Kind.Message()}
	if res.Usage != nil {
		resp.Usage = toAPIUsage(res.Usage)
	}
	return resp, nil
}

func (s *GRPCServer) UseFeature(ctx context.Context, req *api.UseFeatureRequest) (*api.StatusResponse, error) {
	accountID, err := accountIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.accounts.UseFeature(ctx, accountID, req.Feature)
	if err != nil {
		return nil, s.toStatusError(ctx, err)
	}

	msg := res.Kind.Message()
	if res.Kind == orchestrator.KindOK {
		msg = "Used " + req.Feature + "."
	}
	return &api.StatusResponse{Status: statusOf(res.Kind), Message: msg}, nil
}

func subscriptionResponse(res orchestrator.SubscriptionResult) *api.SubscriptionResponse {
	resp := &api.SubscriptionResponse{Status: statusOf(res.Kind), Message: res.Kind.Message()}
	if v := res.Subscription; v != nil {
		resp.Subscription = &api.Subscription{
			PlanID:     v.PlanID,
			PlanName:   v.PlanName,
			Price:      v.Price,
			Currency:   v.Currency,
			UsageLimit: v.UsageLimit,
			Features:   v.Features,
		}
	}
	return resp
}

func toAPIUsage(v *models.UsageView) *api.Usage {
	u := &api.Usage{
		CurrentUsage:     v.CurrentUsage,
		Period:           v.Period,
		RecentActivities: make([]api.Activity, 0, len(v.RecentActivities)),
	}
	for _, a := range v.RecentActivities {
		u.RecentActivities = append(u.RecentActivities, api.Activity{
			Feature:   a.Feature,
			Timestamp: a.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
	return u
}
