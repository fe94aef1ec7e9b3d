package grpc

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/api"
	"google.golang.org/grpc"
)

// AccountService is the server side of accountkeeper.AccountService.
type AccountService interface {
	Register(context.Context, *api.RegisterRequest) (*api.RegisterResponse, error)
	Verify(context.Context, *api.VerifyRequest) (*api.StatusResponse, error)
	Login(context.Context, *api.LoginRequest) (*api.LoginResponse, error)
	ForgotPassword(context.Context, *api.ForgotPasswordRequest) (*api.StatusResponse, error)
	ResetPassword(context.Context, *api.ResetPasswordRequest) (*api.StatusResponse, error)
	Logout(context.Context, *api.LogoutRequest) (*api.StatusResponse, error)
	Plans(context.Context, *api.PlansRequest) (*api.PlansResponse, error)
	Subscription(context.Context, *api.SubscriptionRequest) (*api.SubscriptionResponse, error)
	UpgradePlan(context.Context, *api.UpgradePlanRequest) (*api.SubscriptionResponse, error)
	Usage(context.Context, *api.UsageRequest) (*api.UsageResponse, error)
	UseFeature(context.Context, *api.UseFeatureRequest) (*api.StatusResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: api.ServiceName,
	HandlerType: (*AccountService)(nil),
	Methods: []grpc.MethodDesc{
		unary(api.MethodRegister, AccountService.Register),
		unary(api.MethodVerify, AccountService.Verify),
		unary(api.MethodLogin, AccountService.Login),
		unary(api.MethodForgotPassword, AccountService.ForgotPassword),
		unary(api.MethodResetPassword, AccountService.ResetPassword),
		unary(api.MethodLogout, AccountService.Logout),
		unary(api.MethodPlans, AccountService.Plans),
		unary(api.MethodSubscription, AccountService.Subscription),
		unary(api.MethodUpgradePlan, AccountService.UpgradePlan),
		unary(api.MethodUsage, AccountService.Usage),
		unary(api.MethodUseFeature, AccountService.UseFeature),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "accountkeeper.json",
}

// unary adapts a typed method to the generic gRPC handler signature.
func unary[Req, Resp any](name string, call func(AccountService, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			svc := srv.(AccountService)
			if interceptor == nil {
				return call(svc, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: api.FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(svc, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var _ AccountService = (*GRPCServer)(nil)
