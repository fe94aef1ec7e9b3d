package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/api"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type ctxKey string

const accountIDKey ctxKey = "accountID"

// methods that act on the caller's own account
var accountScoped = map[string]bool{
	api.FullMethod(api.MethodSubscription): true,
	api.FullMethod(api.MethodUpgradePlan):  true,
	api.FullMethod(api.MethodUsage):        true,
	api.FullMethod(api.MethodUseFeature):   true,
}

// methods that take or mint credentials
var credentialMethods = map[string]bool{
	api.FullMethod(api.MethodRegister):       true,
	api.FullMethod(api.MethodVerify):         true,
	api.FullMethod(api.MethodLogin):          true,
	api.FullMethod(api.MethodForgotPassword): true,
	api.FullMethod(api.MethodResetPassword):  true,
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if s.observer == nil {
		return handler(ctx, req)
	}
	start := time.Now()
	resp, err := handler(ctx, req)
	s.observer.ObserveRPC(info.FullMethod, status.Code(err).String(), time.Since(start))
	return resp, err
}

func (s *GRPCServer) throttleInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if s.limiter == nil || !credentialMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	key := "unknown"
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		key = hostOf(p.Addr.String())
	}

	if !s.limiter.Allow(key) {
		if s.observer != nil {
			s.observer.Throttled(info.FullMethod)
		}
		s.logger.Warn(ctx, "request throttled", "method", info.FullMethod, "peer", key)
		return nil, status.Error(codes.ResourceExhausted, "too many requests")
	}

	return handler(ctx, req)
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if accountScoped[info.FullMethod] {

		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenHeaderName)
			if len(values) > 0 {
				accessToken = values[0]
			}
		}
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		accountID, err := auth.GetAccountIDFromToken(accessToken, s.jwtSecret)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				return nil, status.Error(codes.Unauthenticated, "token expired")
			}
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		ctx = context.WithValue(ctx, accountIDKey, accountID)

	}

	return handler(ctx, req)
}

func (s *GRPCServer) validationInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if r, ok := req.(api.Request); ok {
		if err := r.Normalize(); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}
	return handler(ctx, req)
}

func accountIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(accountIDKey).(string)
	if !ok || id == "" {
		return "", status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return id, nil
}
