package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/api"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/orchestrator"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Accounts is the set of flows the transport exposes.
type Accounts interface {
	Register(ctx context.Context, in orchestrator.RegisterInput) (orchestrator.RegisterResult, error)
	Verify(ctx context.Context, email, code string) (orchestrator.VerifyResult, error)
	Login(ctx context.Context, identifier, password string) (orchestrator.LoginResult, error)
	ForgotPassword(ctx context.Context, email, phone string) (orchestrator.ForgotPasswordResult, error)
	ResetPassword(ctx context.Context, email, token, newPassword string) (orchestrator.ResetPasswordResult, error)
	UpgradePlan(ctx context.Context, accountID, planID string) (orchestrator.SubscriptionResult, error)
	UseFeature(ctx context.Context, accountID, feature string) (orchestrator.UseFeatureResult, error)
	Subscription(ctx context.Context, accountID string) (orchestrator.SubscriptionResult, error)
	Usage(ctx context.Context, accountID string) (orchestrator.UsageResult, error)
	Plans(ctx context.Context) ([]models.Plan, error)
}

// Observer receives per-call measurements. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveRPC(method, code string, d time.Duration)
	Throttled(method string)
}

type Config struct {
	Address string
	// SecretKey verifies the session tokens the orchestrator's issuer
	// signs; both must use the same key.
	SecretKey string
	// AuthRateLimit is the per-peer refill rate (requests per second) on
	// credential calls. Zero disables throttling.
	AuthRateLimit float64
	AuthRateBurst int
}

type GRPCServer struct {
	address   string
	accounts  Accounts
	logger    logging.Logger
	jwtSecret []byte
	limiter   *peerLimiter
	observer  Observer
}

func NewGRPCServer(cfg Config, l logging.Logger, accounts Accounts, observer Observer) *GRPCServer {
	s := &GRPCServer{
		address:   cfg.Address,
		accounts:  accounts,
		logger:    l.With("module", "grpc_server"),
		jwtSecret: []byte(cfg.SecretKey),
		observer:  observer,
	}
	if cfg.AuthRateLimit > 0 {
		s.limiter = newPeerLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	}
	return s
}

func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.metricsInterceptor,
		s.throttleInterceptor,
		s.accessTokenInterceptor,
		s.validationInterceptor,
	))

	srv.RegisterService(&serviceDesc, s)

	hs := health.NewServer()
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
