package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/accountkeeper/internal/api"
	"github.com/dmitrijs2005/accountkeeper/internal/client/client"
	"github.com/dmitrijs2005/accountkeeper/internal/client/config"
)

// ErrRejected marks a call the service answered with a non-ok status. The
// service message has already been printed.
var ErrRejected = errors.New("rejected")

// AccountClient is the service surface the CLI needs. *client.GRPCClient
// satisfies it.
type AccountClient interface {
	Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error)
	Verify(ctx context.Context, req *api.VerifyRequest) (*api.StatusResponse, error)
	Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error)
	ForgotPassword(ctx context.Context, req *api.ForgotPasswordRequest) (*api.StatusResponse, error)
	ResetPassword(ctx context.Context, req *api.ResetPasswordRequest) (*api.StatusResponse, error)
	Logout(ctx context.Context) error
	Plans(ctx context.Context) ([]api.Plan, error)
	Subscription(ctx context.Context) (*api.SubscriptionResponse, error)
	UpgradePlan(ctx context.Context, planID string) (*api.SubscriptionResponse, error)
	Usage(ctx context.Context) (*api.UsageResponse, error)
	UseFeature(ctx context.Context, feature string) (*api.StatusResponse, error)
	Close() error
}

type App struct {
	config  *config.Config
	client  AccountClient
	reader  *bufio.Reader
	out     io.Writer
	account *api.Account
	// pendingEmail remembers who still has to verify.
	pendingEmail string
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, ac AccountClient, in io.Reader, out io.Writer) *App {
	return &App{config: c, client: ac, reader: bufio.NewReader(in), out: out}
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.account != nil
}

func (a *App) getStatus() string {
	if a.account == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", a.account.Name)
}

// outcome prints the service message and turns a non-ok status into
// ErrRejected.
func (a *App) outcome(st api.Status, msg string) error {
	fmt.Fprintln(a.out, msg)
	if st != api.StatusOK {
		return fmt.Errorf("%w: %s", ErrRejected, st)
	}
	return nil
}

func isRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}
