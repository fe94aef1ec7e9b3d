package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/accountkeeper/internal/api"
	"github.com/dmitrijs2005/accountkeeper/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterThenVerify(t *testing.T) {
	stubPassword(t, "password1")
	fc := newFakeClient()
	app, out := newTestApp(fc, "Ann", "ann@x.io", "5551234", "", "code-1234")
	ctx := context.Background()

	require.NoError(t, app.Register(ctx))
	assert.Equal(t, "ann@x.io", app.pendingEmail)
	assert.Equal(t, "password1", fc.registerReq.Password)
	assert.Empty(t, fc.registerReq.PlanID)

	// no email prompt: the pending one is used
	require.NoError(t, app.Verify(ctx))
	assert.Equal(t, &api.VerifyRequest{Email: "ann@x.io", Code: "code-1234"}, fc.verifyReq)
	assert.Empty(t, app.pendingEmail)
	assert.Contains(t, out.String(), "Account verified.")
}

func TestLogin(t *testing.T) {
	stubPassword(t, "password1")

	t.Run("ok", func(t *testing.T) {
		fc := newFakeClient()
		app, out := newTestApp(fc, "ann@x.io")
		require.NoError(t, app.Login(context.Background()))
		assert.True(t, app.isLoggedIn())
		assert.Equal(t, "(Ann)", app.getStatus())
		assert.Contains(t, out.String(), "Welcome, Ann!")
	})

	t.Run("verification required", func(t *testing.T) {
		fc := newFakeClient()
		fc.loginStatus = api.StatusVerificationRequired
		app, _ := newTestApp(fc, "5551234")
		err := app.Login(context.Background())
		assert.ErrorIs(t, err, ErrRejected)
		assert.False(t, app.isLoggedIn())
		assert.Equal(t, "ann@x.io", app.pendingEmail)
	})
}

func TestForgotThenReset(t *testing.T) {
	stubPassword(t, "password2")
	fc := newFakeClient()
	app, _ := newTestApp(fc, "ann@x.io", "5551234", "tok-1234")
	ctx := context.Background()

	require.NoError(t, app.ForgotPassword(ctx))
	require.NoError(t, app.ResetPassword(ctx))
	assert.Equal(t, &api.ResetPasswordRequest{Email: "ann@x.io", Token: "tok-1234", NewPassword: "password2"}, fc.resetReq)
}

func TestAccountCommands(t *testing.T) {
	fc := newFakeClient()
	app, out := newTestApp(fc, "pro", "image")
	ctx := context.Background()

	require.NoError(t, app.Plans(ctx))
	assert.Contains(t, out.String(), "29.00 USD")

	require.NoError(t, app.Subscription(ctx))
	assert.Contains(t, out.String(), "Plan: Free (free)")

	require.NoError(t, app.Upgrade(ctx))
	assert.Equal(t, "pro", fc.upgradedTo)

	require.NoError(t, app.UseFeature(ctx))
	assert.Equal(t, []string{"image"}, fc.used)

	require.NoError(t, app.Usage(ctx))
	assert.Contains(t, out.String(), "Today: 2")
}

func TestLogoutClearsSession(t *testing.T) {
	fc := newFakeClient()
	app, _ := newTestApp(fc)
	app.account = &api.Account{ID: "acc-1", Name: "Ann"}

	require.NoError(t, app.Logout(context.Background()))
	assert.False(t, app.isLoggedIn())
}

func TestSubscriptionPropagatesTransportErrors(t *testing.T) {
	fc := newFakeClient()
	fc.subErr = client.ErrUnauthorized
	app, _ := newTestApp(fc)

	err := app.Subscription(context.Background())
	assert.True(t, errors.Is(err, client.ErrUnauthorized))
	assert.False(t, isRejected(err))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0.00 USD", formatPrice(0, "usd"))
	assert.Equal(t, "9.00 USD", formatPrice(900, "usd"))
	assert.Equal(t, "29.05 EUR", formatPrice(2905, "eur"))
}
