package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/api"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

// Register prompts for the account details and creates the account. On
// success the email is remembered for the following verify.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Enter phone", a.out)
	if err != nil {
		return err
	}
	password, err := getNewPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	plan, err := getSimpleText(a.reader, "Enter plan id (empty for free)", a.out)
	if err != nil {
		return err
	}

	resp, err := a.client.Register(ctx, &api.RegisterRequest{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Password: string(password),
		PlanID:   plan,
	})
	if err != nil {
		return err
	}

	if resp.Status == api.StatusOK {
		a.pendingEmail = email
	}
	return a.outcome(resp.Status, resp.Message)
}

// Verify asks for the emailed code. The email prompt is skipped right after
// a register or a login that asked for verification.
func (a *App) Verify(ctx context.Context) error {
	email := a.pendingEmail
	if email == "" {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}
	code, err := getSimpleText(a.reader, "Enter verification code", a.out)
	if err != nil {
		return err
	}

	resp, err := a.client.Verify(ctx, &api.VerifyRequest{Email: email, Code: code})
	if err != nil {
		return err
	}

	if resp.Status == api.StatusOK {
		a.pendingEmail = ""
	}
	return a.outcome(resp.Status, resp.Message)
}

// Login prompts for an email or phone and a password.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter email or phone", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.client.Login(ctx, &api.LoginRequest{Identifier: identifier, Password: string(password)})
	if err != nil {
		return err
	}

	switch resp.Status {
	case api.StatusOK:
		a.account = resp.Account
		a.pendingEmail = ""
		fmt.Fprintf(a.out, "Welcome, %s!\n", resp.Account.Name)
		return nil
	case api.StatusVerificationRequired:
		a.pendingEmail = resp.Email
	}
	return a.outcome(resp.Status, resp.Message)
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Enter phone", a.out)
	if err != nil {
		return err
	}

	resp, err := a.client.ForgotPassword(ctx, &api.ForgotPasswordRequest{Email: email, Phone: phone})
	if err != nil {
		return err
	}

	if resp.Status == api.StatusOK {
		a.pendingEmail = email
	}
	return a.outcome(resp.Status, resp.Message)
}

func (a *App) ResetPassword(ctx context.Context) error {
	email := a.pendingEmail
	if email == "" {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}
	token, err := getSimpleText(a.reader, "Enter reset token", a.out)
	if err != nil {
		return err
	}
	password, err := getNewPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.client.ResetPassword(ctx, &api.ResetPasswordRequest{Email: email, Token: token, NewPassword: string(password)})
	if err != nil {
		return err
	}

	if resp.Status == api.StatusOK {
		a.pendingEmail = ""
	}
	return a.outcome(resp.Status, resp.Message)
}

// Logout forgets the session locally whatever the server says.
func (a *App) Logout(ctx context.Context) error {
	a.account = nil
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
