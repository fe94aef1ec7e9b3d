package api

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

var ErrInvalidRequest = errors.New("invalid request")

// Request is implemented by every message that must be checked before it
// reaches the orchestrator. Normalize trims fields in place.
type Request interface {
	Normalize() error
}

func checkLen(field, v string, min, max int) error {
	n := utf8.RuneCountInString(v)
	if n < min || n > max {
		return fmt.Errorf("%w: %s must be %d-%d characters", ErrInvalidRequest, field, min, max)
	}
	return nil
}

func trimmed(field string, v *string, min, max int) error {
	*v = strings.TrimSpace(*v)
	return checkLen(field, *v, min, max)
}

func email(v *string) error {
	*v = strings.TrimSpace(*v)
	addr, err := mail.ParseAddress(*v)
	if err != nil || addr.Address != *v {
		return fmt.Errorf("%w: email is not a valid address", ErrInvalidRequest)
	}
	return nil
}

func password(field, v string) error {
	return checkLen(field, v, 8, 128)
}

func (r *RegisterRequest) Normalize() error {
	if err := trimmed("name", &r.Name, 2, 100); err != nil {
		return err
	}
	if err := email(&r.Email); err != nil {
		return err
	}
	if err := trimmed("phone", &r.Phone, 6, 20); err != nil {
		return err
	}
	if err := password("password", r.Password); err != nil {
		return err
	}
	r.PlanID = strings.TrimSpace(r.PlanID)
	if r.PlanID == "" {
		return nil
	}
	return checkLen("plan_id", r.PlanID, 3, 20)
}

func (r *VerifyRequest) Normalize() error {
	if err := email(&r.Email); err != nil {
		return err
	}
	return trimmed("otp_code", &r.Code, 4, 64)
}

func (r *LoginRequest) Normalize() error {
	if err := trimmed("email_or_phone", &r.Identifier, 3, 100); err != nil {
		return err
	}
	return password("password", r.Password)
}

func (r *ForgotPasswordRequest) Normalize() error {
	if err := email(&r.Email); err != nil {
		return err
	}
	return trimmed("phone", &r.Phone, 6, 20)
}

func (r *ResetPasswordRequest) Normalize() error {
	if err := email(&r.Email); err != nil {
		return err
	}
	if err := trimmed("reset_token", &r.Token, 4, 64); err != nil {
		return err
	}
	return password("new_password", r.NewPassword)
}

func (r *UpgradePlanRequest) Normalize() error {
	return trimmed("new_plan_id", &r.PlanID, 3, 20)
}

func (r *UseFeatureRequest) Normalize() error {
	return trimmed("feature", &r.Feature, 3, 32)
}
