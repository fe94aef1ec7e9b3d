package api

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestFullMethod(t *testing.T) {
	assert.Equal(t, "/accountkeeper.AccountService/Login", FullMethod(MethodLogin))
}

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)

	b, err := c.Marshal(&LoginRequest{Identifier: "ann@x.io", Password: "secret123"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"email_or_phone":"ann@x.io","password":"secret123"}`, string(b))

	var got LoginRequest
	require.NoError(t, c.Unmarshal(b, &got))
	assert.Equal(t, "ann@x.io", got.Identifier)
}

func TestCodecUnmarshalEmpty(t *testing.T) {
	var req PlansRequest
	assert.NoError(t, Codec{}.Unmarshal(nil, &req))
}

func TestRegisterRequestNormalize(t *testing.T) {
	valid := func() RegisterRequest {
		return RegisterRequest{Name: "  Ann  ", Email: " ann@x.io ", Phone: " 5551234 ", Password: "password1"}
	}

	r := valid()
	require.NoError(t, r.Normalize())
	assert.Equal(t, "Ann", r.Name)
	assert.Equal(t, "ann@x.io", r.Email)
	assert.Equal(t, "5551234", r.Phone)
	assert.Empty(t, r.PlanID)

	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"short name", func(r *RegisterRequest) { r.Name = "A" }},
		{"long name", func(r *RegisterRequest) { r.Name = strings.Repeat("a", 101) }},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }},
		{"display name email", func(r *RegisterRequest) { r.Email = "Ann <ann@x.io>" }},
		{"short phone", func(r *RegisterRequest) { r.Phone = "123" }},
		{"short password", func(r *RegisterRequest) { r.Password = "short" }},
		{"short plan", func(r *RegisterRequest) { r.PlanID = "ab" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := r.Normalize()
			assert.True(t, errors.Is(err, ErrInvalidRequest), "got %v", err)
		})
	}
}

func TestPasswordIsNotTrimmed(t *testing.T) {
	r := LoginRequest{Identifier: "ann@x.io", Password: "  pass  "}
	require.NoError(t, r.Normalize())
	assert.Equal(t, "  pass  ", r.Password)
}

func TestOtherRequests(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		ok   bool
	}{
		{"verify ok", &VerifyRequest{Email: "ann@x.io", Code: "abcd"}, true},
		{"verify short code", &VerifyRequest{Email: "ann@x.io", Code: "abc"}, false},
		{"login short id", &LoginRequest{Identifier: "ab", Password: "password1"}, false},
		{"forgot ok", &ForgotPasswordRequest{Email: "ann@x.io", Phone: "5551234"}, true},
		{"forgot no phone", &ForgotPasswordRequest{Email: "ann@x.io"}, false},
		{"reset ok", &ResetPasswordRequest{Email: "ann@x.io", Token: "tok-1234", NewPassword: "password2"}, true},
		{"reset weak", &ResetPasswordRequest{Email: "ann@x.io", Token: "tok-1234", NewPassword: "pw"}, false},
		{"upgrade ok", &UpgradePlanRequest{PlanID: " pro "}, true},
		{"upgrade empty", &UpgradePlanRequest{}, false},
		{"feature ok", &UseFeatureRequest{Feature: "image_basic"}, true},
		{"feature long", &UseFeatureRequest{Feature: strings.Repeat("f", 33)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Normalize()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidRequest)
			}
		})
	}
}
