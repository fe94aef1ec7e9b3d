package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	err      error
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool {
	return f.loggedIn
}

func (f *fakeExec) Register(context.Context) error {
	return f.record("register")
}

func (f *fakeExec) Verify(context.Context) error {
	return f.record("verify")
}

func (f *fakeExec) ForgotPassword(context.Context) error {
	return f.record("forgot")
}

func (f *fakeExec) ResetPassword(context.Context) error {
	return f.record("reset")
}

func (f *fakeExec) Plans(context.Context) error {
	return f.record("plans")
}

func (f *fakeExec) Subscription(context.Context) error {
	return f.record("subscription")
}

func (f *fakeExec) Upgrade(context.Context) error {
	return f.record("upgrade")
}

func (f *fakeExec) Usage(context.Context) error {
	return f.record("usage")
}

func (f *fakeExec) UseFeature(context.Context) error {
	return f.record("use")
}

func (f *fakeExec) Flow(context.Context) error {
	return f.record("flow")
}

func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}

func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprint(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_Dispatch(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"register",
		"verify",
		"login",
		"help",
		"",
		"plans",
		"sub",
		"upgrade",
		"usage",
		"use",
		"forgot",
		"reset",
		"flow",
		"logout",
		"foobar",
		"exit",
		"register",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(input))

	assert.Equal(t, []string{
		"register", "verify", "login", "plans", "subscription", "upgrade",
		"usage", "use", "forgot", "reset", "flow", "logout",
	}, exec.calls)

	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "Available commands: register, verify, login")
	assert.Contains(t, joined, "Available commands: plans, subscription")
	assert.Contains(t, joined, "Unknown command:foobar")
	assert.Contains(t, joined, "Bye!")
}

func TestRunREPL_StopsAtEOF(t *testing.T) {
	captureOutput(t)
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("plans")))
	assert.Equal(t, []string{"plans"}, exec.calls)
}

func TestRunREPL_ReportsErrors(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{err: errors.New("server unavailable")}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("plans\n")))
	assert.Contains(t, strings.Join(*out, "\n"), "error:server unavailable")

	*out = nil
	exec = &fakeExec{err: ErrRejected}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("login\n")))
	assert.NotContains(t, strings.Join(*out, "\n"), "error:")
}

func TestRunREPL_StopsWhenCancelled(t *testing.T) {
	out := captureOutput(t)

	ctx, cancel := context.WithCancel(context.Background())
	exec := &fakeExec{}
	input := bufio.NewReader(strings.NewReader("plans\nusage\n"))

	// Interrupted while the first command is being typed.
	statusFn := func() string {
		cancel()
		return ""
	}
	runREPL(ctx, exec, statusFn, input)

	assert.Equal(t, []string{"plans"}, exec.calls)
	assert.Contains(t, *out, "Bye!")
}
