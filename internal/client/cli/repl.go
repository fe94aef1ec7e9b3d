package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Verify(ctx context.Context) error
	Login(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	Plans(ctx context.Context) error
	Subscription(ctx context.Context) error
	Upgrade(ctx context.Context) error
	Usage(ctx context.Context) error
	UseFeature(ctx context.Context) error
	Flow(ctx context.Context) error
	Logout(ctx context.Context) error
}

func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to accountkeeper CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// runREPL reads commands from reader until EOF or exit. Commands prompt
// through the same reader, so it must not be wrapped in another buffer.
//
//	Not logged in:
//	  - register, verify, login, forgot, reset, plans, flow, help, exit
//
//	Logged in, additionally:
//	  - subscription, upgrade, usage, use, logout
//
// Service rejections are printed by the command itself; other errors are
// printed here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			printlnFn("Bye!")
			return
		}
		printlnFn(fmt.Sprintf("ak %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		err = nil

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: plans, subscription, upgrade, usage, use, flow, logout, exit")
			} else {
				printlnFn("Available commands: register, verify, login, forgot, reset, plans, flow, exit")
			}

		case "register":
			err = a.Register(ctx)
		case "verify":
			err = a.Verify(ctx)
		case "login":
			err = a.Login(ctx)
		case "forgot":
			err = a.ForgotPassword(ctx)
		case "reset":
			err = a.ResetPassword(ctx)
		case "plans":
			err = a.Plans(ctx)
		case "sub", "subscription":
			err = a.Subscription(ctx)
		case "upgrade":
			err = a.Upgrade(ctx)
		case "usage":
			err = a.Usage(ctx)
		case "use":
			err = a.UseFeature(ctx)
		case "flow":
			err = a.Flow(ctx)
		case "logout":
			err = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil && !isRejected(err) {
			printlnFn("error:", err)
		}
	}
}
