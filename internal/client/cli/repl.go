package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	VerifyOTP(ctx context.Context) error
	Resend(ctx context.Context) error
	Cancel(ctx context.Context) error
	Forgot(ctx context.Context) error
	Profile(ctx context.Context) error
	Session(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the authkeeper CLI.
//
// It reads a line from reader, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on EOF, when ctx is done, or when
// the user types "exit" or "quit".
//
//	Not logged in:
//	  - register       - create an account and verify it with a code
//	  - login          - sign in with email and password
//	  - otp            - sign in with an emailed code, or finish a pending one
//	  - resend         - send the pending code again
//	  - cancel         - abandon the pending code
//	  - forgot         - reset a forgotten password
//
//	Logged in:
//	  - profile        - show the signed-in user
//	  - session        - show the remaining session time
//	  - logout         - sign out
//
//	Always: help, exit | quit
//
// Command handlers print their own errors; the loop ignores them. The
// handlers prompt through the same reader, so it must not be wrapped in a
// buffering scanner here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("auth%s> ", prefixSpace(statusFn())))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: profile, session, logout, exit")
			} else {
				printlnFn("Available commands: register, login, otp, resend, cancel, forgot, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "otp":
			_ = a.VerifyOTP(ctx)

		case "resend":
			_ = a.Resend(ctx)

		case "cancel":
			_ = a.Cancel(ctx)

		case "forgot":
			_ = a.Forgot(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "session":
			_ = a.Session(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func prefixSpace(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}
