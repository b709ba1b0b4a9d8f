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
	Status(ctx context.Context) error
	Goto(ctx context.Context, path string) error
	Back(ctx context.Context) error
	Open(ctx context.Context, view string) error
	CloseDialog(ctx context.Context) error
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context, uid, token string) error
	Profile(ctx context.Context) error
	Users(ctx context.Context, role string) error
	DeleteUser(ctx context.Context, id string) error
	Dismiss(ctx context.Context) error
	Logout(ctx context.Context) error
}

var _ execIface = (*App)(nil)

const (
	helpSignedOut = "Available commands: status, goto <path>, back, open <login|register|forgot-password>, close, " +
		"login, register, forgot, reset <uid> <token>, dismiss, exit"
	helpSignedIn = "Available commands: status, goto <path>, back, profile, users [role], deluser <id>, " +
		"dismiss, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the EduBD CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands and missing
// arguments are reported back to the user. The loop exits on scanner EOF or
// when the user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers report
// their own outcome (usually through the notification channel).
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("edubd %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "status":
			_ = a.Status(ctx)

		case "goto", "go":
			if len(args) != 1 {
				printlnFn("Usage: goto <path>")
				continue
			}
			_ = a.Goto(ctx, args[0])

		case "back":
			_ = a.Back(ctx)

		case "open":
			if len(args) != 1 {
				printlnFn("Usage: open <login|register|forgot-password>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "close":
			_ = a.CloseDialog(ctx)

		case "login":
			_ = a.Login(ctx)

		case "register":
			_ = a.Register(ctx)

		case "forgot":
			_ = a.Forgot(ctx)

		case "reset":
			if len(args) != 2 {
				printlnFn("Usage: reset <uid> <token>")
				continue
			}
			_ = a.Reset(ctx, args[0], args[1])

		case "profile":
			_ = a.Profile(ctx)

		case "users":
			role := ""
			if len(args) > 0 {
				role = args[0]
			}
			_ = a.Users(ctx, role)

		case "deluser":
			if len(args) != 1 {
				printlnFn("Usage: deluser <id>")
				continue
			}
			_ = a.DeleteUser(ctx, args[0])

		case "dismiss":
			_ = a.Dismiss(ctx)

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
