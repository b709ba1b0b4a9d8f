package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeExec) isLoggedIn() bool {
	return f.loggedIn
}

func (f *fakeExec) Status(context.Context) error {
	return f.record("status")
}

func (f *fakeExec) Goto(_ context.Context, p string) error {
	return f.record("goto " + p)
}

func (f *fakeExec) Back(context.Context) error {
	return f.record("back")
}

func (f *fakeExec) Open(_ context.Context, v string) error {
	return f.record("open " + v)
}

func (f *fakeExec) CloseDialog(context.Context) error {
	return f.record("close")
}

func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}

func (f *fakeExec) Register(context.Context) error {
	return f.record("register")
}

func (f *fakeExec) Forgot(context.Context) error {
	return f.record("forgot")
}

func (f *fakeExec) Reset(_ context.Context, uid, token string) error {
	return f.record("reset " + uid + " " + token)
}

func (f *fakeExec) Profile(context.Context) error {
	return f.record("profile")
}

func (f *fakeExec) Users(_ context.Context, role string) error {
	return f.record("users " + role)
}

func (f *fakeExec) DeleteUser(_ context.Context, id string) error {
	return f.record("deluser " + id)
}

func (f *fakeExec) Dismiss(context.Context) error {
	return f.record("dismiss")
}

func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i] = strings.TrimSpace(strings.ReplaceAll(toString(v), "\n", " "))
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"status",
		"goto /dashboard",
		"back",
		"open register",
		"close",
		"login",
		"register",
		"forgot",
		"reset MQ tok",
		"profile",
		"users instructor",
		"users",
		"deluser 7",
		"",
		"dismiss",
		"logout",
		"exit",
		"status",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input))

	assert.Equal(t, []string{
		"status", "goto /dashboard", "back", "open register", "close", "login",
		"register", "forgot", "reset MQ tok", "profile", "users instructor", "users ",
		"deluser 7", "dismiss", "logout",
	}, exec.calls)
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader("goto\nopen\nreset only-uid\ndeluser\nfoobar\nquit\n")
	exec := &fakeExec{loggedIn: true}

	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "Usage: goto <path>")
	assert.Contains(t, *out, "Usage: reset <uid> <token>")
	assert.Contains(t, *out, "Usage: deluser <id>")
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPL_HelpDependsOnSession(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" },
		bufio.NewScanner(strings.NewReader("help\nlogin\nhelp\n")))

	assert.Contains(t, *out, helpSignedOut)
	assert.Contains(t, *out, helpSignedIn)
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(strings.NewReader("status")))
	assert.Equal(t, []string{"status"}, exec.calls)
}
