package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/edubd/internal/client/dialog"
	"github.com/dmitrijs2005/edubd/internal/client/gate"
	"github.com/dmitrijs2005/edubd/internal/client/models"
	"github.com/dmitrijs2005/edubd/internal/client/services"
	"github.com/dmitrijs2005/edubd/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) prompt(p string) (string, error) {
	return getSimpleText(a.reader, p, a.out)
}

// promptDefault shows the current value and keeps it when the answer is empty.
func (a *App) promptDefault(p, current string) (string, error) {
	v, err := a.prompt(fmt.Sprintf("%s [%s]", p, current))
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

// Status prints who is signed in, where the client is and what the dialog
// and notification slot hold.
func (a *App) Status(ctx context.Context) error {
	snap := a.store.Snapshot()
	a.say(fmt.Sprintf("session:  %s", snap.Status))
	a.say(fmt.Sprintf("user:     %s", renderUser(snap.User)))
	if !snap.ExpiresAt.IsZero() {
		a.say(fmt.Sprintf("expires:  %s", snap.ExpiresAt.Local().Format(time.RFC1123)))
	}
	a.say(fmt.Sprintf("location: %s", renderPage(a.router.Current())))
	a.say(fmt.Sprintf("history:  %s", strings.Join(a.router.History(), " > ")))
	a.say(fmt.Sprintf("dialog:   %s", renderDialog(a.dialog.State())))
	if n, ok := a.notes.Current(); ok {
		a.say(fmt.Sprintf("notice:   %s", renderNotification(n)))
	}
	return nil
}

func (a *App) Goto(ctx context.Context, path string) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	a.router.Push(path)
	return nil
}

func (a *App) Back(ctx context.Context) error {
	if _, ok := a.router.Back(); !ok {
		a.say("Nothing to go back to")
	}
	return nil
}

func (a *App) Open(ctx context.Context, view string) error {
	v, err := dialog.ParseView(view)
	if err != nil {
		a.say(err.Error())
		return err
	}
	a.dialog.OpenView(v)
	return nil
}

func (a *App) CloseDialog(ctx context.Context) error {
	a.dialog.Close()
	return nil
}

func (a *App) Dismiss(ctx context.Context) error {
	a.notes.Dismiss()
	return nil
}

// Login runs the login form. The dialog stays on the login view when the
// credentials are rejected.
func (a *App) Login(ctx context.Context) error {
	if snap := a.store.Snapshot(); snap.Authenticated() {
		a.say(fmt.Sprintf("Already signed in as %s", snap.User.Username))
		return nil
	}
	a.dialog.OpenView(dialog.ViewLogin)

	username, err := a.prompt("Username")
	if err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.auth.Login(ctx, username, password)
}

// Register runs the registration form.
func (a *App) Register(ctx context.Context) error {
	a.dialog.OpenView(dialog.ViewRegister)

	var in services.RegisterInput
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Username", &in.Username},
		{"Email", &in.Email},
		{"First name", &in.FirstName},
		{"Last name", &in.LastName},
	}
	for _, f := range fields {
		v, err := a.prompt(f.prompt)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	role, err := a.promptDefault("Role (student, instructor, admin)", string(models.RoleStudent))
	if err != nil {
		return err
	}
	in.Role = models.Role(role)

	if in.Password, err = getPassword("Password", a.out); err != nil {
		return err
	}
	defer common.WipeByteArray(in.Password)
	if in.ConfirmPassword, err = getPassword("Confirm password", a.out); err != nil {
		return err
	}
	defer common.WipeByteArray(in.ConfirmPassword)

	return a.auth.Register(ctx, in)
}

// Forgot runs the forgot-password form.
func (a *App) Forgot(ctx context.Context) error {
	a.dialog.OpenView(dialog.ViewForgotPassword)

	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	return a.auth.RequestPasswordReset(ctx, email)
}

// Reset opens the reset-password page for the link parts uid and token and
// runs its form. Errors are shown inline on the page.
func (a *App) Reset(ctx context.Context, uid, token string) error {
	page := a.router.Push("/reset-password/" + url.PathEscape(uid) + "/" + url.PathEscape(token))
	if page.Decision.Outcome != gate.OutcomeRender {
		return nil
	}

	password, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword("Confirm new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	err = a.auth.ConfirmPasswordReset(ctx, services.ResetInput{
		UID:             page.Param("uid"),
		Token:           page.Param("token"),
		Password:        password,
		ConfirmPassword: confirm,
	})
	var rerr *services.ResetError
	if errors.As(err, &rerr) {
		a.say(blockedStyle.Render(rerr.Message))
	}
	return err
}

// Profile opens the profile page and runs its form. Empty answers keep the
// current values.
func (a *App) Profile(ctx context.Context) error {
	page := a.router.Push("/profile")
	if page.Decision.Outcome != gate.OutcomeRender {
		return nil
	}

	me := a.store.Snapshot().User
	if me == nil {
		return nil
	}
	a.say(renderUser(me))

	var (
		in  services.ProfileInput
		err error
	)
	if in.Username, err = a.promptDefault("Username", me.Username); err != nil {
		return err
	}
	if in.Email, err = a.promptDefault("Email", me.Email); err != nil {
		return err
	}

	if in.Password, err = getPassword("New password (empty to keep)", a.out); err != nil {
		return err
	}
	defer common.WipeByteArray(in.Password)
	if len(in.Password) > 0 {
		if in.ConfirmPassword, err = getPassword("Confirm new password", a.out); err != nil {
			return err
		}
		defer common.WipeByteArray(in.ConfirmPassword)
	}

	path, err := a.prompt("Avatar file (empty to keep)")
	if err != nil {
		return err
	}
	if in.Avatar, err = ReadAvatar(path); err != nil {
		a.say(blockedStyle.Render(err.Error()))
		return err
	}

	return a.account.UpdateProfile(ctx, in)
}

// Users opens the admin user list, optionally filtered by role.
func (a *App) Users(ctx context.Context, role string) error {
	page := a.router.Push("/users")
	if page.Decision.Outcome != gate.OutcomeRender {
		return nil
	}

	var filter models.Role
	if role != "" && role != "all" {
		r, err := models.ParseRole(role)
		if err != nil {
			a.say(err.Error())
			return err
		}
		filter = r
	}

	users, err := a.account.ListUsers(ctx, filter)
	if err != nil {
		return err
	}
	a.say(renderUsers(users))
	return nil
}

// DeleteUser asks for confirmation and deletes the user with the given id.
func (a *App) DeleteUser(ctx context.Context, rawID string) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		a.say(fmt.Sprintf("Invalid user id %q", rawID))
		return fmt.Errorf("invalid user id %q", rawID)
	}

	answer, err := a.prompt(fmt.Sprintf("Delete user %d? (y/N)", id))
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		a.say("Cancelled")
		return nil
	}
	return a.account.DeleteUser(ctx, id)
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		a.log.Error(ctx, "logout", "error", err)
		return err
	}
	return nil
}
