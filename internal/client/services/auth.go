// Package services contains the client's form controllers. Each method
// validates input, calls the session store or the gateway, reports the
// outcome on the notification channel and drives the auth dialog. Errors
// are returned as well so callers can keep a form open.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/edubd/internal/client/client"
	"github.com/dmitrijs2005/edubd/internal/client/dialog"
	"github.com/dmitrijs2005/edubd/internal/client/models"
	"github.com/dmitrijs2005/edubd/internal/client/notify"
	"github.com/dmitrijs2005/edubd/internal/client/session"
	"github.com/dmitrijs2005/edubd/internal/common"
	"github.com/dmitrijs2005/edubd/internal/logging"
)

const (
	msgWelcome          = "Welcome back!"
	msgLoginFailed      = "Login failed. Please check your credentials."
	msgPasswordMismatch = "Passwords do not match"
	msgRegistered       = "Registration successful! Please login."
	msgRegisterFailed   = "Registration failed: "
	msgUnknownError     = "Unknown error"
	msgResetSent        = "If an account exists, a reset link has been sent."
	msgResetSendFailed  = "Failed to send reset email."
	msgResetDone        = "Password reset successfully! Opening login..."
	msgResetFailed      = "Failed to reset password. Link might be invalid or expired."
	msgProfileUpdated   = "Profile updated successfully!"
	msgProfileFailed    = "Failed to update profile."
	msgUsersLoadFailed  = "Failed to load users"
	msgUserDeleted      = "User deleted successfully"
	msgUserDeleteFailed = "Failed to delete user"
)

// Sessions is the part of session.Store the forms use.
type Sessions interface {
	Snapshot() session.Snapshot
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	WithToken(ctx context.Context, fn func(ctx context.Context, token string) error) error
	RefreshProfile(ctx context.Context) error
}

// Dialog is the part of dialog.Coordinator the forms drive.
type Dialog interface {
	OpenView(v dialog.View)
	SwitchView(v dialog.View)
	Close()
}

// Navigator moves the client to another location.
type Navigator interface {
	Navigate(path string)
}

// RegisterInput is what the registration form collects.
type RegisterInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        []byte
	ConfirmPassword []byte
	Role            models.Role
}

// ResetInput is what the reset-password page collects. UID and Token come
// from the link in the reset email.
type ResetInput struct {
	UID             string
	Token           string
	Password        []byte
	ConfirmPassword []byte
}

// AuthService covers the forms of the auth dialog and the reset page.
//
// Contract:
//   - Login: sign in; on success the dialog closes.
//   - Register: create an account; on success the dialog switches to login.
//   - RequestPasswordReset: ask for a reset email; on success back to login.
//   - ConfirmPasswordReset: set a new password from a reset link. Failures
//     are returned for inline display and not notified.
//   - Logout: end the session locally.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) error
	Register(ctx context.Context, in RegisterInput) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, in ResetInput) error
	Logout(ctx context.Context) error
}

type authService struct {
	gateway  client.Client
	sessions Sessions
	dialog   Dialog
	notifier notify.Notifier
	nav      Navigator
	log      logging.Logger
}

// NewAuthService wires the auth forms. A nil nav skips the redirect after a
// password reset.
func NewAuthService(gateway client.Client, sessions Sessions, dlg Dialog, notifier notify.Notifier, nav Navigator, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{
		gateway:  gateway,
		sessions: sessions,
		dialog:   dlg,
		notifier: notifier,
		nav:      nav,
		log:      log.With("component", "auth-forms"),
	}
}

func (a *authService) Login(ctx context.Context, username string, password []byte) error {
	err := a.sessions.Login(ctx, strings.TrimSpace(username), string(password))
	if errors.Is(err, session.ErrStale) {
		// logged out meanwhile; nothing to report
		return err
	}
	if err != nil {
		a.log.Warn(ctx, "login failed", "user", username, "error", err)
		a.notifier.Notify(msgLoginFailed, notify.KindError)
		return err
	}
	a.notifier.Notify(msgWelcome, notify.KindSuccess)
	a.dialog.Close()
	return nil
}

func (a *authService) Register(ctx context.Context, in RegisterInput) error {
	if !common.SamePassword(in.Password, in.ConfirmPassword) {
		a.notifier.Notify(msgPasswordMismatch, notify.KindError)
		return common.ErrPasswordMismatch
	}
	if err := requireFields(map[string]string{
		"username": in.Username,
		"email":    in.Email,
		"password": string(in.Password),
	}); err != nil {
		a.notifier.Notify(msgRegisterFailed+err.Error(), notify.KindError)
		return err
	}
	role := in.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !role.Valid() {
		err := fmt.Errorf("unknown role %q", role)
		a.notifier.Notify(msgRegisterFailed+err.Error(), notify.KindError)
		return err
	}

	err := a.gateway.Register(ctx, models.Registration{
		Username:  strings.TrimSpace(in.Username),
		Email:     strings.TrimSpace(in.Email),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  string(in.Password),
		Role:      role,
	})
	if err != nil {
		a.log.Warn(ctx, "registration failed", "user", in.Username, "error", err)
		detail := client.Detail(err)
		if detail == "" {
			detail = msgUnknownError
		}
		a.notifier.Notify(msgRegisterFailed+detail, notify.KindError)
		return err
	}

	a.log.Info(ctx, "registered", "user", in.Username, "role", role)
	a.notifier.Notify(msgRegistered, notify.KindSuccess)
	a.dialog.SwitchView(dialog.ViewLogin)
	return nil
}

func (a *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		a.notifier.Notify(msgResetSendFailed, notify.KindError)
		return fmt.Errorf("%w: email", common.ErrEmptyField)
	}
	if err := a.gateway.RequestPasswordReset(ctx, email); err != nil {
		a.log.Warn(ctx, "password reset request failed", "error", err)
		a.notifier.Notify(msgResetSendFailed, notify.KindError)
		return err
	}
	a.notifier.Notify(msgResetSent, notify.KindSuccess)
	a.dialog.SwitchView(dialog.ViewLogin)
	return nil
}

// ResetError is the inline error of the reset page. Message is ready to
// show to the user.
type ResetError struct {
	Message string
	Err     error
}

func (e *ResetError) Error() string { return e.Message }
func (e *ResetError) Unwrap() error { return e.Err }

func (a *authService) ConfirmPasswordReset(ctx context.Context, in ResetInput) error {
	if !common.SamePassword(in.Password, in.ConfirmPassword) {
		return &ResetError{Message: msgPasswordMismatch, Err: common.ErrPasswordMismatch}
	}
	if in.UID == "" || in.Token == "" {
		return &ResetError{Message: msgResetFailed, Err: common.ErrInvalidToken}
	}
	if len(in.Password) == 0 {
		return &ResetError{Message: "Password is required", Err: fmt.Errorf("%w: password", common.ErrEmptyField)}
	}

	err := a.gateway.ConfirmPasswordReset(ctx, models.PasswordResetConfirm{
		Password: string(in.Password),
		Token:    in.Token,
		UIDB64:   in.UID,
	})
	if err != nil {
		a.log.Warn(ctx, "password reset confirm failed", "error", err)
		msg := client.Detail(err)
		if msg == "" {
			msg = msgResetFailed
		}
		return &ResetError{Message: msg, Err: err}
	}

	a.notifier.Notify(msgResetDone, notify.KindSuccess)
	if a.nav != nil {
		a.nav.Navigate(common.RootPath)
	}
	a.dialog.OpenView(dialog.ViewLogin)
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.sessions.Logout(ctx)
}

// requireFields returns ErrEmptyField naming the first blank field in
// alphabetical order.
func requireFields(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("%w: %s", common.ErrEmptyField, missing[0])
}
