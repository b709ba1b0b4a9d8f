package client

import (
	"context"

	"github.com/dmitrijs2005/edubd/internal/client/models"
)

// Client is the contract of the Credential Gateway. Methods taking a token
// send it as a bearer credential.
type Client interface {
	Register(ctx context.Context, reg models.Registration) error
	Login(ctx context.Context, username, password string) (string, error)
	Profile(ctx context.Context, token string) (*models.User, error)
	UpdateProfile(ctx context.Context, token string, upd models.ProfileUpdate) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, req models.PasswordResetConfirm) error
	ListUsers(ctx context.Context, token string) ([]models.User, error)
	DeleteUser(ctx context.Context, token string, id int64) error
}
