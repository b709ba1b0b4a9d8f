package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/edubd/internal/client/client"
	"github.com/dmitrijs2005/edubd/internal/client/models"
	"github.com/dmitrijs2005/edubd/internal/client/notify"
	"github.com/dmitrijs2005/edubd/internal/common"
	"github.com/dmitrijs2005/edubd/internal/logging"
)

// ProfileInput is what the profile page collects. An empty Password keeps
// the current one; a nil Avatar keeps the current picture.
type ProfileInput struct {
	Username        string
	Email           string
	Password        []byte
	ConfirmPassword []byte
	Avatar          *models.Avatar
}

// AccountService covers the signed-in pages: the profile form and the
// admin user list. Every call runs with the session token, so a 401 ends
// the session.
type AccountService interface {
	UpdateProfile(ctx context.Context, in ProfileInput) error
	ListUsers(ctx context.Context, role models.Role) ([]models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type accountService struct {
	gateway  client.Client
	sessions Sessions
	notifier notify.Notifier
	log      logging.Logger
}

func NewAccountService(gateway client.Client, sessions Sessions, notifier notify.Notifier, log logging.Logger) AccountService {
	if log == nil {
		log = logging.Nop()
	}
	return &accountService{
		gateway:  gateway,
		sessions: sessions,
		notifier: notifier,
		log:      log.With("component", "account-forms"),
	}
}

// UpdateProfile saves the profile and then re-fetches it so every
// dependent sees the server's version of the user.
func (s *accountService) UpdateProfile(ctx context.Context, in ProfileInput) error {
	if len(in.Password) > 0 && !common.SamePassword(in.Password, in.ConfirmPassword) {
		s.notifier.Notify(msgPasswordMismatch, notify.KindError)
		return common.ErrPasswordMismatch
	}
	if err := requireFields(map[string]string{"username": in.Username, "email": in.Email}); err != nil {
		s.notifier.Notify(msgProfileFailed, notify.KindError)
		return err
	}

	upd := models.ProfileUpdate{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Password: string(in.Password),
		Avatar:   in.Avatar,
	}
	err := s.sessions.WithToken(ctx, func(ctx context.Context, token string) error {
		_, err := s.gateway.UpdateProfile(ctx, token, upd)
		return err
	})
	if err != nil {
		s.log.Warn(ctx, "profile update failed", "error", err)
		s.notifier.Notify(msgProfileFailed, notify.KindError)
		return err
	}

	s.notifier.Notify(msgProfileUpdated, notify.KindSuccess)
	if err := s.sessions.RefreshProfile(ctx); err != nil {
		// the update itself went through
		s.log.Warn(ctx, "cannot refresh profile after update", "error", err)
	}
	return nil
}

// ListUsers returns all users, or only those holding role when it is set.
func (s *accountService) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	if role != "" && !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	var users []models.User
	err := s.sessions.WithToken(ctx, func(ctx context.Context, token string) error {
		var err error
		users, err = s.gateway.ListUsers(ctx, token)
		return err
	})
	if err != nil {
		s.log.Warn(ctx, "cannot load users", "error", err)
		s.notifier.Notify(msgUsersLoadFailed, notify.KindError)
		return nil, err
	}

	if role == "" {
		return users, nil
	}
	filtered := users[:0]
	for _, u := range users {
		if u.Role == role {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

func (s *accountService) DeleteUser(ctx context.Context, id int64) error {
	if me := s.sessions.Snapshot().User; me != nil && me.ID == id {
		s.notifier.Notify(msgUserDeleteFailed, notify.KindError)
		return common.ErrSelfDelete
	}

	err := s.sessions.WithToken(ctx, func(ctx context.Context, token string) error {
		return s.gateway.DeleteUser(ctx, token, id)
	})
	if err != nil {
		if !errors.Is(err, client.ErrUnauthorized) {
			s.log.Warn(ctx, "cannot delete user", "id", id, "error", err)
		}
		s.notifier.Notify(msgUserDeleteFailed, notify.KindError)
		return err
	}

	s.log.Info(ctx, "user deleted", "id", id)
	s.notifier.Notify(msgUserDeleted, notify.KindSuccess)
	return nil
}
