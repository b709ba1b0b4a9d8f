// Package session owns the client's authentication state: whether a visitor
// is signed in, who they are, and the bearer token proving it.
//
// Store is a small state machine:
//
//	Bootstrapping -> Unauthenticated | Authenticated
//	Unauthenticated <-> Authenticated
//
// Every transition that follows a network call is tagged with a generation
// number. Logout bumps the generation, so a login or bootstrap that was
// still in flight can no longer change the state when it finally returns.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/edubd/internal/client/client"
	"github.com/dmitrijs2005/edubd/internal/client/models"
	"github.com/dmitrijs2005/edubd/internal/common"
	"github.com/dmitrijs2005/edubd/internal/logging"
)

// Gateway is the part of the Credential Gateway the store calls itself.
type Gateway interface {
	Login(ctx context.Context, username, password string) (string, error)
	Profile(ctx context.Context, token string) (*models.User, error)
}

// Navigator receives the "back to root" signal on logout.
type Navigator interface {
	Navigate(path string)
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithNavigator(n Navigator) Option {
	return func(s *Store) { s.nav = n }
}

type Store struct {
	gateway Gateway
	tokens  TokenStore
	log     logging.Logger
	now     func() time.Time

	flight singleflight.Group
	// slot serializes Bootstrap and Login, the two writers of the token slot.
	slot sync.Mutex

	mu        sync.Mutex
	status    Status
	token     string
	user      *models.User
	expiresAt time.Time
	gen       uint64
	nav       Navigator
	subs      map[int]func(Snapshot)
	nextSub   int
}

func NewStore(gateway Gateway, tokens TokenStore, opts ...Option) *Store {
	s := &Store{
		gateway: gateway,
		tokens:  tokens,
		log:     logging.Nop(),
		now:     time.Now,
		status:  StatusBootstrapping,
		subs:    make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "session")
	return s
}

// SetNavigator wires the navigator after construction; the router usually
// depends on the store, so it cannot be passed to NewStore.
func (s *Store) SetNavigator(n Navigator) {
	s.mu.Lock()
	s.nav = n
	s.mu.Unlock()
}

// Snapshot returns the current state. It never contains the token.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive every published snapshot. fn is called
// without any store lock held. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Bootstrap restores the session from the persisted token. Failures are
// logged and swallowed: the store simply ends up Unauthenticated.
// Concurrent calls share one run; once the store has left Bootstrapping
// further calls do nothing.
func (s *Store) Bootstrap(ctx context.Context) error {
	_, err, _ := s.flight.Do("bootstrap", func() (any, error) {
		s.bootstrap(ctx)
		return nil, nil
	})
	return err
}

func (s *Store) bootstrap(ctx context.Context) {
	s.slot.Lock()
	defer s.slot.Unlock()

	s.mu.Lock()
	if s.status != StatusBootstrapping {
		s.mu.Unlock()
		return
	}
	gen := s.gen
	s.mu.Unlock()

	token, err := s.tokens.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "cannot read persisted token", "error", err)
		s.commit(gen, "", nil)
		return
	}
	if token == "" {
		s.log.Debug(ctx, "no persisted token")
		s.commit(gen, "", nil)
		return
	}

	if exp := tokenExpiry(token); !exp.IsZero() && !s.now().Before(exp) {
		s.log.Warn(ctx, "persisted token expired", "expired_at", exp)
		if err := s.tokens.Clear(ctx); err != nil {
			s.log.Error(ctx, "cannot discard persisted token", "error", err)
		}
		s.commit(gen, "", nil)
		return
	}

	user, err := s.gateway.Profile(ctx, token)
	if err != nil {
		if !s.isCurrent(gen) {
			return
		}
		s.log.Warn(ctx, "persisted session rejected", "error", err)
		if err := s.tokens.Clear(ctx); err != nil {
			s.log.Error(ctx, "cannot discard persisted token", "error", err)
		}
		s.commit(gen, "", nil)
		return
	}

	if s.commit(gen, token, user) {
		s.log.Info(ctx, "session restored", "user", user.Username, "role", user.Role)
	}
}

// Login exchanges credentials for a token, persists it, and fetches the
// profile. Dependents observe Authenticated only once the profile is in.
// On failure the state is left untouched and a *LoginError is returned.
// ErrStale means a logout happened while the call was pending.
func (s *Store) Login(ctx context.Context, username, password string) (err error) {
	s.slot.Lock()
	defer s.slot.Unlock()

	gen := s.generation()

	token, err := s.gateway.Login(ctx, username, password)
	if err != nil {
		return newLoginError(err)
	}
	if !s.isCurrent(gen) {
		return ErrStale
	}

	if err := s.tokens.Save(ctx, token); err != nil {
		return &LoginError{Reason: ReasonStorage, Err: err}
	}
	// A logout racing with Save may have run before the token was written.
	defer func() {
		if errors.Is(err, ErrStale) {
			if cerr := s.tokens.Clear(ctx); cerr != nil {
				s.log.Error(ctx, "cannot discard stale token", "error", cerr)
			}
		}
	}()

	user, err := s.gateway.Profile(ctx, token)
	if err != nil {
		if !s.isCurrent(gen) {
			return ErrStale
		}
		if cerr := s.tokens.Clear(ctx); cerr != nil {
			s.log.Error(ctx, "cannot discard token after failed profile fetch", "error", cerr)
		}
		lerr := newLoginError(err)
		lerr.Reason = ReasonProfile
		return lerr
	}

	if !s.commit(gen, token, user) {
		return ErrStale
	}
	s.log.Info(ctx, "logged in", "user", user.Username, "role", user.Role)
	return nil
}

// Logout ends the session without touching the network: it forgets the
// token and user, clears the persisted token, and navigates to the root.
// The in-memory transition happens even when clearing storage fails.
func (s *Store) Logout(ctx context.Context) error {
	s.end(ctx, 0, false)
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear persisted token: %w", err)
	}
	return nil
}

// WithToken runs fn with the current bearer token. A 401 from fn ends the
// session, provided the token it used is still the current one.
func (s *Store) WithToken(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	return s.withToken(ctx, func(ctx context.Context, token string, _ uint64) error {
		return fn(ctx, token)
	})
}

func (s *Store) withToken(ctx context.Context, fn func(ctx context.Context, token string, gen uint64) error) error {
	s.mu.Lock()
	token, gen := s.token, s.gen
	s.mu.Unlock()

	if token == "" {
		return ErrNoSession
	}

	err := fn(ctx, token, gen)
	if errors.Is(err, client.ErrUnauthorized) {
		if s.end(ctx, gen, true) {
			s.log.Warn(ctx, "gateway rejected the session token, logging out")
			if cerr := s.tokens.Clear(ctx); cerr != nil {
				s.log.Error(ctx, "cannot clear persisted token", "error", cerr)
			}
		}
	}
	return err
}

// RefreshProfile re-fetches the signed-in user, e.g. after a profile update.
func (s *Store) RefreshProfile(ctx context.Context) error {
	return s.withToken(ctx, func(ctx context.Context, token string, gen uint64) error {
		user, err := s.gateway.Profile(ctx, token)
		if err != nil {
			return err
		}

		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return ErrStale
		}
		s.user = user
		snap, subs := s.snapshotLocked(), s.subscribersLocked()
		s.mu.Unlock()

		publish(snap, subs)
		return nil
	})
}

func (s *Store) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Store) isCurrent(gen uint64) bool {
	return s.generation() == gen
}

// commit applies the outcome of bootstrap or login if no newer operation
// happened since gen was taken. A nil user means Unauthenticated.
func (s *Store) commit(gen uint64, token string, user *models.User) bool {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return false
	}
	s.gen++
	if user == nil {
		s.status, s.token, s.user, s.expiresAt = StatusUnauthenticated, "", nil, time.Time{}
	} else {
		s.status, s.token, s.user, s.expiresAt = StatusAuthenticated, token, user, tokenExpiry(token)
	}
	snap, subs := s.snapshotLocked(), s.subscribersLocked()
	s.mu.Unlock()

	publish(snap, subs)
	return true
}

// end performs the in-memory part of logout. With onlyIf set it does so
// only when the generation still equals gen.
func (s *Store) end(ctx context.Context, gen uint64, onlyIf bool) bool {
	s.mu.Lock()
	if onlyIf && s.gen != gen {
		s.mu.Unlock()
		return false
	}
	s.gen++
	wasAuthenticated := s.status == StatusAuthenticated
	s.status, s.token, s.user, s.expiresAt = StatusUnauthenticated, "", nil, time.Time{}
	snap, subs, nav := s.snapshotLocked(), s.subscribersLocked(), s.nav
	s.mu.Unlock()

	if wasAuthenticated {
		s.log.Info(ctx, "logged out")
	}
	// Leave the protected page before dependents re-gate it, otherwise
	// they would see a signed-out visitor on it and ask for a login.
	if nav != nil {
		nav.Navigate(common.RootPath)
	}
	publish(snap, subs)
	return true
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{Status: s.status, ExpiresAt: s.expiresAt}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

func (s *Store) subscribersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func publish(snap Snapshot, subs []func(Snapshot)) {
	for _, fn := range subs {
		fn(snap)
	}
}
