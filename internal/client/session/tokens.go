package session

import (
	"context"
	"database/sql"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/edubd/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/edubd/internal/common"
	"github.com/dmitrijs2005/edubd/internal/dbx"
)

const tokenSavedAtKey = "access_token_saved_at"

// TokenStore is the durable slot holding the bearer token. Only Store
// reads or writes it.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// SQLiteTokenStore keeps the token in the metadata table, next to the time
// it was written.
type SQLiteTokenStore struct {
	db *sql.DB
}

func NewSQLiteTokenStore(db *sql.DB) *SQLiteTokenStore {
	return &SQLiteTokenStore{db: db}
}

func (s *SQLiteTokenStore) Load(ctx context.Context) (string, error) {
	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.TokenStorageKey)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *SQLiteTokenStore) Save(ctx context.Context, token string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.TokenStorageKey, []byte(token)); err != nil {
			return err
		}
		now := strconv.FormatInt(time.Now().Unix(), 10)
		return repo.Set(ctx, tokenSavedAtKey, []byte(now))
	})
}

func (s *SQLiteTokenStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.TokenStorageKey); err != nil {
			return err
		}
		return repo.Delete(ctx, tokenSavedAtKey)
	})
}

// MemoryTokenStore is a process-local TokenStore for tests and for running
// without a database.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (m *MemoryTokenStore) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryTokenStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// tokenExpiry reads the exp claim of a JWT without verifying it. Opaque or
// malformed tokens yield the zero time.
func tokenExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
