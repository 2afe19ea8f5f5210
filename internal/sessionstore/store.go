// Package sessionstore keeps per-user session state in a BuntDB file: OIDC ID
// tokens (with expiry) and the persisted application context.
package sessionstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/buntdb"
)

var ErrNotFound = errors.New("session value not found")

type TokenStore interface {
	SaveIDToken(userID int, token string, expiresAt time.Time) error
	GetIDToken(userID int) (string, error)
	DeleteIDToken(userID int) error
}

type ContextStore interface {
	LoadContext(userID int) (AppContext, error)
	SaveContext(userID int, c AppContext) error
}

var (
	_ TokenStore   = (*Store)(nil)
	_ ContextStore = (*Store)(nil)
)

type Store struct {
	DB *buntdb.DB
}

// Open opens the BuntDB database at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func tokenKey(userID int) string   { return "id_token:" + strconv.Itoa(userID) }
func contextKey(userID int) string { return "app_context:" + strconv.Itoa(userID) }

// SaveIDToken stores the token until expiresAt.
func (s *Store) SaveIDToken(userID int, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt).Round(time.Second)
	if ttl <= 0 {
		return fmt.Errorf("token for user %d already expired", userID)
	}
	return s.DB.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(tokenKey(userID), token, &buntdb.SetOptions{
			Expires: true,
			TTL:     ttl,
		})
		return err
	})
}

func (s *Store) GetIDToken(userID int) (string, error) {
	var token string
	err := s.DB.View(func(tx *buntdb.Tx) error {
		val, err := tx.Get(tokenKey(userID))
		if err != nil {
			return err
		}
		token = val
		return nil
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get id token: %w", err)
	}
	return token, nil
}

func (s *Store) DeleteIDToken(userID int) error {
	return s.DB.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(tokenKey(userID))
		if err != nil && !errors.Is(err, buntdb.ErrNotFound) {
			return err
		}
		return nil
	})
}

// LoadContext returns the stored context, or ErrNotFound for a first visit.
func (s *Store) LoadContext(userID int) (AppContext, error) {
	var raw string
	err := s.DB.View(func(tx *buntdb.Tx) error {
		val, err := tx.Get(contextKey(userID))
		raw = val
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return AppContext{}, ErrNotFound
	}
	if err != nil {
		return AppContext{}, fmt.Errorf("load app context: %w", err)
	}
	var c AppContext
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return AppContext{}, fmt.Errorf("decode app context: %w", err)
	}
	return c, nil
}

func (s *Store) SaveContext(userID int, c AppContext) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.DB.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(contextKey(userID), string(b), nil)
		return err
	})
}
