// Package auth is a toy credential store: passwords are kept in plaintext and
// a single process-wide session pointer records who is logged in.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/STTM-NSU/crypto-dashboard/internal/logger"
	"github.com/STTM-NSU/crypto-dashboard/internal/storage"
)

var (
	EmptyCredentialsError  = errors.New("please fill in all fields")
	UserExistsError        = errors.New("user already exists")
	UserNotFoundError      = errors.New("user not found")
	IncorrectPasswordError = errors.New("incorrect password")
)

type Store struct {
	kv     storage.Store
	logger logger.Logger
}

func NewStore(kv storage.Store, logger logger.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger,
	}
}

func (s *Store) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return EmptyCredentialsError
	}

	_, err := s.kv.Get(ctx, storage.CredentialKey(username))
	switch {
	case err == nil:
		return UserExistsError
	case !errors.Is(err, storage.NotFoundError):
		return fmt.Errorf("%w: can't check credential", err)
	}

	if err := s.kv.Set(ctx, storage.CredentialKey(username), []byte(password)); err != nil {
		return fmt.Errorf("%w: can't store credential", err)
	}

	s.logger.Infof("registered user %s", username)
	return nil
}

func (s *Store) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return EmptyCredentialsError
	}

	stored, err := s.kv.Get(ctx, storage.CredentialKey(username))
	if errors.Is(err, storage.NotFoundError) {
		return UserNotFoundError
	}
	if err != nil {
		return fmt.Errorf("%w: can't load credential", err)
	}

	if string(stored) != password {
		return IncorrectPasswordError
	}

	if err := s.kv.Set(ctx, storage.SessionKey, []byte(username)); err != nil {
		return fmt.Errorf("%w: can't store session", err)
	}

	s.logger.Infof("user %s logged in", username)
	return nil
}

func (s *Store) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, storage.SessionKey); err != nil {
		return fmt.Errorf("%w: can't clear session", err)
	}
	return nil
}

// CurrentUser returns the logged-in username; ok is false when nobody is.
func (s *Store) CurrentUser(ctx context.Context) (string, bool, error) {
	raw, err := s.kv.Get(ctx, storage.SessionKey)
	if errors.Is(err, storage.NotFoundError) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: can't load session", err)
	}
	if len(raw) == 0 {
		return "", false, nil
	}
	return string(raw), true, nil
}
