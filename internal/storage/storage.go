// Package storage is the local key-value persistence behind credentials,
// the session pointer and per-user portfolios.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

var (
	NotFoundError   = errors.New("record not found")
	InvalidKeyError = errors.New("invalid record key")
)

const (
	_credentialPrefix = "credential:"
	_portfolioPrefix  = "portfolio:"

	SessionKey = "session"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

func CredentialKey(username string) string {
	return _credentialPrefix + username
}

func PortfolioKey(username string) string {
	return _portfolioPrefix + username
}

// GetJSON decodes the record at key into v. The returned bool is false when
// the record does not exist.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, NotFoundError) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := sonic.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("%w: can't decode record %s", err, key)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: can't encode record %s", err, key)
	}
	return s.Set(ctx, key, raw)
}

func validKey(key string) error {
	if key == "" {
		return InvalidKeyError
	}
	return nil
}
