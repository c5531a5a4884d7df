package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/STTM-NSU/crypto-dashboard/internal/logger"
	"github.com/STTM-NSU/crypto-dashboard/internal/model"
	"github.com/STTM-NSU/crypto-dashboard/internal/storage"
)

var NotLoggedInError = errors.New("you must be logged in to manage your portfolio")

type SessionProvider interface {
	CurrentUser(ctx context.Context) (string, bool, error)
}

// Store persists one holdings blob per username and applies mutations for
// whoever is currently logged in.
type Store struct {
	kv       storage.Store
	sessions SessionProvider
	logger   logger.Logger

	mu sync.Mutex
}

func NewStore(kv storage.Store, sessions SessionProvider, logger logger.Logger) *Store {
	return &Store{
		kv:       kv,
		sessions: sessions,
		logger:   logger,
	}
}

// Load returns the holdings of username, or an empty list when nothing is
// stored or nobody is logged in.
func (s *Store) Load(ctx context.Context, username string) ([]model.Holding, error) {
	if _, ok, err := s.sessions.CurrentUser(ctx); err != nil || !ok {
		return []model.Holding{}, err
	}

	return s.load(ctx, username)
}

// Save overwrites the holdings of username.
func (s *Store) Save(ctx context.Context, username string, holdings []model.Holding) error {
	if _, ok, err := s.sessions.CurrentUser(ctx); err != nil {
		return err
	} else if !ok {
		return NotLoggedInError
	}

	return s.save(ctx, username, holdings)
}

// Current loads the holdings of the logged-in user.
func (s *Store) Current(ctx context.Context) (string, []model.Holding, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return "", nil, err
	}

	holdings, err := s.load(ctx, user)
	return user, holdings, err
}

// Add applies AddOrMerge to the logged-in user's portfolio and persists it.
func (s *Store) Add(ctx context.Context, coinID, coinSymbol string, amount, purchasePrice float64) ([]model.Holding, bool, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	holdings, err := s.load(ctx, user)
	if err != nil {
		return nil, false, err
	}

	updated, merged, err := AddOrMerge(holdings, coinID, coinSymbol, amount, purchasePrice)
	if err != nil {
		return holdings, false, err
	}

	if err := s.save(ctx, user, updated); err != nil {
		return holdings, false, err
	}

	s.logger.Infof("%s: added %f %s at %f (merged=%t)", user, amount, coinID, purchasePrice, merged)
	return updated, merged, nil
}

// Remove deletes the holding at index from the logged-in user's portfolio.
func (s *Store) Remove(ctx context.Context, index int) ([]model.Holding, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	holdings, err := s.load(ctx, user)
	if err != nil {
		return nil, err
	}

	updated, err := RemoveAt(holdings, index)
	if err != nil {
		return holdings, err
	}

	if err := s.save(ctx, user, updated); err != nil {
		return holdings, err
	}

	s.logger.Infof("%s: removed holding %d", user, index)
	return updated, nil
}

func (s *Store) currentUser(ctx context.Context) (string, error) {
	user, ok, err := s.sessions.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: can't get session", err)
	}
	if !ok {
		return "", NotLoggedInError
	}
	return user, nil
}

func (s *Store) load(ctx context.Context, username string) ([]model.Holding, error) {
	holdings := make([]model.Holding, 0)
	if _, err := storage.GetJSON(ctx, s.kv, storage.PortfolioKey(username), &holdings); err != nil {
		return nil, fmt.Errorf("%w: can't load portfolio", err)
	}
	if holdings == nil {
		holdings = make([]model.Holding, 0)
	}
	return holdings, nil
}

func (s *Store) save(ctx context.Context, username string, holdings []model.Holding) error {
	if holdings == nil {
		holdings = []model.Holding{}
	}
	if err := storage.SetJSON(ctx, s.kv, storage.PortfolioKey(username), holdings); err != nil {
		return fmt.Errorf("%w: can't save portfolio", err)
	}
	return nil
}
