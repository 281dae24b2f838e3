// Package service exposes read models over the ledger: balances,
// transaction history, referral statistics and the leaderboard.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lastforend/airdrop-ledger/internal/metrics"
	apperrors "github.com/lastforend/airdrop-ledger/pkg/app/errors"
	"github.com/lastforend/airdrop-ledger/pkg/ledgerstore"
	"github.com/lastforend/airdrop-ledger/pkg/reward"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100

	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

// Store is the narrow data-access interface for the reporting service.
type Store interface {
	Balance(ctx context.Context, userID int64) (int64, error)
	Transactions(ctx context.Context, userID int64, limit int, beforeID int64) ([]*reward.Transaction, error)
	ReferralStats(ctx context.Context, userID int64) (*reward.ReferralStats, error)
	Leaderboard(ctx context.Context, limit int) ([]*reward.LeaderboardEntry, error)
	ReconcileBalances(ctx context.Context) ([]*reward.BalanceDrift, error)
}

// Service defines the interface for ledger read models
type Service interface {
	Balance(ctx context.Context, userID int64) (int64, error)
	TransactionHistory(ctx context.Context, userID int64, limit int, beforeID int64) ([]*reward.Transaction, error)
	ReferralStats(ctx context.Context, userID int64) (*reward.ReferralStats, error)
	Leaderboard(ctx context.Context, limit int) ([]*reward.LeaderboardEntry, error)
	Reconcile(ctx context.Context) ([]*reward.BalanceDrift, error)
}

type reportingService struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new reporting service
func NewService(store Store, logger *zap.Logger) Service {
	return &reportingService{
		store:  store,
		logger: logger,
	}
}

func (s *reportingService) Balance(ctx context.Context, userID int64) (int64, error) {
	balance, err := s.store.Balance(ctx, userID)
	if err != nil {
		if errors.Is(err, ledgerstore.ErrUserNotFound) {
			return 0, apperrors.ResourceNotFoundError(err, "user not found")
		}
		return 0, apperrors.GeneralError(err)
	}
	return balance, nil
}

// TransactionHistory returns the user's ledger entries, newest first.
// beforeID acts as a keyset cursor; zero starts from the newest entry.
func (s *reportingService) TransactionHistory(ctx context.Context, userID int64, limit int, beforeID int64) ([]*reward.Transaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	txns, err := s.store.Transactions(ctx, userID, limit, beforeID)
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}
	return txns, nil
}

func (s *reportingService) ReferralStats(ctx context.Context, userID int64) (*reward.ReferralStats, error) {
	stats, err := s.store.ReferralStats(ctx, userID)
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}
	return stats, nil
}

func (s *reportingService) Leaderboard(ctx context.Context, limit int) ([]*reward.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}

	entries, err := s.store.Leaderboard(ctx, limit)
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}
	return entries, nil
}

// Reconcile audits every user's cached balance against the sum of their
// transactions and reports the deviations.
func (s *reportingService) Reconcile(ctx context.Context) ([]*reward.BalanceDrift, error) {
	drifts, err := s.store.ReconcileBalances(ctx)
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}

	metrics.BalanceDriftDetected.Set(float64(len(drifts)))
	for _, d := range drifts {
		s.logger.Error("balance drift detected",
			zap.Int64("user_id", d.UserID),
			zap.Int64("cached", d.Cached),
			zap.Int64("computed", d.Computed),
		)
	}
	return drifts, nil
}
