package service

import (
	"context"
	"errors"

	"github.com/lastforend/airdrop-ledger/pkg/reward"
)

// MockStore implements Store with overridable function fields.
type MockStore struct {
	BalanceFunc           func(ctx context.Context, userID int64) (int64, error)
	TransactionsFunc      func(ctx context.Context, userID int64, limit int, beforeID int64) ([]*reward.Transaction, error)
	ReferralStatsFunc     func(ctx context.Context, userID int64) (*reward.ReferralStats, error)
	LeaderboardFunc       func(ctx context.Context, limit int) ([]*reward.LeaderboardEntry, error)
	ReconcileBalancesFunc func(ctx context.Context) ([]*reward.BalanceDrift, error)
}

func (m *MockStore) Balance(ctx context.Context, userID int64) (int64, error) {
	if m.BalanceFunc != nil {
		return m.BalanceFunc(ctx, userID)
	}
	return 0, errors.New("BalanceFunc not set")
}

func (m *MockStore) Transactions(ctx context.Context, userID int64, limit int, beforeID int64) ([]*reward.Transaction, error) {
	if m.TransactionsFunc != nil {
		return m.TransactionsFunc(ctx, userID, limit, beforeID)
	}
	return nil, errors.New("TransactionsFunc not set")
}

func (m *MockStore) ReferralStats(ctx context.Context, userID int64) (*reward.ReferralStats, error) {
	if m.ReferralStatsFunc != nil {
		return m.ReferralStatsFunc(ctx, userID)
	}
	return nil, errors.New("ReferralStatsFunc not set")
}

func (m *MockStore) Leaderboard(ctx context.Context, limit int) ([]*reward.LeaderboardEntry, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(ctx, limit)
	}
	return nil, errors.New("LeaderboardFunc not set")
}

func (m *MockStore) ReconcileBalances(ctx context.Context) ([]*reward.BalanceDrift, error) {
	if m.ReconcileBalancesFunc != nil {
		return m.ReconcileBalancesFunc(ctx)
	}
	return nil, errors.New("ReconcileBalancesFunc not set")
}
