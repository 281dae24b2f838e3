package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/lastforend/airdrop-ledger/pkg/app/errors"
	"github.com/lastforend/airdrop-ledger/pkg/ledgerstore"
	"github.com/lastforend/airdrop-ledger/pkg/reward"
)

func TestBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the cached balance", func(t *testing.T) {
		store := &MockStore{
			BalanceFunc: func(ctx context.Context, userID int64) (int64, error) {
				assert.Equal(t, int64(7), userID)
				return 125, nil
			},
		}
		svc := NewService(store, zap.NewNop())

		balance, err := svc.Balance(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(125), balance)
	})

	t.Run("unknown user maps to not found", func(t *testing.T) {
		store := &MockStore{
			BalanceFunc: func(ctx context.Context, userID int64) (int64, error) {
				return 0, ledgerstore.ErrUserNotFound
			},
		}
		svc := NewService(store, zap.NewNop())

		_, err := svc.Balance(ctx, 99)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound))
	})
}

func TestTransactionHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("clamps the page size", func(t *testing.T) {
		var gotLimit int
		store := &MockStore{
			TransactionsFunc: func(ctx context.Context, userID int64, limit int, beforeID int64) ([]*reward.Transaction, error) {
				gotLimit = limit
				return nil, nil
			},
		}
		svc := NewService(store, zap.NewNop())

		_, err := svc.TransactionHistory(ctx, 1, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, defaultHistoryLimit, gotLimit)

		_, err = svc.TransactionHistory(ctx, 1, 5000, 0)
		require.NoError(t, err)
		assert.Equal(t, maxHistoryLimit, gotLimit)
	})

	t.Run("passes the cursor through", func(t *testing.T) {
		store := &MockStore{
			TransactionsFunc: func(ctx context.Context, userID int64, limit int, beforeID int64) ([]*reward.Transaction, error) {
				assert.Equal(t, int64(42), beforeID)
				return []*reward.Transaction{{ID: 41, UserID: userID, Amount: 30}}, nil
			},
		}
		svc := NewService(store, zap.NewNop())

		txns, err := svc.TransactionHistory(ctx, 1, 10, 42)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, int64(41), txns[0].ID)
	})

	t.Run("store failure is a general error", func(t *testing.T) {
		store := &MockStore{
			TransactionsFunc: func(ctx context.Context, userID int64, limit int, beforeID int64) ([]*reward.Transaction, error) {
				return nil, errors.New("connection reset")
			},
		}
		svc := NewService(store, zap.NewNop())

		_, err := svc.TransactionHistory(ctx, 1, 10, 0)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CategoryGeneralError))
	})
}

func TestReferralStats(t *testing.T) {
	store := &MockStore{
		ReferralStatsFunc: func(ctx context.Context, userID int64) (*reward.ReferralStats, error) {
			return &reward.ReferralStats{TotalReferrals: 3, TotalEarned: 75}, nil
		},
	}
	svc := NewService(store, zap.NewNop())

	stats, err := svc.ReferralStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalReferrals)
	assert.Equal(t, int64(75), stats.TotalEarned)
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()

	t.Run("clamps the requested size", func(t *testing.T) {
		var gotLimit int
		store := &MockStore{
			LeaderboardFunc: func(ctx context.Context, limit int) ([]*reward.LeaderboardEntry, error) {
				gotLimit = limit
				return nil, nil
			},
		}
		svc := NewService(store, zap.NewNop())

		_, err := svc.Leaderboard(ctx, -1)
		require.NoError(t, err)
		assert.Equal(t, defaultLeaderboardSize, gotLimit)

		_, err = svc.Leaderboard(ctx, 9999)
		require.NoError(t, err)
		assert.Equal(t, maxLeaderboardSize, gotLimit)
	})

	t.Run("returns the ranked entries", func(t *testing.T) {
		store := &MockStore{
			LeaderboardFunc: func(ctx context.Context, limit int) ([]*reward.LeaderboardEntry, error) {
				return []*reward.LeaderboardEntry{
					{UserID: 1, ReferralCount: 5, Balance: 300},
					{UserID: 2, ReferralCount: 2, Balance: 500},
				}, nil
			},
		}
		svc := NewService(store, zap.NewNop())

		entries, err := svc.Leaderboard(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, int64(1), entries[0].UserID)
	})
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("clean ledger reports no drift", func(t *testing.T) {
		store := &MockStore{
			ReconcileBalancesFunc: func(ctx context.Context) ([]*reward.BalanceDrift, error) {
				return nil, nil
			},
		}
		svc := NewService(store, zap.NewNop())

		drifts, err := svc.Reconcile(ctx)
		require.NoError(t, err)
		assert.Empty(t, drifts)
	})

	t.Run("reports every drifted user", func(t *testing.T) {
		store := &MockStore{
			ReconcileBalancesFunc: func(ctx context.Context) ([]*reward.BalanceDrift, error) {
				return []*reward.BalanceDrift{
					{UserID: 4, Cached: 100, Computed: 75},
				}, nil
			},
		}
		svc := NewService(store, zap.NewNop())

		drifts, err := svc.Reconcile(ctx)
		require.NoError(t, err)
		require.Len(t, drifts, 1)
		assert.Equal(t, int64(4), drifts[0].UserID)
		assert.Equal(t, int64(100), drifts[0].Cached)
		assert.Equal(t, int64(75), drifts[0].Computed)
	})
}
