package service

import (
	"context"
	"time"

	"github.com/lastforend/airdrop-ledger/pkg/ledgerstore"
	"github.com/lastforend/airdrop-ledger/pkg/reward"
	"github.com/lastforend/airdrop-ledger/pkg/user"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	GetUserFunc          func(ctx context.Context, opts ...ledgerstore.QueryOption) (*user.User, error)
	GetTaskFunc          func(ctx context.Context, id int64) (*reward.Task, error)
	CompleteTaskFunc     func(ctx context.Context, userID int64, t *reward.Task, now time.Time) (*reward.Transaction, error)
	CreateReferralFunc   func(ctx context.Context, inviterID, invitedID, bonus int64) (*reward.Transaction, error)
	GrantFunc            func(ctx context.Context, txn *reward.Transaction) error
	WithdrawFunc         func(ctx context.Context, userID, amount int64, walletAddress string) (*reward.Transaction, error)
	SettleWithdrawalFunc func(ctx context.Context, txID int64, confirmed bool, txHash string) (*reward.Transaction, error)
}

func (m *MockStore) GetUser(ctx context.Context, opts ...ledgerstore.QueryOption) (*user.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, opts...)
	}
	return nil, ledgerstore.ErrUserNotFound
}

func (m *MockStore) GetTask(ctx context.Context, id int64) (*reward.Task, error) {
	if m.GetTaskFunc != nil {
		return m.GetTaskFunc(ctx, id)
	}
	return nil, ledgerstore.ErrTaskNotFound
}

func (m *MockStore) CompleteTask(ctx context.Context, userID int64, t *reward.Task, now time.Time) (*reward.Transaction, error) {
	if m.CompleteTaskFunc != nil {
		return m.CompleteTaskFunc(ctx, userID, t, now)
	}
	return nil, nil
}

func (m *MockStore) CreateReferral(ctx context.Context, inviterID, invitedID, bonus int64) (*reward.Transaction, error) {
	if m.CreateReferralFunc != nil {
		return m.CreateReferralFunc(ctx, inviterID, invitedID, bonus)
	}
	return nil, nil
}

func (m *MockStore) Grant(ctx context.Context, txn *reward.Transaction) error {
	if m.GrantFunc != nil {
		return m.GrantFunc(ctx, txn)
	}
	return nil
}

func (m *MockStore) Withdraw(ctx context.Context, userID, amount int64, walletAddress string) (*reward.Transaction, error) {
	if m.WithdrawFunc != nil {
		return m.WithdrawFunc(ctx, userID, amount, walletAddress)
	}
	return nil, nil
}

func (m *MockStore) SettleWithdrawal(ctx context.Context, txID int64, confirmed bool, txHash string) (*reward.Transaction, error) {
	if m.SettleWithdrawalFunc != nil {
		return m.SettleWithdrawalFunc(ctx, txID, confirmed, txHash)
	}
	return nil, nil
}
