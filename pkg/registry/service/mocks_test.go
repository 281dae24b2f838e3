package service

import (
	"context"

	"github.com/lastforend/airdrop-ledger/pkg/ledgerstore"
	"github.com/lastforend/airdrop-ledger/pkg/reward"
	"github.com/lastforend/airdrop-ledger/pkg/user"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	GetUserFunc             func(ctx context.Context, opts ...ledgerstore.QueryOption) (*user.User, error)
	CreateUserFunc          func(ctx context.Context, u *user.User) error
	UpdateWalletAddressFunc func(ctx context.Context, userID int64, address string) error
	SetVerifiedFunc         func(ctx context.Context, userID int64, verified bool) error
}

func (m *MockStore) GetUser(ctx context.Context, opts ...ledgerstore.QueryOption) (*user.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, opts...)
	}
	return nil, ledgerstore.ErrUserNotFound
}

func (m *MockStore) CreateUser(ctx context.Context, u *user.User) error {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, u)
	}
	return nil
}

func (m *MockStore) UpdateWalletAddress(ctx context.Context, userID int64, address string) error {
	if m.UpdateWalletAddressFunc != nil {
		return m.UpdateWalletAddressFunc(ctx, userID, address)
	}
	return nil
}

func (m *MockStore) SetVerified(ctx context.Context, userID int64, verified bool) error {
	if m.SetVerifiedFunc != nil {
		return m.SetVerifiedFunc(ctx, userID, verified)
	}
	return nil
}

// MockLedger is a mock implementation of Ledger
type MockLedger struct {
	GrantWelcomeBonusFunc  func(ctx context.Context, userID int64) (*reward.Transaction, error)
	GrantReferralBonusFunc func(ctx context.Context, inviterID, invitedID int64) (*reward.Transaction, error)
}

func (m *MockLedger) GrantWelcomeBonus(ctx context.Context, userID int64) (*reward.Transaction, error) {
	if m.GrantWelcomeBonusFunc != nil {
		return m.GrantWelcomeBonusFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockLedger) GrantReferralBonus(ctx context.Context, inviterID, invitedID int64) (*reward.Transaction, error) {
	if m.GrantReferralBonusFunc != nil {
		return m.GrantReferralBonusFunc(ctx, inviterID, invitedID)
	}
	return nil, nil
}

// MockService is a mock implementation of Service for HTTP facade tests
type MockService struct {
	RegisterFunc           func(ctx context.Context, req *user.RegisterRequest) (*user.RegisterResponse, error)
	FindByIDFunc           func(ctx context.Context, userID int64) (*user.User, error)
	FindByTelegramIDFunc   func(ctx context.Context, telegramID int64) (*user.User, error)
	FindByReferralCodeFunc func(ctx context.Context, code string) (*user.User, error)
	FindByAPIKeyFunc       func(ctx context.Context, apiKey string) (*user.User, error)
	LinkWalletFunc         func(ctx context.Context, userID int64, address string) (*user.User, error)
	SetVerifiedFunc        func(ctx context.Context, userID int64, verified bool) (*user.User, error)
}

func (m *MockService) FindByID(ctx context.Context, userID int64) (*user.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, userID)
	}
	return nil, ledgerstore.ErrUserNotFound
}

func (m *MockService) FindByReferralCode(ctx context.Context, code string) (*user.User, error) {
	if m.FindByReferralCodeFunc != nil {
		return m.FindByReferralCodeFunc(ctx, code)
	}
	return nil, ledgerstore.ErrUserNotFound
}

func (m *MockService) Register(ctx context.Context, req *user.RegisterRequest) (*user.RegisterResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockService) FindByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	if m.FindByTelegramIDFunc != nil {
		return m.FindByTelegramIDFunc(ctx, telegramID)
	}
	return nil, ledgerstore.ErrUserNotFound
}

func (m *MockService) FindByAPIKey(ctx context.Context, apiKey string) (*user.User, error) {
	if m.FindByAPIKeyFunc != nil {
		return m.FindByAPIKeyFunc(ctx, apiKey)
	}
	return nil, ledgerstore.ErrUserNotFound
}

func (m *MockService) LinkWallet(ctx context.Context, userID int64, address string) (*user.User, error) {
	if m.LinkWalletFunc != nil {
		return m.LinkWalletFunc(ctx, userID, address)
	}
	return nil, nil
}

func (m *MockService) SetVerified(ctx context.Context, userID int64, verified bool) (*user.User, error) {
	if m.SetVerifiedFunc != nil {
		return m.SetVerifiedFunc(ctx, userID, verified)
	}
	return nil, nil
}

// queryOptions collapses functional options for mock-side dispatch
func queryOptions(opts ...ledgerstore.QueryOption) *ledgerstore.QueryOptions {
	options := &ledgerstore.QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
