package ledgerstore

import (
	"context"
	"errors"
	"time"

	"github.com/lastforend/airdrop-ledger/pkg/reward"
	"github.com/lastforend/airdrop-ledger/pkg/user"
)

// Typed outcomes of ledger preconditions. These are expected, recoverable
// results that the service layer maps to API error categories; anything
// else coming out of the store is a storage failure.
var (
	ErrUserNotFound            = errors.New("user not found")
	ErrTaskNotFound            = errors.New("task not found")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrAlreadyCompleted        = errors.New("task already completed")
	ErrOnCooldown              = errors.New("task is on cooldown")
	ErrAlreadyReferred         = errors.New("user already referred")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrDuplicateReward         = errors.New("duplicate reward")
	ErrInvalidStatusTransition = errors.New("invalid transaction status transition")
)

// UserStore defines user identity persistence. The registry is the only
// caller of its mutating methods.
type UserStore interface {
	CreateUser(ctx context.Context, usr *user.User) error
	GetUser(ctx context.Context, opts ...QueryOption) (*user.User, error)
	UpdateWalletAddress(ctx context.Context, userID int64, address string) error
	SetVerified(ctx context.Context, userID int64, verified bool) error
}

// TaskStore defines task catalog persistence.
type TaskStore interface {
	CreateTask(ctx context.Context, t *reward.Task) error
	GetTask(ctx context.Context, id int64) (*reward.Task, error)
	TaskExistsByName(ctx context.Context, name string) (bool, error)
	ListTasksForUser(ctx context.Context, userID int64) ([]*reward.TaskView, error)
	DeactivateTask(ctx context.Context, id int64) error
}

// LedgerStore defines the atomic reward-granting operations. Every method
// runs as a single database transaction: either the transaction row, the
// balance delta, and any related record all commit together, or nothing
// does.
type LedgerStore interface {
	Grant(ctx context.Context, txn *reward.Transaction) error
	CompleteTask(ctx context.Context, userID int64, t *reward.Task, now time.Time) (*reward.Transaction, error)
	CreateReferral(ctx context.Context, inviterID, invitedID, bonus int64) (*reward.Transaction, error)
	Withdraw(ctx context.Context, userID, amount int64, walletAddress string) (*reward.Transaction, error)
	SettleWithdrawal(ctx context.Context, txID int64, confirmed bool, txHash string) (*reward.Transaction, error)
}

// ReportStore defines the read-only aggregates.
type ReportStore interface {
	Balance(ctx context.Context, userID int64) (int64, error)
	Transactions(ctx context.Context, userID int64, limit int, beforeID int64) ([]*reward.Transaction, error)
	ReferralStats(ctx context.Context, userID int64) (*reward.ReferralStats, error)
	Leaderboard(ctx context.Context, limit int) ([]*reward.LeaderboardEntry, error)
	ReconcileBalances(ctx context.Context) ([]*reward.BalanceDrift, error)
}

// Store is the full persistence surface of the ledger.
type Store interface {
	UserStore
	TaskStore
	LedgerStore
	ReportStore
}

// QueryOptions defines filters for user lookups
type QueryOptions struct {
	ID           *int64
	TelegramID   *int64
	ReferralCode *string
	APIKey       *string
}

// QueryOption is a functional option for querying users
type QueryOption func(*QueryOptions)

// WithID filters by internal user id
func WithID(id int64) QueryOption {
	return func(opts *QueryOptions) {
		opts.ID = &id
	}
}

// WithTelegramID filters by the external chat account id
func WithTelegramID(telegramID int64) QueryOption {
	return func(opts *QueryOptions) {
		opts.TelegramID = &telegramID
	}
}

// WithReferralCode filters by referral code
func WithReferralCode(code string) QueryOption {
	return func(opts *QueryOptions) {
		opts.ReferralCode = &code
	}
}

// WithAPIKey filters by API credential
func WithAPIKey(key string) QueryOption {
	return func(opts *QueryOptions) {
		opts.APIKey = &key
	}
}
