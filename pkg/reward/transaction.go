package reward

import "time"

// Type enumerates the kinds of ledger transactions.
type Type string

const (
	TypeTaskReward       Type = "task_reward"
	TypeReferralBonus    Type = "referral_bonus"
	TypeWelcomeBonus     Type = "welcome_bonus"
	TypeWithdrawal       Type = "withdrawal"
	TypeAirdrop          Type = "airdrop"
	TypeManualAdjustment Type = "manual_adjustment"
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	switch t {
	case TypeTaskReward, TypeReferralBonus, TypeWelcomeBonus,
		TypeWithdrawal, TypeAirdrop, TypeManualAdjustment:
		return true
	}
	return false
}

// Status enumerates transaction settlement states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further status transition is allowed.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// Transaction is a single append-only ledger entry. Amount and Type are
// immutable once created; only Status may transition, and only from pending.
type Transaction struct {
	ID            int64
	UserID        int64
	Type          Type
	Amount        int64
	Description   string
	Status        Status
	TaskID        *int64
	ReferralID    *int64
	WalletAddress string
	TxHash        string
	Metadata      map[string]string
	CreatedAt     time.Time
}

// NewTaskReward builds a completed task-reward transaction.
func NewTaskReward(userID, amount int64, taskName string, taskID int64) *Transaction {
	return &Transaction{
		UserID:      userID,
		Type:        TypeTaskReward,
		Amount:      amount,
		Description: "Task completed: " + taskName,
		Status:      StatusCompleted,
		TaskID:      &taskID,
	}
}

// NewReferralBonus builds a completed referral-bonus transaction for the inviter.
func NewReferralBonus(inviterID, amount int64) *Transaction {
	return &Transaction{
		UserID:      inviterID,
		Type:        TypeReferralBonus,
		Amount:      amount,
		Description: "Referral bonus for inviting a friend",
		Status:      StatusCompleted,
	}
}

// NewWithdrawal builds a pending withdrawal. Amount is stored negated so
// that the per-user sum of transaction amounts always equals the cached
// balance. Settlement is external and happens later.
func NewWithdrawal(userID, amount int64, walletAddress string) *Transaction {
	short := walletAddress
	if len(short) > 8 {
		short = short[:8] + "..."
	}
	return &Transaction{
		UserID:        userID,
		Type:          TypeWithdrawal,
		Amount:        -amount,
		Description:   "Withdrawal to " + short,
		Status:        StatusPending,
		WalletAddress: walletAddress,
	}
}

// ReferralStats aggregates a user's referral performance as inviter.
type ReferralStats struct {
	TotalReferrals int64 `json:"total_referrals"`
	TotalEarned    int64 `json:"total_earned"`
}

// LeaderboardEntry is one row of the referral leaderboard.
type LeaderboardEntry struct {
	UserID        int64  `json:"user_id"`
	Username      string `json:"username,omitzero"`
	TelegramID    int64  `json:"telegram_id"`
	ReferralCount int64  `json:"referral_count"`
	Balance       int64  `json:"balance"`
}

// BalanceDrift reports a user whose cached balance disagrees with the sum
// of their transaction amounts. An empty reconciliation report means the
// ledger invariant holds for every user.
type BalanceDrift struct {
	UserID   int64 `json:"user_id"`
	Cached   int64 `json:"cached_balance"`
	Computed int64 `json:"computed_balance"`
}
