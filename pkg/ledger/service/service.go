// Package service implements the crediting and withdrawal business logic
// of the reward ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lastforend/airdrop-ledger/internal/metrics"
	apperrors "github.com/lastforend/airdrop-ledger/pkg/app/errors"
	"github.com/lastforend/airdrop-ledger/pkg/config"
	"github.com/lastforend/airdrop-ledger/pkg/ledgerstore"
	"github.com/lastforend/airdrop-ledger/pkg/reward"
	"github.com/lastforend/airdrop-ledger/pkg/user"
	"github.com/lastforend/airdrop-ledger/pkg/wallet"
)

// Store is the narrow data-access interface for the ledger service.
// Defined here to keep the service decoupled from ledgerstore
// implementation details.
type Store interface {
	GetUser(ctx context.Context, opts ...ledgerstore.QueryOption) (*user.User, error)
	GetTask(ctx context.Context, id int64) (*reward.Task, error)
	CompleteTask(ctx context.Context, userID int64, t *reward.Task, now time.Time) (*reward.Transaction, error)
	CreateReferral(ctx context.Context, inviterID, invitedID, bonus int64) (*reward.Transaction, error)
	Grant(ctx context.Context, txn *reward.Transaction) error
	Withdraw(ctx context.Context, userID, amount int64, walletAddress string) (*reward.Transaction, error)
	SettleWithdrawal(ctx context.Context, txID int64, confirmed bool, txHash string) (*reward.Transaction, error)
}

// Service defines the interface for ledger crediting and withdrawals
type Service interface {
	CompleteTask(ctx context.Context, userID, taskID int64) (*reward.Transaction, error)
	GrantWelcomeBonus(ctx context.Context, userID int64) (*reward.Transaction, error)
	GrantReferralBonus(ctx context.Context, inviterID, invitedID int64) (*reward.Transaction, error)
	Withdraw(ctx context.Context, userID, amount int64, walletAddress string) (*reward.Transaction, error)
	SettleWithdrawal(ctx context.Context, txID int64, confirmed bool, txHash string) (*reward.Transaction, error)
	Airdrop(ctx context.Context, userIDs []int64, amount int64, description string) (int, error)
	Adjust(ctx context.Context, userID, amount int64, reason string) (*reward.Transaction, error)
}

type ledgerService struct {
	store   Store
	rewards *config.RewardsConfig
	logger  *zap.Logger
}

// NewService creates a new ledger service
func NewService(store Store, rewards *config.RewardsConfig, logger *zap.Logger) Service {
	return &ledgerService{
		store:   store,
		rewards: rewards,
		logger:  logger,
	}
}

// CompleteTask credits the task's reward to the user at most once per
// allowed repeat. The store decides races; this method translates its
// verdict for callers.
func (s *ledgerService) CompleteTask(ctx context.Context, userID, taskID int64) (*reward.Transaction, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, ledgerstore.ErrTaskNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "task not found")
		}
		return nil, apperrors.GeneralError(err)
	}
	if !task.IsActive {
		return nil, apperrors.ResourceNotFoundError(ledgerstore.ErrTaskNotFound, "task not found")
	}

	txn, err := s.store.CompleteTask(ctx, userID, task, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, ledgerstore.ErrAlreadyCompleted):
			metrics.DuplicatesRejected.WithLabelValues(string(reward.TypeTaskReward)).Inc()
			return nil, apperrors.ConflictError(err, "task already completed")
		case errors.Is(err, ledgerstore.ErrOnCooldown):
			return nil, apperrors.RateLimitedError(err, "task is on cooldown")
		case errors.Is(err, ledgerstore.ErrUserNotFound):
			return nil, apperrors.ResourceNotFoundError(err, "user not found")
		}
		return nil, apperrors.GeneralError(err)
	}

	metrics.RewardsGranted.WithLabelValues(string(reward.TypeTaskReward)).Inc()
	metrics.RewardAmount.WithLabelValues(string(reward.TypeTaskReward)).Observe(float64(txn.Amount))
	return txn, nil
}

// GrantWelcomeBonus credits the configured one-time signup bonus. It is a
// no-op when the bonus is configured to zero.
func (s *ledgerService) GrantWelcomeBonus(ctx context.Context, userID int64) (*reward.Transaction, error) {
	if s.rewards.WelcomeBonus <= 0 {
		return nil, nil
	}

	txn := &reward.Transaction{
		UserID:      userID,
		Type:        reward.TypeWelcomeBonus,
		Amount:      s.rewards.WelcomeBonus,
		Description: "Welcome bonus",
		Status:      reward.StatusCompleted,
	}
	if err := s.store.Grant(ctx, txn); err != nil {
		switch {
		case errors.Is(err, ledgerstore.ErrDuplicateReward):
			metrics.DuplicatesRejected.WithLabelValues(string(reward.TypeWelcomeBonus)).Inc()
			return nil, apperrors.ConflictError(err, "welcome bonus already granted")
		case errors.Is(err, ledgerstore.ErrUserNotFound):
			return nil, apperrors.ResourceNotFoundError(err, "user not found")
		}
		return nil, apperrors.GeneralError(err)
	}

	metrics.RewardsGranted.WithLabelValues(string(reward.TypeWelcomeBonus)).Inc()
	return txn, nil
}

// GrantReferralBonus credits the inviter exactly once per invited user.
func (s *ledgerService) GrantReferralBonus(ctx context.Context, inviterID, invitedID int64) (*reward.Transaction, error) {
	if inviterID == invitedID {
		return nil, apperrors.BadRequestError(nil, "self-referral is not allowed")
	}

	txn, err := s.store.CreateReferral(ctx, inviterID, invitedID, s.rewards.ReferralBonus)
	if err != nil {
		switch {
		case errors.Is(err, ledgerstore.ErrAlreadyReferred):
			metrics.DuplicatesRejected.WithLabelValues(string(reward.TypeReferralBonus)).Inc()
			return nil, apperrors.ConflictError(err, "user is already referred")
		case errors.Is(err, ledgerstore.ErrUserNotFound):
			return nil, apperrors.ResourceNotFoundError(err, "user not found")
		}
		return nil, apperrors.GeneralError(err)
	}

	metrics.RewardsGranted.WithLabelValues(string(reward.TypeReferralBonus)).Inc()
	metrics.RewardAmount.WithLabelValues(string(reward.TypeReferralBonus)).Observe(float64(txn.Amount))
	return txn, nil
}

// Withdraw debits the user and records a pending withdrawal. When no
// address is supplied the user's linked wallet address is used.
func (s *ledgerService) Withdraw(ctx context.Context, userID, amount int64, walletAddress string) (*reward.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.BadRequestError(nil, "withdrawal amount must be positive")
	}

	if walletAddress == "" {
		u, err := s.store.GetUser(ctx, ledgerstore.WithID(userID))
		if err != nil {
			if errors.Is(err, ledgerstore.ErrUserNotFound) {
				return nil, apperrors.ResourceNotFoundError(err, "user not found")
			}
			return nil, apperrors.GeneralError(err)
		}
		if u.WalletAddress == "" {
			return nil, apperrors.PreconditionError(nil, "no wallet address linked")
		}
		walletAddress = u.WalletAddress
	}
	if err := wallet.ValidateAddress(walletAddress); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid wallet address")
	}

	txn, err := s.store.Withdraw(ctx, userID, amount, wallet.NormalizeAddress(walletAddress))
	if err != nil {
		switch {
		case errors.Is(err, ledgerstore.ErrInsufficientBalance):
			metrics.WithdrawalsTotal.WithLabelValues("rejected").Inc()
			return nil, apperrors.PreconditionError(err, "insufficient balance")
		case errors.Is(err, ledgerstore.ErrUserNotFound):
			return nil, apperrors.ResourceNotFoundError(err, "user not found")
		}
		return nil, apperrors.GeneralError(err)
	}

	metrics.WithdrawalsTotal.WithLabelValues("pending").Inc()
	return txn, nil
}

// SettleWithdrawal finishes a pending withdrawal. A failed settlement
// returns the debited points to the user.
func (s *ledgerService) SettleWithdrawal(ctx context.Context, txID int64, confirmed bool, txHash string) (*reward.Transaction, error) {
	txn, err := s.store.SettleWithdrawal(ctx, txID, confirmed, txHash)
	if err != nil {
		switch {
		case errors.Is(err, ledgerstore.ErrTransactionNotFound):
			return nil, apperrors.ResourceNotFoundError(err, "withdrawal not found")
		case errors.Is(err, ledgerstore.ErrInvalidStatusTransition):
			return nil, apperrors.ConflictError(err, "withdrawal is not pending")
		}
		return nil, apperrors.GeneralError(err)
	}

	metrics.WithdrawalsTotal.WithLabelValues(string(txn.Status)).Inc()
	return txn, nil
}

// Airdrop credits the same amount to every listed user. Missing users are
// skipped; the count of credited users is returned.
func (s *ledgerService) Airdrop(ctx context.Context, userIDs []int64, amount int64, description string) (int, error) {
	if amount <= 0 {
		return 0, apperrors.BadRequestError(nil, "airdrop amount must be positive")
	}
	if len(userIDs) == 0 {
		return 0, apperrors.BadRequestError(nil, "no recipients")
	}
	if description == "" {
		description = "Community airdrop"
	}

	granted := 0
	for _, userID := range userIDs {
		txn := &reward.Transaction{
			UserID:      userID,
			Type:        reward.TypeAirdrop,
			Amount:      amount,
			Description: description,
			Status:      reward.StatusCompleted,
		}
		if err := s.store.Grant(ctx, txn); err != nil {
			if errors.Is(err, ledgerstore.ErrUserNotFound) {
				s.logger.Warn("airdrop recipient not found", zap.Int64("user_id", userID))
				continue
			}
			return granted, apperrors.GeneralError(fmt.Errorf("airdrop to user %d: %w", userID, err))
		}
		granted++
		metrics.RewardsGranted.WithLabelValues(string(reward.TypeAirdrop)).Inc()
	}
	return granted, nil
}

// Adjust applies an operator correction of either sign to a user's balance.
func (s *ledgerService) Adjust(ctx context.Context, userID, amount int64, reason string) (*reward.Transaction, error) {
	if amount == 0 {
		return nil, apperrors.BadRequestError(nil, "adjustment amount must not be zero")
	}
	if reason == "" {
		return nil, apperrors.BadRequestError(nil, "adjustment reason is required")
	}

	txn := &reward.Transaction{
		UserID:      userID,
		Type:        reward.TypeManualAdjustment,
		Amount:      amount,
		Description: reason,
		Status:      reward.StatusCompleted,
	}
	if err := s.store.Grant(ctx, txn); err != nil {
		if errors.Is(err, ledgerstore.ErrUserNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "user not found")
		}
		return nil, apperrors.GeneralError(err)
	}

	metrics.RewardsGranted.WithLabelValues(string(reward.TypeManualAdjustment)).Inc()
	return txn, nil
}
