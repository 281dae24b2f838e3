package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lastforend/airdrop-ledger/pkg/reward"
)

const serviceName = "LedgerService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the ledger Service.
// It logs method entry/exit, duration and errors.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// CompleteTask wraps the service method with logging
func (ls *logService) CompleteTask(ctx context.Context, userID, taskID int64) (txn *reward.Transaction, err error) {
	start := time.Now()

	ls.logger.Info("CompleteTask started",
		zap.String("service", serviceName),
		zap.String("method", "CompleteTask"),
		zap.Int64("user_id", userID),
		zap.Int64("task_id", taskID),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("CompleteTask failed",
				zap.String("service", serviceName),
				zap.String("method", "CompleteTask"),
				zap.Int64("user_id", userID),
				zap.Int64("task_id", taskID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("CompleteTask completed",
				zap.String("service", serviceName),
				zap.String("method", "CompleteTask"),
				zap.Int64("user_id", userID),
				zap.Int64("task_id", taskID),
				zap.Int64("amount", txn.Amount),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.CompleteTask(ctx, userID, taskID)
}

// GrantWelcomeBonus wraps the service method with logging
func (ls *logService) GrantWelcomeBonus(ctx context.Context, userID int64) (txn *reward.Transaction, err error) {
	start := time.Now()

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("GrantWelcomeBonus failed",
				zap.String("service", serviceName),
				zap.String("method", "GrantWelcomeBonus"),
				zap.Int64("user_id", userID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else if txn != nil {
			ls.logger.Info("GrantWelcomeBonus completed",
				zap.String("service", serviceName),
				zap.String("method", "GrantWelcomeBonus"),
				zap.Int64("user_id", userID),
				zap.Int64("amount", txn.Amount),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.GrantWelcomeBonus(ctx, userID)
}

// GrantReferralBonus wraps the service method with logging
func (ls *logService) GrantReferralBonus(ctx context.Context, inviterID, invitedID int64) (txn *reward.Transaction, err error) {
	start := time.Now()

	ls.logger.Info("GrantReferralBonus started",
		zap.String("service", serviceName),
		zap.String("method", "GrantReferralBonus"),
		zap.Int64("inviter_id", inviterID),
		zap.Int64("invited_id", invitedID),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("GrantReferralBonus failed",
				zap.String("service", serviceName),
				zap.String("method", "GrantReferralBonus"),
				zap.Int64("inviter_id", inviterID),
				zap.Int64("invited_id", invitedID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("GrantReferralBonus completed",
				zap.String("service", serviceName),
				zap.String("method", "GrantReferralBonus"),
				zap.Int64("inviter_id", inviterID),
				zap.Int64("invited_id", invitedID),
				zap.Int64("amount", txn.Amount),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.GrantReferralBonus(ctx, inviterID, invitedID)
}

// Withdraw wraps the service method with logging
func (ls *logService) Withdraw(ctx context.Context, userID, amount int64, walletAddress string) (txn *reward.Transaction, err error) {
	start := time.Now()

	ls.logger.Info("Withdraw started",
		zap.String("service", serviceName),
		zap.String("method", "Withdraw"),
		zap.Int64("user_id", userID),
		zap.Int64("amount", amount),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("Withdraw failed",
				zap.String("service", serviceName),
				zap.String("method", "Withdraw"),
				zap.Int64("user_id", userID),
				zap.Int64("amount", amount),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Withdraw completed",
				zap.String("service", serviceName),
				zap.String("method", "Withdraw"),
				zap.Int64("user_id", userID),
				zap.Int64("transaction_id", txn.ID),
				zap.String("wallet_address", txn.WalletAddress),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Withdraw(ctx, userID, amount, walletAddress)
}

// SettleWithdrawal wraps the service method with logging
func (ls *logService) SettleWithdrawal(ctx context.Context, txID int64, confirmed bool, txHash string) (txn *reward.Transaction, err error) {
	start := time.Now()

	ls.logger.Info("SettleWithdrawal started",
		zap.String("service", serviceName),
		zap.String("method", "SettleWithdrawal"),
		zap.Int64("transaction_id", txID),
		zap.Bool("confirmed", confirmed),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("SettleWithdrawal failed",
				zap.String("service", serviceName),
				zap.String("method", "SettleWithdrawal"),
				zap.Int64("transaction_id", txID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("SettleWithdrawal completed",
				zap.String("service", serviceName),
				zap.String("method", "SettleWithdrawal"),
				zap.Int64("transaction_id", txID),
				zap.String("status", string(txn.Status)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.SettleWithdrawal(ctx, txID, confirmed, txHash)
}

// Airdrop wraps the service method with logging
func (ls *logService) Airdrop(ctx context.Context, userIDs []int64, amount int64, description string) (granted int, err error) {
	start := time.Now()

	ls.logger.Info("Airdrop started",
		zap.String("service", serviceName),
		zap.String("method", "Airdrop"),
		zap.Int("recipients", len(userIDs)),
		zap.Int64("amount", amount),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("Airdrop failed",
				zap.String("service", serviceName),
				zap.String("method", "Airdrop"),
				zap.Int("granted", granted),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Airdrop completed",
				zap.String("service", serviceName),
				zap.String("method", "Airdrop"),
				zap.Int("granted", granted),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Airdrop(ctx, userIDs, amount, description)
}

// Adjust wraps the service method with logging
func (ls *logService) Adjust(ctx context.Context, userID, amount int64, reason string) (txn *reward.Transaction, err error) {
	start := time.Now()

	ls.logger.Info("Adjust started",
		zap.String("service", serviceName),
		zap.String("method", "Adjust"),
		zap.Int64("user_id", userID),
		zap.Int64("amount", amount),
		zap.String("reason", reason),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("Adjust failed",
				zap.String("service", serviceName),
				zap.String("method", "Adjust"),
				zap.Int64("user_id", userID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Adjust completed",
				zap.String("service", serviceName),
				zap.String("method", "Adjust"),
				zap.Int64("user_id", userID),
				zap.Int64("transaction_id", txn.ID),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Adjust(ctx, userID, amount, reason)
}
