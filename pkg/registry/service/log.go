package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lastforend/airdrop-ledger/pkg/user"
)

const serviceName = "RegistryService"

// apiKeyDisplaySize is the number of leading characters kept when logging keys
const apiKeyDisplaySize = 8

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the registry Service.
// It logs method entry/exit, duration, errors, and redacted credentials.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// Register wraps the service method with logging
func (ls *logService) Register(ctx context.Context, req *user.RegisterRequest) (resp *user.RegisterResponse, err error) {
	start := time.Now()

	ls.logger.Info("Register started",
		zap.String("service", serviceName),
		zap.String("method", "Register"),
		zap.Int64("telegram_id", req.TelegramID),
		zap.Bool("has_referral_code", req.ReferralCode != ""),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("Register failed",
				zap.String("service", serviceName),
				zap.String("method", "Register"),
				zap.Int64("telegram_id", req.TelegramID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Register completed",
				zap.String("service", serviceName),
				zap.String("method", "Register"),
				zap.Int64("telegram_id", req.TelegramID),
				zap.Int64("user_id", resp.UserID),
				zap.Bool("created", resp.Created),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Register(ctx, req)
}

// FindByID wraps the service method with logging
func (ls *logService) FindByID(ctx context.Context, userID int64) (u *user.User, err error) {
	start := time.Now()

	defer func() {
		if err != nil {
			ls.logger.Debug("FindByID failed",
				zap.String("service", serviceName),
				zap.String("method", "FindByID"),
				zap.Int64("user_id", userID),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
		}
	}()

	return ls.svc.FindByID(ctx, userID)
}

// FindByTelegramID wraps the service method with logging
func (ls *logService) FindByTelegramID(ctx context.Context, telegramID int64) (u *user.User, err error) {
	start := time.Now()

	defer func() {
		if err != nil {
			ls.logger.Debug("FindByTelegramID failed",
				zap.String("service", serviceName),
				zap.String("method", "FindByTelegramID"),
				zap.Int64("telegram_id", telegramID),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
		}
	}()

	return ls.svc.FindByTelegramID(ctx, telegramID)
}

// FindByReferralCode wraps the service method with logging
func (ls *logService) FindByReferralCode(ctx context.Context, code string) (u *user.User, err error) {
	start := time.Now()

	defer func() {
		if err != nil {
			ls.logger.Debug("FindByReferralCode failed",
				zap.String("service", serviceName),
				zap.String("method", "FindByReferralCode"),
				zap.String("code", code),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
		}
	}()

	return ls.svc.FindByReferralCode(ctx, code)
}

// FindByAPIKey wraps the service method with logging
func (ls *logService) FindByAPIKey(ctx context.Context, apiKey string) (u *user.User, err error) {
	start := time.Now()

	defer func() {
		if err != nil {
			ls.logger.Debug("FindByAPIKey failed",
				zap.String("service", serviceName),
				zap.String("method", "FindByAPIKey"),
				zap.String("api_key", redactKey(apiKey)),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
		}
	}()

	return ls.svc.FindByAPIKey(ctx, apiKey)
}

// LinkWallet wraps the service method with logging
func (ls *logService) LinkWallet(ctx context.Context, userID int64, address string) (u *user.User, err error) {
	start := time.Now()

	ls.logger.Info("LinkWallet started",
		zap.String("service", serviceName),
		zap.String("method", "LinkWallet"),
		zap.Int64("user_id", userID),
		zap.String("address", address),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("LinkWallet failed",
				zap.String("service", serviceName),
				zap.String("method", "LinkWallet"),
				zap.Int64("user_id", userID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("LinkWallet completed",
				zap.String("service", serviceName),
				zap.String("method", "LinkWallet"),
				zap.Int64("user_id", userID),
				zap.String("address", u.WalletAddress),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.LinkWallet(ctx, userID, address)
}

// SetVerified wraps the service method with logging
func (ls *logService) SetVerified(ctx context.Context, userID int64, verified bool) (u *user.User, err error) {
	start := time.Now()

	ls.logger.Info("SetVerified started",
		zap.String("service", serviceName),
		zap.String("method", "SetVerified"),
		zap.Int64("user_id", userID),
		zap.Bool("verified", verified),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("SetVerified failed",
				zap.String("service", serviceName),
				zap.String("method", "SetVerified"),
				zap.Int64("user_id", userID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("SetVerified completed",
				zap.String("service", serviceName),
				zap.String("method", "SetVerified"),
				zap.Int64("user_id", userID),
				zap.Bool("verified", verified),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.SetVerified(ctx, userID, verified)
}

// redactKey keeps only a short prefix of a credential for logging
func redactKey(key string) string {
	if len(key) <= apiKeyDisplaySize {
		return "***"
	}
	return key[:apiKeyDisplaySize] + "..."
}
