// Package service implements user registration and profile management.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lastforend/airdrop-ledger/internal/metrics"
	apperrors "github.com/lastforend/airdrop-ledger/pkg/app/errors"
	"github.com/lastforend/airdrop-ledger/pkg/ledgerstore"
	"github.com/lastforend/airdrop-ledger/pkg/pgutil"
	"github.com/lastforend/airdrop-ledger/pkg/reward"
	"github.com/lastforend/airdrop-ledger/pkg/user"
	"github.com/lastforend/airdrop-ledger/pkg/wallet"
)

const (
	// referralCodeLength is the length of generated referral codes
	referralCodeLength = 8

	// referralCodeCharset omits easily confused characters (0/O, 1/I)
	referralCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// maxCreateAttempts bounds retries on referral code or API key collisions
	maxCreateAttempts = 5
)

// Store is the narrow data-access interface for the registry service.
type Store interface {
	GetUser(ctx context.Context, opts ...ledgerstore.QueryOption) (*user.User, error)
	CreateUser(ctx context.Context, u *user.User) error
	UpdateWalletAddress(ctx context.Context, userID int64, address string) error
	SetVerified(ctx context.Context, userID int64, verified bool) error
}

// Ledger is the crediting interface the registry calls after a
// successful registration.
type Ledger interface {
	GrantWelcomeBonus(ctx context.Context, userID int64) (*reward.Transaction, error)
	GrantReferralBonus(ctx context.Context, inviterID, invitedID int64) (*reward.Transaction, error)
}

// Service defines the interface for the registration business logic
type Service interface {
	Register(ctx context.Context, req *user.RegisterRequest) (*user.RegisterResponse, error)
	FindByID(ctx context.Context, userID int64) (*user.User, error)
	FindByTelegramID(ctx context.Context, telegramID int64) (*user.User, error)
	FindByReferralCode(ctx context.Context, code string) (*user.User, error)
	FindByAPIKey(ctx context.Context, apiKey string) (*user.User, error)
	LinkWallet(ctx context.Context, userID int64, address string) (*user.User, error)
	SetVerified(ctx context.Context, userID int64, verified bool) (*user.User, error)
}

type registryService struct {
	store  Store
	ledger Ledger
	logger *zap.Logger
}

// NewService creates a new registry service
func NewService(store Store, ledger Ledger, logger *zap.Logger) Service {
	return &registryService{
		store:  store,
		ledger: ledger,
		logger: logger,
	}
}

// Register creates a user for the Telegram identity, or returns the
// existing account unchanged. The registration process:
//  1. Returns the existing account if the Telegram ID is already known
//  2. Resolves the referral code; unknown and self-referral codes are
//     silently ignored
//  3. Allocates a unique referral code and API key, retrying on collision
//  4. Credits the welcome bonus (when configured) and the inviter's
//     referral bonus
func (s *registryService) Register(ctx context.Context, req *user.RegisterRequest) (*user.RegisterResponse, error) {
	if req.TelegramID <= 0 {
		return nil, apperrors.BadRequestError(nil, "telegram_id is required")
	}

	existing, err := s.store.GetUser(ctx, ledgerstore.WithTelegramID(req.TelegramID))
	if err == nil {
		return registerResponse(existing, false), nil
	}
	if !errors.Is(err, ledgerstore.ErrUserNotFound) {
		return nil, apperrors.GeneralError(err)
	}

	inviter, err := s.resolveInviter(ctx, req)
	if err != nil {
		return nil, err
	}

	var referredByID *int64
	if inviter != nil {
		referredByID = &inviter.ID
	}

	created, err := s.createWithRetry(ctx, req, referredByID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		// lost the race to a concurrent registration of the same identity
		existing, err = s.store.GetUser(ctx, ledgerstore.WithTelegramID(req.TelegramID))
		if err != nil {
			return nil, apperrors.GeneralError(err)
		}
		return registerResponse(existing, false), nil
	}

	metrics.RegistrationsTotal.Inc()

	// crediting failures must not undo a committed registration
	if _, err := s.ledger.GrantWelcomeBonus(ctx, created.ID); err != nil && !apperrors.Is(err, apperrors.CategoryDataConflict) {
		s.logger.Error("welcome bonus grant failed",
			zap.Int64("user_id", created.ID),
			zap.Error(err),
		)
	}
	if inviter != nil {
		if _, err := s.ledger.GrantReferralBonus(ctx, inviter.ID, created.ID); err != nil && !apperrors.Is(err, apperrors.CategoryDataConflict) {
			s.logger.Error("referral bonus grant failed",
				zap.Int64("inviter_id", inviter.ID),
				zap.Int64("invited_id", created.ID),
				zap.Error(err),
			)
		}
	}

	return registerResponse(created, true), nil
}

// resolveInviter returns the owner of the supplied referral code, or nil
// when the code is absent, unknown, or the user's own.
func (s *registryService) resolveInviter(ctx context.Context, req *user.RegisterRequest) (*user.User, error) {
	if req.ReferralCode == "" {
		return nil, nil
	}

	inviter, err := s.store.GetUser(ctx, ledgerstore.WithReferralCode(req.ReferralCode))
	if err != nil {
		if errors.Is(err, ledgerstore.ErrUserNotFound) {
			s.logger.Debug("unknown referral code ignored", zap.String("code", req.ReferralCode))
			return nil, nil
		}
		return nil, apperrors.GeneralError(err)
	}
	if inviter.TelegramID == req.TelegramID {
		s.logger.Debug("self-referral ignored", zap.Int64("telegram_id", req.TelegramID))
		return nil, nil
	}
	return inviter, nil
}

// createWithRetry inserts the new user, regenerating credentials on
// collision. A nil user with nil error means a concurrent registration
// of the same Telegram ID won.
func (s *registryService) createWithRetry(ctx context.Context, req *user.RegisterRequest, referredByID *int64) (*user.User, error) {
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, apperrors.GeneralError(err)
		}

		u := user.New(req.TelegramID, req.Username, code, uuid.NewString(), referredByID)
		err = s.store.CreateUser(ctx, u)
		if err == nil {
			return u, nil
		}
		if !pgutil.IsIntegrityViolation(err) {
			return nil, apperrors.GeneralError(err)
		}

		// the violated constraint is either the telegram identity or a
		// generated credential; a lookup distinguishes the two
		if _, lookupErr := s.store.GetUser(ctx, ledgerstore.WithTelegramID(req.TelegramID)); lookupErr == nil {
			return nil, nil
		}
		s.logger.Debug("credential collision, regenerating",
			zap.Int64("telegram_id", req.TelegramID),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, apperrors.GeneralError(fmt.Errorf("failed to allocate unique credentials after %d attempts", maxCreateAttempts))
}

// FindByID returns the user with the given internal id.
func (s *registryService) FindByID(ctx context.Context, userID int64) (*user.User, error) {
	return s.lookup(ctx, ledgerstore.WithID(userID))
}

// FindByTelegramID returns the user registered for the Telegram identity.
func (s *registryService) FindByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	return s.lookup(ctx, ledgerstore.WithTelegramID(telegramID))
}

// FindByReferralCode returns the owner of the referral code.
func (s *registryService) FindByReferralCode(ctx context.Context, code string) (*user.User, error) {
	return s.lookup(ctx, ledgerstore.WithReferralCode(code))
}

func (s *registryService) lookup(ctx context.Context, opt ledgerstore.QueryOption) (*user.User, error) {
	u, err := s.store.GetUser(ctx, opt)
	if err != nil {
		if errors.Is(err, ledgerstore.ErrUserNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "user not found")
		}
		return nil, apperrors.GeneralError(err)
	}
	return u, nil
}

// FindByAPIKey resolves an API key to its owner. It backs the API key
// authentication middleware.
func (s *registryService) FindByAPIKey(ctx context.Context, apiKey string) (*user.User, error) {
	u, err := s.store.GetUser(ctx, ledgerstore.WithAPIKey(apiKey))
	if err != nil {
		if errors.Is(err, ledgerstore.ErrUserNotFound) {
			return nil, apperrors.UnAuthorizedError(err, "invalid API key")
		}
		return nil, apperrors.GeneralError(err)
	}
	return u, nil
}

// LinkWallet stores the withdrawal address on the user's profile.
func (s *registryService) LinkWallet(ctx context.Context, userID int64, address string) (*user.User, error) {
	if err := wallet.ValidateAddress(address); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid wallet address")
	}

	if err := s.store.UpdateWalletAddress(ctx, userID, wallet.NormalizeAddress(address)); err != nil {
		if errors.Is(err, ledgerstore.ErrUserNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "user not found")
		}
		return nil, apperrors.GeneralError(err)
	}

	u, err := s.store.GetUser(ctx, ledgerstore.WithID(userID))
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}
	return u, nil
}

// SetVerified records the outcome of an external verification check on
// the user's profile. The ledger does not verify anything itself; it
// trusts the operator's signal.
func (s *registryService) SetVerified(ctx context.Context, userID int64, verified bool) (*user.User, error) {
	if err := s.store.SetVerified(ctx, userID, verified); err != nil {
		if errors.Is(err, ledgerstore.ErrUserNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "user not found")
		}
		return nil, apperrors.GeneralError(err)
	}

	u, err := s.store.GetUser(ctx, ledgerstore.WithID(userID))
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}
	return u, nil
}

func registerResponse(u *user.User, created bool) *user.RegisterResponse {
	return &user.RegisterResponse{
		UserID:       u.ID,
		ReferralCode: u.ReferralCode,
		APIKey:       u.APIKey,
		Created:      created,
	}
}

func generateReferralCode() (string, error) {
	buf := make([]byte, referralCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate referral code: %w", err)
	}
	for i, b := range buf {
		buf[i] = referralCodeCharset[int(b)%len(referralCodeCharset)]
	}
	return string(buf), nil
}
