package user

import "time"

// User represents the domain model for a registered participant.
// Balance is a cached sum of the user's transaction amounts; the ledger
// store is the only writer of it.
type User struct {
	ID            int64
	TelegramID    int64
	Username      string
	ReferralCode  string
	ReferredByID  *int64
	WalletAddress string
	Balance       int64
	IsVerified    bool
	APIKey        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New creates a User ready for insertion. Referral code and API key must
// already be allocated by the registry.
func New(telegramID int64, username, referralCode, apiKey string, referredByID *int64) *User {
	return &User{
		TelegramID:   telegramID,
		Username:     username,
		ReferralCode: referralCode,
		APIKey:       apiKey,
		ReferredByID: referredByID,
	}
}

// RegisterRequest represents a registration request from the chat layer.
type RegisterRequest struct {
	TelegramID   int64  `json:"telegram_id" validate:"required,gt=0"`
	Username     string `json:"username,omitzero"`
	ReferralCode string `json:"referral_code,omitzero"`
}

// RegisterResponse represents a registration response.
type RegisterResponse struct {
	UserID       int64  `json:"user_id"`
	ReferralCode string `json:"referral_code"`
	APIKey       string `json:"api_key"`
	Created      bool   `json:"created"`
}
