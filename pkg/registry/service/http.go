package service

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/lastforend/airdrop-ledger/pkg/app/errors"
	apphttp "github.com/lastforend/airdrop-ledger/pkg/app/http"
	"github.com/lastforend/airdrop-ledger/pkg/auth"
	"github.com/lastforend/airdrop-ledger/pkg/user"
)

var validate = validator.New()

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

type linkWalletRequest struct {
	Address string `json:"address" validate:"required"`
}

type setVerifiedRequest struct {
	Verified bool `json:"verified"`
}

type profileResponse struct {
	UserID        int64  `json:"user_id"`
	TelegramID    int64  `json:"telegram_id"`
	Username      string `json:"username,omitzero"`
	ReferralCode  string `json:"referral_code"`
	WalletAddress string `json:"wallet_address,omitzero"`
	Balance       int64  `json:"balance"`
	IsVerified    bool   `json:"is_verified"`
}

// RegisterRoutes registers the public registration endpoint on the given
// chi router.
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/register", apphttp.HandleError(h.register))
}

// RegisterUserRoutes registers profile endpoints that require an
// authenticated user.
func RegisterUserRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/users/me", apphttp.HandleError(h.me))
	r.Put("/users/me/wallet", apphttp.HandleError(h.linkWallet))
}

// RegisterAdminRoutes registers the operator endpoints on the given chi router
func RegisterAdminRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Put("/users/{userID}/verified", apphttp.HandleError(h.setVerified))
}

// register handles HTTP requests
func (h *HTTP) register(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	var req user.RegisterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	if err := validate.Struct(&req); err != nil {
		return apperrors.BadRequestError(err, "invalid request")
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	apphttp.WriteJSON(w, status, resp)
	return nil
}

func (h *HTTP) me(w http.ResponseWriter, r *http.Request) error {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	apphttp.WriteJSON(w, http.StatusOK, toProfileResponse(u))
	return nil
}

func (h *HTTP) linkWallet(w http.ResponseWriter, r *http.Request) error {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	var req linkWalletRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	if err := validate.Struct(&req); err != nil {
		return apperrors.BadRequestError(err, "invalid request")
	}

	updated, err := h.service.LinkWallet(r.Context(), u.ID, req.Address)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, toProfileResponse(updated))
	return nil
}

func (h *HTTP) setVerified(w http.ResponseWriter, r *http.Request) error {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid user id")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	var req setVerifiedRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}

	updated, err := h.service.SetVerified(r.Context(), userID, req.Verified)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, toProfileResponse(updated))
	return nil
}

func toProfileResponse(u *user.User) profileResponse {
	return profileResponse{
		UserID:        u.ID,
		TelegramID:    u.TelegramID,
		Username:      u.Username,
		ReferralCode:  u.ReferralCode,
		WalletAddress: u.WalletAddress,
		Balance:       u.Balance,
		IsVerified:    u.IsVerified,
	}
}
