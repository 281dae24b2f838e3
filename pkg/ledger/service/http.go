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
	"github.com/lastforend/airdrop-ledger/pkg/reward"
	"github.com/lastforend/airdrop-ledger/pkg/wallet"
)

var validate = validator.New()

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service   Service
	converter *wallet.Converter
	logger    *zap.Logger
}

type withdrawRequest struct {
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	WalletAddress string `json:"wallet_address,omitzero"`
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type withdrawResponse struct {
	transactionResponse
	WalletAddress string `json:"wallet_address"`
	TokenAmount   string `json:"token_amount"`
	TokenSymbol   string `json:"token_symbol"`
}

type settleRequest struct {
	Confirmed bool   `json:"confirmed"`
	TxHash    string `json:"tx_hash,omitzero"`
}

type airdropRequest struct {
	UserIDs     []int64 `json:"user_ids" validate:"required,min=1"`
	Amount      int64   `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description,omitzero"`
}

type adjustRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Amount int64  `json:"amount" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// RegisterRoutes registers the user-facing ledger endpoints on the given
// chi router. Requests must already carry an authenticated user.
func RegisterRoutes(r chi.Router, service Service, converter *wallet.Converter, logger *zap.Logger) {
	h := &HTTP{
		service:   service,
		converter: converter,
		logger:    logger,
	}

	r.Post("/tasks/{taskID}/complete", apphttp.HandleError(h.completeTask))
	r.Post("/withdrawals", apphttp.HandleError(h.withdraw))
}

// RegisterAdminRoutes registers the operator endpoints on the given chi router
func RegisterAdminRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/withdrawals/{txID}/settle", apphttp.HandleError(h.settleWithdrawal))
	r.Post("/airdrop", apphttp.HandleError(h.airdrop))
	r.Post("/adjustments", apphttp.HandleError(h.adjust))
}

func (h *HTTP) completeTask(w http.ResponseWriter, r *http.Request) error {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	taskID, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid task id")
	}

	txn, err := h.service.CompleteTask(r.Context(), u.ID, taskID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, toTransactionResponse(txn))
	return nil
}

func (h *HTTP) withdraw(w http.ResponseWriter, r *http.Request) error {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	var req withdrawRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	txn, err := h.service.Withdraw(r.Context(), u.ID, req.Amount, req.WalletAddress)
	if err != nil {
		return err
	}

	resp := withdrawResponse{
		transactionResponse: toTransactionResponse(txn),
		WalletAddress:       txn.WalletAddress,
		TokenAmount:         h.converter.ToTokenUnits(req.Amount),
		TokenSymbol:         h.converter.Symbol(),
	}
	apphttp.WriteJSON(w, http.StatusCreated, resp)
	return nil
}

func (h *HTTP) settleWithdrawal(w http.ResponseWriter, r *http.Request) error {
	txID, err := strconv.ParseInt(chi.URLParam(r, "txID"), 10, 64)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid transaction id")
	}

	var req settleRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	txn, err := h.service.SettleWithdrawal(r.Context(), txID, req.Confirmed, req.TxHash)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, toTransactionResponse(txn))
	return nil
}

func (h *HTTP) airdrop(w http.ResponseWriter, r *http.Request) error {
	var req airdropRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	granted, err := h.service.Airdrop(r.Context(), req.UserIDs, req.Amount, req.Description)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, map[string]int{"granted": granted})
	return nil
}

func (h *HTTP) adjust(w http.ResponseWriter, r *http.Request) error {
	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	txn, err := h.service.Adjust(r.Context(), req.UserID, req.Amount, req.Reason)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, toTransactionResponse(txn))
	return nil
}

func toTransactionResponse(txn *reward.Transaction) transactionResponse {
	return transactionResponse{
		ID:          txn.ID,
		Type:        string(txn.Type),
		Amount:      txn.Amount,
		Description: txn.Description,
		Status:      string(txn.Status),
	}
}

// decodeJSON reads, parses and validates a JSON request body.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	if err := validate.Struct(dst); err != nil {
		return apperrors.BadRequestError(err, "invalid request")
	}
	return nil
}
