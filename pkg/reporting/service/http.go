package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/lastforend/airdrop-ledger/pkg/app/errors"
	apphttp "github.com/lastforend/airdrop-ledger/pkg/app/http"
	"github.com/lastforend/airdrop-ledger/pkg/auth"
	"github.com/lastforend/airdrop-ledger/pkg/reward"
	"github.com/lastforend/airdrop-ledger/pkg/wallet"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service   Service
	converter *wallet.Converter
	logger    *zap.Logger
}

type balanceResponse struct {
	Balance     int64  `json:"balance"`
	TokenAmount string `json:"token_amount"`
	TokenSymbol string `json:"token_symbol"`
}

type transactionResponse struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	TxHash      string    `json:"tx_hash,omitzero"`
	CreatedAt   time.Time `json:"created_at"`
}

type historyResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	NextBefore   int64                 `json:"next_before,omitzero"`
}

type reconcileResponse struct {
	DriftCount int                    `json:"drift_count"`
	Drifts     []*reward.BalanceDrift `json:"drifts"`
}

// RegisterRoutes registers the read-model endpoints on the given chi router.
// Requests must already carry an authenticated user.
func RegisterRoutes(r chi.Router, service Service, converter *wallet.Converter, logger *zap.Logger) {
	h := &HTTP{
		service:   service,
		converter: converter,
		logger:    logger,
	}

	r.Get("/balance", apphttp.HandleError(h.balance))
	r.Get("/transactions", apphttp.HandleError(h.transactions))
	r.Get("/referrals/stats", apphttp.HandleError(h.referralStats))
	r.Get("/leaderboard", apphttp.HandleError(h.leaderboard))
}

// RegisterAdminRoutes registers the operator endpoints on the given chi router
func RegisterAdminRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/reconciliation", apphttp.HandleError(h.reconcile))
}

func (h *HTTP) balance(w http.ResponseWriter, r *http.Request) error {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	balance, err := h.service.Balance(r.Context(), u.ID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, balanceResponse{
		Balance:     balance,
		TokenAmount: h.converter.ToTokenUnits(balance),
		TokenSymbol: h.converter.Symbol(),
	})
	return nil
}

func (h *HTTP) transactions(w http.ResponseWriter, r *http.Request) error {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		return apperrors.BadRequestError(err, "invalid limit")
	}
	beforeID, err := queryInt(r, "before")
	if err != nil {
		return apperrors.BadRequestError(err, "invalid before cursor")
	}

	txns, err := h.service.TransactionHistory(r.Context(), u.ID, int(limit), beforeID)
	if err != nil {
		return err
	}

	resp := historyResponse{Transactions: make([]transactionResponse, 0, len(txns))}
	for _, txn := range txns {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(txn))
	}
	if len(txns) > 0 {
		resp.NextBefore = txns[len(txns)-1].ID
	}
	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) referralStats(w http.ResponseWriter, r *http.Request) error {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	stats, err := h.service.ReferralStats(r.Context(), u.ID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, stats)
	return nil
}

func (h *HTTP) leaderboard(w http.ResponseWriter, r *http.Request) error {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return apperrors.BadRequestError(err, "invalid limit")
	}

	entries, err := h.service.Leaderboard(r.Context(), int(limit))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, entries)
	return nil
}

func (h *HTTP) reconcile(w http.ResponseWriter, r *http.Request) error {
	drifts, err := h.service.Reconcile(r.Context())
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, reconcileResponse{
		DriftCount: len(drifts),
		Drifts:     drifts,
	})
	return nil
}

func toTransactionResponse(txn *reward.Transaction) transactionResponse {
	return transactionResponse{
		ID:          txn.ID,
		Type:        string(txn.Type),
		Amount:      txn.Amount,
		Description: txn.Description,
		Status:      string(txn.Status),
		TxHash:      txn.TxHash,
		CreatedAt:   txn.CreatedAt,
	}
}

// queryInt parses an optional integer query parameter, zero when absent.
func queryInt(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
