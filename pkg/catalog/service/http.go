package service

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/lastforend/airdrop-ledger/pkg/app/errors"
	apphttp "github.com/lastforend/airdrop-ledger/pkg/app/http"
	"github.com/lastforend/airdrop-ledger/pkg/auth"
	"github.com/lastforend/airdrop-ledger/pkg/reward"
)

var validate = validator.New()

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

type createTaskRequest struct {
	Name           string `json:"name" validate:"required"`
	Description    string `json:"description,omitzero"`
	Reward         int64  `json:"reward" validate:"required,gt=0"`
	Category       string `json:"category" validate:"required"`
	MaxCompletions *int   `json:"max_completions,omitzero"`
	CooldownHours  *int   `json:"cooldown_hours,omitzero"`
}

type taskResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Reward         int64  `json:"reward"`
	Category       string `json:"category"`
	IsActive       bool   `json:"is_active"`
	MaxCompletions *int   `json:"max_completions,omitzero"`
	CooldownHours  *int   `json:"cooldown_hours,omitzero"`
}

type taskViewResponse struct {
	taskResponse
	CompletedCount  int        `json:"completed_count"`
	Completed       bool       `json:"completed"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitzero"`
}

// RegisterRoutes registers the user-facing catalog endpoints on the given
// chi router. Requests must already carry an authenticated user.
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/tasks", apphttp.HandleError(h.listTasks))
	r.Get("/tasks/{taskID}", apphttp.HandleError(h.getTask))
}

// RegisterAdminRoutes registers catalog management endpoints
func RegisterAdminRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/tasks", apphttp.HandleError(h.createTask))
	r.Delete("/tasks/{taskID}", apphttp.HandleError(h.deactivateTask))
}

func (h *HTTP) listTasks(w http.ResponseWriter, r *http.Request) error {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	views, err := h.service.ListAvailable(r.Context(), u.ID)
	if err != nil {
		return err
	}

	resp := make([]taskViewResponse, len(views))
	for i, v := range views {
		resp[i] = taskViewResponse{
			taskResponse:    toTaskResponse(&v.Task),
			CompletedCount:  v.CompletedCount,
			Completed:       v.Completed(),
			LastCompletedAt: v.LastCompletedAt,
		}
	}
	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) getTask(w http.ResponseWriter, r *http.Request) error {
	taskID, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid task id")
	}

	t, err := h.service.Get(r.Context(), taskID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, toTaskResponse(t))
	return nil
}

func (h *HTTP) createTask(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	var req createTaskRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	if err := validate.Struct(&req); err != nil {
		return apperrors.BadRequestError(err, "invalid request")
	}

	t, err := h.service.Create(r.Context(), &reward.Task{
		Name:           req.Name,
		Description:    req.Description,
		Reward:         req.Reward,
		Category:       reward.Category(req.Category),
		MaxCompletions: req.MaxCompletions,
		CooldownHours:  req.CooldownHours,
	})
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, toTaskResponse(t))
	return nil
}

func (h *HTTP) deactivateTask(w http.ResponseWriter, r *http.Request) error {
	taskID, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid task id")
	}

	if err := h.service.Deactivate(r.Context(), taskID); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func toTaskResponse(t *reward.Task) taskResponse {
	return taskResponse{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		Reward:         t.Reward,
		Category:       string(t.Category),
		IsActive:       t.IsActive,
		MaxCompletions: t.MaxCompletions,
		CooldownHours:  t.CooldownHours,
	}
}
