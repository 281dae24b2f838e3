// Package service manages the task catalog: the definitions users can
// earn points from.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	apperrors "github.com/lastforend/airdrop-ledger/pkg/app/errors"
	"github.com/lastforend/airdrop-ledger/pkg/ledgerstore"
	"github.com/lastforend/airdrop-ledger/pkg/reward"
)

// defaultTasks are created on first start when the catalog is empty.
var defaultTasks = []reward.Task{
	{Name: "Join Telegram Channel", Description: "Join our official Telegram channel", Reward: 50, Category: reward.CategorySocial, IsActive: true},
	{Name: "Follow Twitter", Description: "Follow our Twitter account", Reward: 30, Category: reward.CategorySocial, IsActive: true},
	{Name: "Retweet Post", Description: "Retweet our latest post", Reward: 20, Category: reward.CategorySocial, IsActive: true},
	{Name: "Invite 1 Friend", Description: "Invite one friend to join", Reward: 25, Category: reward.CategoryReferral, IsActive: true},
	{Name: "Invite 5 Friends", Description: "Invite five friends to join", Reward: 150, Category: reward.CategoryReferral, IsActive: true},
	{Name: "Join Announcement Channel", Description: "Join our announcement channel", Reward: 40, Category: reward.CategorySocial, IsActive: true},
}

// Store is the narrow data-access interface for the catalog service.
type Store interface {
	CreateTask(ctx context.Context, t *reward.Task) error
	GetTask(ctx context.Context, id int64) (*reward.Task, error)
	TaskExistsByName(ctx context.Context, name string) (bool, error)
	ListTasksForUser(ctx context.Context, userID int64) ([]*reward.TaskView, error)
	DeactivateTask(ctx context.Context, id int64) error
}

// Service defines the interface for catalog management
type Service interface {
	Create(ctx context.Context, t *reward.Task) (*reward.Task, error)
	Get(ctx context.Context, id int64) (*reward.Task, error)
	ListAvailable(ctx context.Context, userID int64) ([]*reward.TaskView, error)
	Deactivate(ctx context.Context, id int64) error
	SeedDefaults(ctx context.Context) error
}

type catalogService struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new catalog service
func NewService(store Store, logger *zap.Logger) Service {
	return &catalogService{
		store:  store,
		logger: logger,
	}
}

// Create adds a task to the catalog. Task names are unique.
func (s *catalogService) Create(ctx context.Context, t *reward.Task) (*reward.Task, error) {
	if t.Name == "" {
		return nil, apperrors.BadRequestError(nil, "task name is required")
	}
	if t.Reward <= 0 {
		return nil, apperrors.BadRequestError(nil, "task reward must be positive")
	}
	if !t.Category.Valid() {
		return nil, apperrors.BadRequestError(nil, "unknown task category")
	}
	if t.MaxCompletions != nil && *t.MaxCompletions < 1 {
		return nil, apperrors.BadRequestError(nil, "max_completions must be at least 1")
	}
	if t.CooldownHours != nil && *t.CooldownHours < 0 {
		return nil, apperrors.BadRequestError(nil, "cooldown_hours must not be negative")
	}

	exists, err := s.store.TaskExistsByName(ctx, t.Name)
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}
	if exists {
		return nil, apperrors.ConflictError(nil, "task name already in use")
	}

	t.IsActive = true
	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, apperrors.GeneralError(err)
	}
	return t, nil
}

// Get returns a task by id, active or not.
func (s *catalogService) Get(ctx context.Context, id int64) (*reward.Task, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, ledgerstore.ErrTaskNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "task not found")
		}
		return nil, apperrors.GeneralError(err)
	}
	return t, nil
}

// ListAvailable returns the active tasks annotated with the user's
// completion progress.
func (s *catalogService) ListAvailable(ctx context.Context, userID int64) ([]*reward.TaskView, error) {
	views, err := s.store.ListTasksForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}
	return views, nil
}

// Deactivate hides a task from the catalog. Completions and transactions
// that reference it are kept.
func (s *catalogService) Deactivate(ctx context.Context, id int64) error {
	if err := s.store.DeactivateTask(ctx, id); err != nil {
		if errors.Is(err, ledgerstore.ErrTaskNotFound) {
			return apperrors.ResourceNotFoundError(err, "task not found")
		}
		return apperrors.GeneralError(err)
	}
	return nil
}

// SeedDefaults creates the default task set, skipping tasks that already
// exist. Safe to call on every start.
func (s *catalogService) SeedDefaults(ctx context.Context) error {
	for i := range defaultTasks {
		t := defaultTasks[i]

		exists, err := s.store.TaskExistsByName(ctx, t.Name)
		if err != nil {
			return apperrors.GeneralError(err)
		}
		if exists {
			continue
		}
		if err := s.store.CreateTask(ctx, &t); err != nil {
			return apperrors.GeneralError(err)
		}
		s.logger.Info("seeded default task",
			zap.String("name", t.Name),
			zap.Int64("reward", t.Reward),
		)
	}
	return nil
}
