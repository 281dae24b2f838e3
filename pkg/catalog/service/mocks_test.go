package service

import (
	"context"

	"github.com/lastforend/airdrop-ledger/pkg/ledgerstore"
	"github.com/lastforend/airdrop-ledger/pkg/reward"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	CreateTaskFunc       func(ctx context.Context, t *reward.Task) error
	GetTaskFunc          func(ctx context.Context, id int64) (*reward.Task, error)
	TaskExistsByNameFunc func(ctx context.Context, name string) (bool, error)
	ListTasksForUserFunc func(ctx context.Context, userID int64) ([]*reward.TaskView, error)
	DeactivateTaskFunc   func(ctx context.Context, id int64) error
}

func (m *MockStore) CreateTask(ctx context.Context, t *reward.Task) error {
	if m.CreateTaskFunc != nil {
		return m.CreateTaskFunc(ctx, t)
	}
	return nil
}

func (m *MockStore) GetTask(ctx context.Context, id int64) (*reward.Task, error) {
	if m.GetTaskFunc != nil {
		return m.GetTaskFunc(ctx, id)
	}
	return nil, ledgerstore.ErrTaskNotFound
}

func (m *MockStore) TaskExistsByName(ctx context.Context, name string) (bool, error) {
	if m.TaskExistsByNameFunc != nil {
		return m.TaskExistsByNameFunc(ctx, name)
	}
	return false, nil
}

func (m *MockStore) ListTasksForUser(ctx context.Context, userID int64) ([]*reward.TaskView, error) {
	if m.ListTasksForUserFunc != nil {
		return m.ListTasksForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockStore) DeactivateTask(ctx context.Context, id int64) error {
	if m.DeactivateTaskFunc != nil {
		return m.DeactivateTaskFunc(ctx, id)
	}
	return nil
}
