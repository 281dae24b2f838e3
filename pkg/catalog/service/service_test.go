package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/lastforend/airdrop-ledger/pkg/app/errors"
	"github.com/lastforend/airdrop-ledger/pkg/ledgerstore"
	"github.com/lastforend/airdrop-ledger/pkg/reward"
)

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates active task", func(t *testing.T) {
		store := &MockStore{
			CreateTaskFunc: func(ctx context.Context, task *reward.Task) error {
				task.ID = 1
				return nil
			},
		}

		task, err := NewService(store, zap.NewNop()).Create(ctx, &reward.Task{
			Name:     "Join Discord",
			Reward:   35,
			Category: reward.CategorySocial,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), task.ID)
		assert.True(t, task.IsActive)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		store := &MockStore{
			TaskExistsByNameFunc: func(ctx context.Context, name string) (bool, error) {
				return true, nil
			},
		}

		_, err := NewService(store, zap.NewNop()).Create(ctx, &reward.Task{
			Name:     "Join Discord",
			Reward:   35,
			Category: reward.CategorySocial,
		})
		assert.True(t, apperrors.Is(err, apperrors.CategoryDataConflict))
	})

	t.Run("validation", func(t *testing.T) {
		svc := NewService(&MockStore{}, zap.NewNop())
		zero := 0
		negative := -1

		cases := []struct {
			name string
			task reward.Task
		}{
			{"empty name", reward.Task{Reward: 10, Category: reward.CategorySocial}},
			{"zero reward", reward.Task{Name: "x", Reward: 0, Category: reward.CategorySocial}},
			{"bad category", reward.Task{Name: "x", Reward: 10, Category: "bogus"}},
			{"zero cap", reward.Task{Name: "x", Reward: 10, Category: reward.CategorySocial, MaxCompletions: &zero}},
			{"negative cooldown", reward.Task{Name: "x", Reward: 10, Category: reward.CategorySocial, CooldownHours: &negative}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Create(ctx, &tc.task)
				assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))
			})
		}
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	store := &MockStore{
		GetTaskFunc: func(ctx context.Context, id int64) (*reward.Task, error) {
			if id == 1 {
				return &reward.Task{ID: 1, Name: "Join Telegram Channel", Reward: 50, IsActive: true}, nil
			}
			return nil, ledgerstore.ErrTaskNotFound
		},
	}
	svc := NewService(store, zap.NewNop())

	task, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Join Telegram Channel", task.Name)

	_, err = svc.Get(ctx, 99)
	assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound))
}

func TestListAvailable(t *testing.T) {
	ctx := context.Background()

	store := &MockStore{
		ListTasksForUserFunc: func(ctx context.Context, userID int64) ([]*reward.TaskView, error) {
			return []*reward.TaskView{
				{Task: reward.Task{ID: 1, Name: "Join Telegram Channel", Reward: 50, IsActive: true}, CompletedCount: 1},
				{Task: reward.Task{ID: 2, Name: "Follow Twitter", Reward: 30, IsActive: true}},
			}, nil
		},
	}

	views, err := NewService(store, zap.NewNop()).ListAvailable(ctx, 7)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.True(t, views[0].Completed())
	assert.False(t, views[1].Completed())
}

func TestSeedDefaults(t *testing.T) {
	ctx := context.Background()

	existing := map[string]bool{"Join Telegram Channel": true}
	var createdNames []string
	store := &MockStore{
		TaskExistsByNameFunc: func(ctx context.Context, name string) (bool, error) {
			return existing[name], nil
		},
		CreateTaskFunc: func(ctx context.Context, task *reward.Task) error {
			createdNames = append(createdNames, task.Name)
			return nil
		},
	}

	err := NewService(store, zap.NewNop()).SeedDefaults(ctx)
	require.NoError(t, err)

	assert.Len(t, createdNames, len(defaultTasks)-1)
	assert.NotContains(t, createdNames, "Join Telegram Channel")
	assert.Contains(t, createdNames, "Invite 5 Friends")
}
