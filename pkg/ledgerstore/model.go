package ledgerstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/lastforend/airdrop-ledger/pkg/reward"
	"github.com/lastforend/airdrop-ledger/pkg/user"
)

// UserDao is a data access object that maps directly to the 'users' table in PostgreSQL.
type UserDao struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	ID            int64     `bun:"id,pk,autoincrement"`
	TelegramID    int64     `bun:"telegram_id,unique,notnull"`
	Username      *string   `bun:"username,type:varchar(255)"`
	ReferralCode  string    `bun:"referral_code,unique,notnull,type:varchar(16)"`
	ReferredByID  *int64    `bun:"referred_by_id"`
	WalletAddress *string   `bun:"wallet_address,type:varchar(64)"`
	Balance       int64     `bun:"balance,notnull,default:0"`
	IsVerified    bool      `bun:"is_verified,notnull,default:false"`
	APIKey        string    `bun:"api_key,unique,notnull,type:varchar(64)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// TaskDao maps to the 'tasks' table. Rows are never deleted, only
// deactivated, so completions and transactions keep valid references.
type TaskDao struct {
	bun.BaseModel  `bun:"table:tasks,alias:t"`
	ID             int64     `bun:"id,pk,autoincrement"`
	Name           string    `bun:"name,unique,notnull,type:varchar(255)"`
	Description    string    `bun:"description,notnull,type:text"`
	Reward         int64     `bun:"reward,notnull"`
	Category       string    `bun:"category,notnull,type:varchar(32)"`
	IsActive       bool      `bun:"is_active,notnull,default:true"`
	MaxCompletions *int      `bun:"max_completions"`
	CooldownHours  *int      `bun:"cooldown_hours"`
	CreatedAt      time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// CompletionDao maps to the 'completions' table. Seq is the 1-based
// completion ordinal per (user, task); the unique index over
// (user_id, task_id, seq) is created by the migrations and is the final
// arbiter of concurrent completion attempts.
type CompletionDao struct {
	bun.BaseModel `bun:"table:completions,alias:c"`
	ID            int64     `bun:"id,pk,autoincrement"`
	UserID        int64     `bun:"user_id,notnull"`
	TaskID        int64     `bun:"task_id,notnull"`
	Seq           int       `bun:"seq,notnull"`
	CompletedAt   time.Time `bun:"completed_at,nullzero,default:current_timestamp"`
}

// ReferralDao maps to the 'referrals' table. The unique constraint on
// invited_id guarantees a user can be referred at most once.
type ReferralDao struct {
	bun.BaseModel `bun:"table:referrals,alias:r"`
	ID            int64     `bun:"id,pk,autoincrement"`
	InviterID     int64     `bun:"inviter_id,notnull"`
	InvitedID     int64     `bun:"invited_id,unique,notnull"`
	Bonus         int64     `bun:"bonus,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// TransactionDao maps to the 'transactions' table. Rows are append-only;
// only status (and tx_hash on settlement) are ever updated.
type TransactionDao struct {
	bun.BaseModel `bun:"table:transactions,alias:tx"`
	ID            int64             `bun:"id,pk,autoincrement"`
	UserID        int64             `bun:"user_id,notnull"`
	Type          string            `bun:"type,notnull,type:varchar(32)"`
	Amount        int64             `bun:"amount,notnull"`
	Description   string            `bun:"description,notnull,type:text"`
	Status        string            `bun:"status,notnull,type:varchar(16)"`
	TaskID        *int64            `bun:"task_id"`
	ReferralID    *int64            `bun:"referral_id"`
	WalletAddress *string           `bun:"wallet_address,type:varchar(64)"`
	TxHash        *string           `bun:"tx_hash,type:varchar(128)"`
	Metadata      map[string]string `bun:"metadata,type:jsonb"`
	CreatedAt     time.Time         `bun:"created_at,nullzero,default:current_timestamp"`
}

// toUserDao converts a user.User to UserDao.
func toUserDao(usr *user.User) *UserDao {
	dao := &UserDao{
		ID:           usr.ID,
		TelegramID:   usr.TelegramID,
		ReferralCode: usr.ReferralCode,
		ReferredByID: usr.ReferredByID,
		Balance:      usr.Balance,
		IsVerified:   usr.IsVerified,
		APIKey:       usr.APIKey,
	}
	if usr.Username != "" {
		dao.Username = &usr.Username
	}
	if usr.WalletAddress != "" {
		dao.WalletAddress = &usr.WalletAddress
	}
	return dao
}

// toUser converts a UserDao to user.User.
func toUser(dao *UserDao) *user.User {
	usr := &user.User{
		ID:           dao.ID,
		TelegramID:   dao.TelegramID,
		ReferralCode: dao.ReferralCode,
		ReferredByID: dao.ReferredByID,
		Balance:      dao.Balance,
		IsVerified:   dao.IsVerified,
		APIKey:       dao.APIKey,
		CreatedAt:    dao.CreatedAt,
		UpdatedAt:    dao.UpdatedAt,
	}
	if dao.Username != nil {
		usr.Username = *dao.Username
	}
	if dao.WalletAddress != nil {
		usr.WalletAddress = *dao.WalletAddress
	}
	return usr
}

func toTaskDao(t *reward.Task) *TaskDao {
	return &TaskDao{
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

func toTask(dao *TaskDao) *reward.Task {
	return &reward.Task{
		ID:             dao.ID,
		Name:           dao.Name,
		Description:    dao.Description,
		Reward:         dao.Reward,
		Category:       reward.Category(dao.Category),
		IsActive:       dao.IsActive,
		MaxCompletions: dao.MaxCompletions,
		CooldownHours:  dao.CooldownHours,
		CreatedAt:      dao.CreatedAt,
	}
}

func toTransactionDao(t *reward.Transaction) *TransactionDao {
	dao := &TransactionDao{
		ID:          t.ID,
		UserID:      t.UserID,
		Type:        string(t.Type),
		Amount:      t.Amount,
		Description: t.Description,
		Status:      string(t.Status),
		TaskID:      t.TaskID,
		ReferralID:  t.ReferralID,
		Metadata:    t.Metadata,
	}
	if t.WalletAddress != "" {
		dao.WalletAddress = &t.WalletAddress
	}
	if t.TxHash != "" {
		dao.TxHash = &t.TxHash
	}
	return dao
}

func toTransaction(dao *TransactionDao) *reward.Transaction {
	t := &reward.Transaction{
		ID:          dao.ID,
		UserID:      dao.UserID,
		Type:        reward.Type(dao.Type),
		Amount:      dao.Amount,
		Description: dao.Description,
		Status:      reward.Status(dao.Status),
		TaskID:      dao.TaskID,
		ReferralID:  dao.ReferralID,
		Metadata:    dao.Metadata,
		CreatedAt:   dao.CreatedAt,
	}
	if dao.WalletAddress != nil {
		t.WalletAddress = *dao.WalletAddress
	}
	if dao.TxHash != nil {
		t.TxHash = *dao.TxHash
	}
	return t
}

func toReferral(dao *ReferralDao) *reward.Referral {
	return &reward.Referral{
		ID:        dao.ID,
		InviterID: dao.InviterID,
		InvitedID: dao.InvitedID,
		Bonus:     dao.Bonus,
		CreatedAt: dao.CreatedAt,
	}
}
