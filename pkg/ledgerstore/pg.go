package ledgerstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/lastforend/airdrop-ledger/pkg/pgutil"
	"github.com/lastforend/airdrop-ledger/pkg/reward"
	"github.com/lastforend/airdrop-ledger/pkg/user"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the ledger store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

// ---------------------------------------------------------------------------
// Users

func (s *pgStore) CreateUser(ctx context.Context, usr *user.User) error {
	dao := toUserDao(usr)

	_, err := s.db.NewInsert().
		Model(dao).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	usr.ID = dao.ID
	usr.Balance = dao.Balance
	usr.CreatedAt = dao.CreatedAt
	usr.UpdatedAt = dao.UpdatedAt
	return nil
}

func (s *pgStore) GetUser(ctx context.Context, opts ...QueryOption) (*user.User, error) {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	dao := new(UserDao)
	query := s.db.NewSelect().Model(dao)

	if options.ID != nil {
		query = query.Where("id = ?", *options.ID)
	}
	if options.TelegramID != nil {
		query = query.Where("telegram_id = ?", *options.TelegramID)
	}
	if options.ReferralCode != nil {
		query = query.Where("referral_code = ?", *options.ReferralCode)
	}
	if options.APIKey != nil {
		query = query.Where("api_key = ?", *options.APIKey)
	}

	err := query.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUser(dao), nil
}

func (s *pgStore) UpdateWalletAddress(ctx context.Context, userID int64, address string) error {
	res, err := s.db.NewUpdate().
		Model((*UserDao)(nil)).
		Set("wallet_address = ?", address).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update wallet address: %w", err)
	}
	return requireAffected(res, ErrUserNotFound)
}

func (s *pgStore) SetVerified(ctx context.Context, userID int64, verified bool) error {
	res, err := s.db.NewUpdate().
		Model((*UserDao)(nil)).
		Set("is_verified = ?", verified).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update verification flag: %w", err)
	}
	return requireAffected(res, ErrUserNotFound)
}

// ---------------------------------------------------------------------------
// Tasks

func (s *pgStore) CreateTask(ctx context.Context, t *reward.Task) error {
	dao := toTaskDao(t)

	_, err := s.db.NewInsert().
		Model(dao).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	t.ID = dao.ID
	t.CreatedAt = dao.CreatedAt
	return nil
}

func (s *pgStore) GetTask(ctx context.Context, id int64) (*reward.Task, error) {
	dao := new(TaskDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return toTask(dao), nil
}

func (s *pgStore) TaskExistsByName(ctx context.Context, name string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*TaskDao)(nil)).
		Where("name = ?", name).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check task exists: %w", err)
	}
	return exists, nil
}

// taskProgressRow aggregates one user's completions for a single task.
type taskProgressRow struct {
	TaskID int64      `bun:"task_id"`
	Count  int        `bun:"count"`
	Last   *time.Time `bun:"last"`
}

func (s *pgStore) ListTasksForUser(ctx context.Context, userID int64) ([]*reward.TaskView, error) {
	var daos []TaskDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("is_active = TRUE").
		OrderExpr("created_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var rows []taskProgressRow
	err = s.db.NewSelect().
		Model((*CompletionDao)(nil)).
		ColumnExpr("task_id").
		ColumnExpr("COUNT(*) AS count").
		ColumnExpr("MAX(completed_at) AS last").
		Where("user_id = ?", userID).
		GroupExpr("task_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load task progress: %w", err)
	}

	progress := make(map[int64]taskProgressRow, len(rows))
	for _, row := range rows {
		progress[row.TaskID] = row
	}

	views := make([]*reward.TaskView, len(daos))
	for i := range daos {
		view := &reward.TaskView{Task: *toTask(&daos[i])}
		if row, ok := progress[view.ID]; ok {
			view.CompletedCount = row.Count
			view.LastCompletedAt = row.Last
		}
		views[i] = view
	}
	return views, nil
}

func (s *pgStore) DeactivateTask(ctx context.Context, id int64) error {
	res, err := s.db.NewUpdate().
		Model((*TaskDao)(nil)).
		Set("is_active = FALSE").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to deactivate task: %w", err)
	}
	return requireAffected(res, ErrTaskNotFound)
}

// ---------------------------------------------------------------------------
// Ledger. Every mutating operation below is a single database transaction.

// Grant inserts a transaction row and applies its amount to the user's
// cached balance as one atomic unit. For reward types with a uniqueness
// precondition (welcome bonus, or grants tied to a task/referral) an
// existing matching transaction turns the whole call into a no-op
// reporting ErrDuplicateReward.
func (s *pgStore) Grant(ctx context.Context, txn *reward.Transaction) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dup, err := s.grantedBefore(ctx, tx, txn)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicateReward
		}
		return s.insertAndApply(ctx, tx, txn)
	})
}

// grantedBefore re-checks the per-type uniqueness precondition inside the
// grant transaction.
func (s *pgStore) grantedBefore(ctx context.Context, tx bun.Tx, txn *reward.Transaction) (bool, error) {
	q := tx.NewSelect().
		Model((*TransactionDao)(nil)).
		Where("user_id = ?", txn.UserID).
		Where("type = ?", string(txn.Type))

	switch {
	case txn.Type == reward.TypeWelcomeBonus:
		// at most one welcome bonus per user
	case txn.TaskID != nil:
		q = q.Where("task_id = ?", *txn.TaskID)
	case txn.ReferralID != nil:
		q = q.Where("referral_id = ?", *txn.ReferralID)
	default:
		// airdrops and manual adjustments carry no uniqueness precondition
		return false, nil
	}

	exists, err := q.Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate grant: %w", err)
	}
	return exists, nil
}

// insertAndApply appends the transaction row and moves the cached balance
// by its amount. Callers must already hold a database transaction.
func (s *pgStore) insertAndApply(ctx context.Context, tx bun.Tx, txn *reward.Transaction) error {
	dao := toTransactionDao(txn)
	_, err := tx.NewInsert().
		Model(dao).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	if err := s.applyBalance(ctx, tx, txn.UserID, txn.Amount); err != nil {
		return err
	}

	txn.ID = dao.ID
	txn.CreatedAt = dao.CreatedAt
	return nil
}

func (s *pgStore) applyBalance(ctx context.Context, tx bun.Tx, userID, delta int64) error {
	res, err := tx.NewUpdate().
		Model((*UserDao)(nil)).
		Set("balance = balance + ?", delta).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return requireAffected(res, ErrUserNotFound)
}

// CompleteTask records a completion and credits the task reward in one
// transaction. The leading count/cooldown checks are an optimization; the
// unique index over (user_id, task_id, seq) decides races, so a concurrent
// duplicate surfaces as ErrAlreadyCompleted rather than a double credit.
func (s *pgStore) CompleteTask(ctx context.Context, userID int64, t *reward.Task, now time.Time) (*reward.Transaction, error) {
	var txn *reward.Transaction

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var count int
		var last *time.Time
		err := tx.NewSelect().
			Model((*CompletionDao)(nil)).
			ColumnExpr("COUNT(*)").
			ColumnExpr("MAX(completed_at)").
			Where("user_id = ? AND task_id = ?", userID, t.ID).
			Scan(ctx, &count, &last)
		if err != nil {
			return fmt.Errorf("failed to count completions: %w", err)
		}

		if count >= t.CompletionCap() {
			return ErrAlreadyCompleted
		}
		if cd := t.Cooldown(); cd > 0 && last != nil && now.Sub(*last) < cd {
			return ErrOnCooldown
		}

		comp := &CompletionDao{
			UserID:      userID,
			TaskID:      t.ID,
			Seq:         count + 1,
			CompletedAt: now,
		}
		if _, err := tx.NewInsert().Model(comp).Exec(ctx); err != nil {
			if pgutil.IsIntegrityViolation(err) {
				return ErrAlreadyCompleted
			}
			return fmt.Errorf("failed to insert completion: %w", err)
		}

		txn = reward.NewTaskReward(userID, t.Reward, t.Name, t.ID)
		return s.insertAndApply(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// CreateReferral inserts the inviter->invited edge and credits the bonus
// to the inviter in one transaction. The unique constraint on invited_id
// decides races between competing inviters.
func (s *pgStore) CreateReferral(ctx context.Context, inviterID, invitedID, bonus int64) (*reward.Transaction, error) {
	var txn *reward.Transaction

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		edge := &ReferralDao{
			InviterID: inviterID,
			InvitedID: invitedID,
			Bonus:     bonus,
		}
		if _, err := tx.NewInsert().Model(edge).Returning("*").Exec(ctx); err != nil {
			if pgutil.IsIntegrityViolation(err) {
				return ErrAlreadyReferred
			}
			return fmt.Errorf("failed to insert referral: %w", err)
		}

		txn = reward.NewReferralBonus(inviterID, bonus)
		txn.ReferralID = &edge.ID
		return s.insertAndApply(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Withdraw decrements the balance only when it covers the amount, then
// records a pending withdrawal. The conditional UPDATE keeps the guard
// race-free: a concurrent withdrawal that would overdraw affects zero rows.
func (s *pgStore) Withdraw(ctx context.Context, userID, amount int64, walletAddress string) (*reward.Transaction, error) {
	var txn *reward.Transaction

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*UserDao)(nil)).
			Set("balance = balance - ?", amount).
			Set("updated_at = NOW()").
			Where("id = ? AND balance >= ?", userID, amount).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to debit balance: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			exists, err := tx.NewSelect().
				Model((*UserDao)(nil)).
				Where("id = ?", userID).
				Exists(ctx)
			if err != nil {
				return fmt.Errorf("failed to check user exists: %w", err)
			}
			if !exists {
				return ErrUserNotFound
			}
			return ErrInsufficientBalance
		}

		dao := toTransactionDao(reward.NewWithdrawal(userID, amount, walletAddress))
		if _, err := tx.NewInsert().Model(dao).Returning("*").Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert withdrawal: %w", err)
		}
		txn = toTransaction(dao)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// SettleWithdrawal moves a pending withdrawal to completed or failed.
// Failure refunds the user through a compensating adjustment in the same
// transaction, so the balance always equals the sum of transaction amounts.
func (s *pgStore) SettleWithdrawal(ctx context.Context, txID int64, confirmed bool, txHash string) (*reward.Transaction, error) {
	var txn *reward.Transaction

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dao := new(TransactionDao)
		err := tx.NewSelect().
			Model(dao).
			Where("id = ?", txID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTransactionNotFound
			}
			return fmt.Errorf("failed to load transaction: %w", err)
		}
		if dao.Type != string(reward.TypeWithdrawal) || dao.Status != string(reward.StatusPending) {
			return ErrInvalidStatusTransition
		}

		newStatus := reward.StatusCompleted
		if !confirmed {
			newStatus = reward.StatusFailed
		}

		q := tx.NewUpdate().
			Model((*TransactionDao)(nil)).
			Set("status = ?", string(newStatus)).
			Where("id = ?", txID)
		if txHash != "" {
			q = q.Set("tx_hash = ?", txHash)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to update transaction status: %w", err)
		}

		if !confirmed {
			refund := &reward.Transaction{
				UserID:      dao.UserID,
				Type:        reward.TypeManualAdjustment,
				Amount:      -dao.Amount,
				Description: "Refund for failed withdrawal",
				Status:      reward.StatusCompleted,
			}
			if err := s.insertAndApply(ctx, tx, refund); err != nil {
				return err
			}
		}

		dao.Status = string(newStatus)
		if txHash != "" {
			dao.TxHash = &txHash
		}
		txn = toTransaction(dao)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// ---------------------------------------------------------------------------
// Reporting

func (s *pgStore) Balance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := s.db.NewSelect().
		Model((*UserDao)(nil)).
		Column("balance").
		Where("id = ?", userID).
		Scan(ctx, &balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (s *pgStore) Transactions(ctx context.Context, userID int64, limit int, beforeID int64) ([]*reward.Transaction, error) {
	var daos []TransactionDao
	q := s.db.NewSelect().
		Model(&daos).
		Where("user_id = ?", userID).
		OrderExpr("id DESC")
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txns := make([]*reward.Transaction, len(daos))
	for i := range daos {
		txns[i] = toTransaction(&daos[i])
	}
	return txns, nil
}

func (s *pgStore) ReferralStats(ctx context.Context, userID int64) (*reward.ReferralStats, error) {
	stats := new(reward.ReferralStats)
	err := s.db.NewSelect().
		Model((*ReferralDao)(nil)).
		ColumnExpr("COUNT(*)").
		ColumnExpr("COALESCE(SUM(bonus), 0)").
		Where("inviter_id = ?", userID).
		Scan(ctx, &stats.TotalReferrals, &stats.TotalEarned)
	if err != nil {
		return nil, fmt.Errorf("failed to get referral stats: %w", err)
	}
	return stats, nil
}

type leaderboardRow struct {
	UserID        int64   `bun:"user_id"`
	Username      *string `bun:"username"`
	TelegramID    int64   `bun:"telegram_id"`
	ReferralCount int64   `bun:"referral_count"`
	Balance       int64   `bun:"balance"`
}

func (s *pgStore) Leaderboard(ctx context.Context, limit int) ([]*reward.LeaderboardEntry, error) {
	var rows []leaderboardRow
	err := s.db.NewSelect().
		TableExpr("users AS u").
		ColumnExpr("u.id AS user_id").
		ColumnExpr("u.username AS username").
		ColumnExpr("u.telegram_id AS telegram_id").
		ColumnExpr("COUNT(r.id) AS referral_count").
		ColumnExpr("u.balance AS balance").
		Join("LEFT JOIN referrals AS r ON r.inviter_id = u.id").
		GroupExpr("u.id").
		OrderExpr("referral_count DESC, u.balance DESC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := make([]*reward.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entry := &reward.LeaderboardEntry{
			UserID:        row.UserID,
			TelegramID:    row.TelegramID,
			ReferralCount: row.ReferralCount,
			Balance:       row.Balance,
		}
		if row.Username != nil {
			entry.Username = *row.Username
		}
		entries[i] = entry
	}
	return entries, nil
}

// ReconcileBalances reports every user whose cached balance deviates from
// the sum of their transaction amounts. An empty result means the ledger
// invariant holds everywhere.
func (s *pgStore) ReconcileBalances(ctx context.Context) ([]*reward.BalanceDrift, error) {
	type driftRow struct {
		UserID   int64 `bun:"user_id"`
		Cached   int64 `bun:"cached"`
		Computed int64 `bun:"computed"`
	}

	var rows []driftRow
	err := s.db.NewSelect().
		TableExpr("users AS u").
		ColumnExpr("u.id AS user_id").
		ColumnExpr("u.balance AS cached").
		ColumnExpr("COALESCE(SUM(t.amount), 0) AS computed").
		Join("LEFT JOIN transactions AS t ON t.user_id = u.id").
		GroupExpr("u.id").
		Having("u.balance <> COALESCE(SUM(t.amount), 0)").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile balances: %w", err)
	}

	drifts := make([]*reward.BalanceDrift, len(rows))
	for i, row := range rows {
		drifts[i] = &reward.BalanceDrift{
			UserID:   row.UserID,
			Cached:   row.Cached,
			Computed: row.Computed,
		}
	}
	return drifts, nil
}

func requireAffected(res sql.Result, missing error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return missing
	}
	return nil
}
