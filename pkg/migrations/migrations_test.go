package migrations

import (
	"context"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/lastforend/airdrop-ledger/pkg/ledgerstore"
	"github.com/lastforend/airdrop-ledger/pkg/migrations/ledgerdb"
	"github.com/lastforend/airdrop-ledger/pkg/pgutil"
)

func TestLedgerDBMigrations_Apply(t *testing.T) {
	pgutil.RequireDockerAccess(t)
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, ledgerdb.Migrations)

	err := migrator.Init(ctx)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected migrations to run, but none were applied")
	}

	expectedTables := []string{
		"users",
		"tasks",
		"completions",
		"referrals",
		"transactions",
		"bun_migrations",
	}
	for _, table := range expectedTables {
		pgutil.AssertTableExists(t, db, table)
	}

	// The completions index is the arbiter of concurrent task completion
	pgutil.AssertIndexExists(t, db, "idx_completions_user_id_task_id_seq")
	pgutil.AssertIndexExists(t, db, "idx_users_referred_by_id")
	pgutil.AssertIndexExists(t, db, "idx_referrals_inviter_id")
	pgutil.AssertIndexExists(t, db, "idx_transactions_user_id")
}

func TestLedgerDBMigrations_Idempotency(t *testing.T) {
	pgutil.RequireDockerAccess(t)
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, ledgerdb.Migrations)

	err := migrator.Init(ctx)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	_, err = migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("First Migrate() failed: %v", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Second Migrate() failed: %v", err)
	}
	if !group.IsZero() {
		t.Error("Expected no new migrations on second run")
	}

	pgutil.AssertTableExists(t, db, "users")
	pgutil.AssertTableExists(t, db, "transactions")
}

func TestLedgerDBMigrations_Rollback(t *testing.T) {
	pgutil.RequireDockerAccess(t)
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, ledgerdb.Migrations)

	err := migrator.Init(ctx)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	_, err = migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	pgutil.AssertTableExists(t, db, "users")
	pgutil.AssertTableExists(t, db, "transactions")

	// Migrate() applies everything in one group, so Rollback() undoes it all
	group, err := migrator.Rollback(ctx)
	if err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected rollback to process a migration")
	}

	pgutil.AssertTableNotExists(t, db, "transactions")
	pgutil.AssertTableNotExists(t, db, "referrals")
	pgutil.AssertTableNotExists(t, db, "completions")
	pgutil.AssertTableNotExists(t, db, "tasks")
	pgutil.AssertTableNotExists(t, db, "users")
}

func TestSeedTasks_Applied(t *testing.T) {
	pgutil.RequireDockerAccess(t)
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, ledgerdb.Migrations)

	err := migrator.Init(ctx)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	_, err = migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	pgutil.AssertRowCount(t, db, "tasks", 6)

	var rows []struct {
		Name   string `bun:"name"`
		Reward int64  `bun:"reward"`
	}
	err = db.NewSelect().
		TableExpr("tasks").
		Column("name", "reward").
		Order("reward DESC").
		Scan(ctx, &rows)
	if err != nil {
		t.Fatalf("Failed to query seeded tasks: %v", err)
	}

	if rows[0].Name != "Invite 5 Friends" || rows[0].Reward != 150 {
		t.Errorf("Expected Invite 5 Friends (150) as top reward, got %s (%d)", rows[0].Name, rows[0].Reward)
	}
	if rows[len(rows)-1].Name != "Retweet Post" || rows[len(rows)-1].Reward != 20 {
		t.Errorf("Expected Retweet Post (20) as lowest reward, got %s (%d)", rows[len(rows)-1].Name, rows[len(rows)-1].Reward)
	}
}

func TestSeedTasks_Idempotency(t *testing.T) {
	pgutil.RequireDockerAccess(t)
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, ledgerdb.Migrations)

	err := migrator.Init(ctx)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	_, err = migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("First Migrate() failed: %v", err)
	}

	pgutil.AssertRowCount(t, db, "tasks", 6)

	// An operator-created task must survive a re-run of the seed
	_, err = db.NewInsert().
		Model(&ledgerstore.TaskDao{
			Name:        "Join Discord",
			Description: "Join our Discord server",
			Reward:      35,
			Category:    "social",
			IsActive:    true,
		}).
		Exec(ctx)
	if err != nil {
		t.Fatalf("Failed to insert extra task: %v", err)
	}
	pgutil.AssertRowCount(t, db, "tasks", 7)

	_, err = migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Second Migrate() failed: %v", err)
	}

	pgutil.AssertRowCount(t, db, "tasks", 7)

	count, err := db.NewSelect().
		Model((*ledgerstore.TaskDao)(nil)).
		Where("name IN (?)", bun.In([]string{"Invite 1 Friend", "Invite 5 Friends"})).
		Count(ctx)
	if err != nil {
		t.Fatalf("Failed to query seed data: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 referral seed tasks after re-run, got %d", count)
	}
}
