package ledgerdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/lastforend/airdrop-ledger/pkg/ledgerstore"
	mghelper "github.com/lastforend/airdrop-ledger/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating completions table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.CompletionDao{}); err != nil {
			return err
		}
		// The unique index arbitrates concurrent completions of one task.
		if err := mghelper.CreateModelUniqueIndex(ctx, db, &ledgerstore.CompletionDao{}, "user_id", "task_id", "seq"); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &ledgerstore.CompletionDao{}, "task_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping completions table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.CompletionDao{})
	})
}
