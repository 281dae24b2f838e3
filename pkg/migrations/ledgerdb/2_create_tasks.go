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
		log.Println("creating tasks table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.TaskDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &ledgerstore.TaskDao{}, "is_active")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping tasks table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.TaskDao{})
	})
}
