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
		log.Println("creating transactions table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.TransactionDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &ledgerstore.TransactionDao{}, "user_id", "type", "status")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping transactions table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.TransactionDao{})
	})
}
