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
		log.Println("creating users table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.UserDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &ledgerstore.UserDao{}, "referred_by_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping users table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.UserDao{})
	})
}
