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
		log.Println("creating referrals table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.ReferralDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &ledgerstore.ReferralDao{}, "inviter_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping referrals table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.ReferralDao{})
	})
}
