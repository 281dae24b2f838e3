package ledgerdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/lastforend/airdrop-ledger/pkg/ledgerstore"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("seeding tasks table...")

		seeds := []ledgerstore.TaskDao{
			{Name: "Join Telegram Channel", Description: "Join our official Telegram channel", Reward: 50, Category: "social", IsActive: true},
			{Name: "Follow Twitter", Description: "Follow our Twitter account", Reward: 30, Category: "social", IsActive: true},
			{Name: "Retweet Post", Description: "Retweet our latest post", Reward: 20, Category: "social", IsActive: true},
			{Name: "Invite 1 Friend", Description: "Invite one friend to join", Reward: 25, Category: "referral", IsActive: true},
			{Name: "Invite 5 Friends", Description: "Invite five friends to join", Reward: 150, Category: "referral", IsActive: true},
			{Name: "Join Announcement Channel", Description: "Join our announcement channel", Reward: 40, Category: "social", IsActive: true},
		}

		// ON CONFLICT keeps re-runs idempotent
		for i := range seeds {
			_, err := db.NewInsert().
				Model(&seeds[i]).
				On("CONFLICT (name) DO NOTHING").
				Exec(ctx)
			if err != nil {
				return err
			}
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("removing seed data from tasks table...")
		_, err := db.NewDelete().
			Model((*ledgerstore.TaskDao)(nil)).
			Where("name IN (?)", bun.In([]string{
				"Join Telegram Channel",
				"Follow Twitter",
				"Retweet Post",
				"Invite 1 Friend",
				"Invite 5 Friends",
				"Join Announcement Channel",
			})).
			Exec(ctx)
		return err
	})
}
