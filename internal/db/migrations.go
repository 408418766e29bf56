package db

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
)

func Migrations(gdb *gorm.DB) error {
	m := gormigrate.New(gdb, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20261001_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
					return err
				}
				return tx.AutoMigrate(&models.User{}, &models.Job{}, &models.Booking{}, &models.Payment{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("payments", "bookings", "jobs", "users")
			},
		},
		{
			ID: "20261002_add_awards",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Award{}, &models.Reward{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("rewards", "awards")
			},
		},
		{
			ID: "20261005_add_overall_status",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.OverallStatus{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("overall_statuses")
			},
		},
		{
			ID: "20261008_add_notifications_and_wallet",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Notification{}, &models.WalletTransaction{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("wallet_transactions", "notifications")
			},
		},
	})
	return m.Migrate()
}
