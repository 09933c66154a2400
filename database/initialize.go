package database

import (
	"fmt"

	"nika.id/configs/configslog"
	"nika.id/database/migrations"
	"nika.id/database/seeders"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

// Initialize runs migrations and/or seeders in one transaction.
func Initialize(db *gorm.DB, migrate, seed bool, opts SeedOptions) error {
	if !migrate && !seed {
		configslog.SLog.Info("Neither migrate nor seed requested, nothing to do")
		return nil
	}
	configslog.SLog.Info("Database initialisation starting...")
	err := db.Transaction(func(tx *gorm.DB) error {
		if migrate {
			if err := RunMigrationsInOrder(tx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		if seed {
			if err := CheckAndRunSeeders(tx, opts); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		configslog.Log.Error("Database initialisation rolled back", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Database initialisation finished")
	return nil
}

func RunMigrationsInOrder(db *gorm.DB) error {
	for _, step := range migrations.Ordered() {
		configslog.SLog.Infof(" -> migrating %s", step.Name)
		if err := step.Run(db); err != nil {
			configslog.Log.Error("Migration step failed", zap.String("step", step.Name), zap.Error(err))
			return err
		}
	}
	configslog.SLog.Info("All migrations applied")
	return nil
}

func CheckAndRunSeeders(db *gorm.DB, opts SeedOptions) error {
	if err := seeders.SeedAdminUser(db, opts.AdminEmail, opts.AdminPassword); err != nil {
		return err
	}
	if err := seeders.SeedTemplates(db); err != nil {
		return err
	}
	configslog.SLog.Info("All seeders ran")
	return nil
}
