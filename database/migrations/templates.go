package migrations

import (
	"nika.id/configs/configslog"
	"nika.id/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateTemplatesTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating templates table...")
	if err := db.AutoMigrate(&models.Template{}); err != nil {
		configslog.Log.Error("Failed to migrate templates table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Templates table migrated successfully")
	return nil
}
