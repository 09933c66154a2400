package migrations

import (
	"nika.id/configs/configslog"
	"nika.id/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigratePaymentTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating transactions & webhook_events tables...")
	if err := db.AutoMigrate(&models.Transaction{}, &models.WebhookEvent{}); err != nil {
		configslog.Log.Error("Failed to migrate transactions & webhook_events tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Transactions & webhook_events tables migrated successfully")
	return nil
}
