package migrations

import (
	"nika.id/configs/configslog"
	"nika.id/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateInvitationsTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating invitations table...")
	if err := db.AutoMigrate(&models.Invitation{}); err != nil {
		configslog.Log.Error("Failed to migrate invitations table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Invitations table migrated successfully")
	return nil
}

// MigrateGuestTables creates the anonymous submission tables: rsvps and guest_messages.
func MigrateGuestTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating rsvps & guest_messages tables...")
	if err := db.AutoMigrate(&models.RSVP{}, &models.GuestMessage{}); err != nil {
		configslog.Log.Error("Failed to migrate rsvps & guest_messages tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Rsvps & guest_messages tables migrated successfully")
	return nil
}
