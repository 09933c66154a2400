package seeders

import (
	"errors"
	"strings"

	"nika.id/configs/configslog"
	"nika.id/models"
	"nika.id/pkg/plans"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const adminSlug = "admin-nika"

// SeedAdminUser creates the admin account, or promotes and re-keys an existing one with that email.
func SeedAdminUser(db *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		configslog.SLog.Warn("ADMIN_EMAIL / ADMIN_PASSWORD not set, admin seeding skipped")
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var existing models.User
	err = db.Where("LOWER(email) = ?", email).First(&existing).Error
	switch {
	case err == nil:
		configslog.SLog.Infof("Admin user %s exists, updating role and password", email)
		return db.Model(&existing).Updates(map[string]any{
			"role":          models.RoleAdmin,
			"password_hash": string(hash),
			"is_active":     true,
		}).Error
	case !errors.Is(err, gorm.ErrRecordNotFound):
		configslog.Log.Error("Admin lookup failed", zap.String("email", email), zap.Error(err))
		return err
	}

	admin := models.User{
		Name:           "Administrator",
		Email:          email,
		PasswordHash:   string(hash),
		Role:           models.RoleAdmin,
		InvitationSlug: adminSlug,
		TemplateSlug:   "simple-free",
		Plan:           plans.TierFree,
		IsActive:       true,
	}
	if err := db.Create(&admin).Error; err != nil {
		configslog.Log.Error("Admin user could not be created", zap.String("email", email), zap.Error(err))
		return err
	}
	if err := db.Create(&models.Invitation{UserID: admin.ID, Data: datatypes.JSON("{}")}).Error; err != nil {
		return err
	}
	configslog.SLog.Infof("Admin user %s created (ID: %d)", email, admin.ID)
	return nil
}
