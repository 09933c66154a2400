// Package testutil opens an in-memory database with the production models for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"nika.id/models"
	"nika.id/pkg/plans"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// NewDB returns a fresh, migrated in-memory database that is closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:nika_test_%d?mode=memory&cache=shared", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
		&models.User{}, &models.Template{}, &models.Invitation{},
		&models.RSVP{}, &models.GuestMessage{},
		&models.Transaction{}, &models.WebhookEvent{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts an active FREE user with an empty invitation.
func CreateUser(t testing.TB, db *gorm.DB, slug string) *models.User {
	t.Helper()
	u := &models.User{
		Name:           "User " + slug,
		Email:          slug + "@example.com",
		Role:           models.RoleUser,
		InvitationSlug: slug,
		TemplateSlug:   "simple-free",
		Plan:           plans.TierFree,
		IsActive:       true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", slug, err)
	}
	if err := db.Create(&models.Invitation{UserID: u.ID, Data: datatypes.JSON("{}")}).Error; err != nil {
		t.Fatalf("create invitation %s: %v", slug, err)
	}
	return u
}

// SetPlan upgrades u in place and in the database.
func SetPlan(t testing.TB, db *gorm.DB, u *models.User, tier plans.Tier) {
	t.Helper()
	exp := time.Now().Add(30 * 24 * time.Hour)
	if err := db.Model(u).Updates(map[string]any{"plan": tier, "plan_expires_at": &exp}).Error; err != nil {
		t.Fatalf("set plan: %v", err)
	}
	u.Plan = tier
	u.PlanExpiresAt = &exp
}
