package configsdatabase

import (
	"time"

	"nika.id/configs"
	"nika.id/configs/configslog"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB opens the postgres connection pool. Failure is fatal.
func InitDB() {
	cfg := configs.Get()

	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	var err error
	db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		configslog.Log.Fatal("Failed to connect to database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		configslog.Log.Fatal("Failed to get sql.DB from gorm", zap.Error(err))
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	configslog.SLog.Infof("Database connection established (%s@%s/%s)", cfg.DBUser, cfg.DBHost, cfg.DBName)
}

// GetDB returns the shared pool.
func GetDB() *gorm.DB {
	return db
}

// CloseDB closes the pool; safe to call when InitDB was never called.
func CloseDB() {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		configslog.Log.Error("Failed to get sql.DB while closing", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		configslog.Log.Error("Failed to close database", zap.Error(err))
		return
	}
	configslog.SLog.Info("Database connection closed")
}
