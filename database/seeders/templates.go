package seeders

import (
	"errors"

	"nika.id/configs/configslog"
	"nika.id/models"
	"nika.id/pkg/themes"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedTemplates inserts a Template row for every built-in theme that has none yet.
func SeedTemplates(db *gorm.DB) error {
	var created int
	var failed bool
	for _, th := range themes.Builtins() {
		var existing models.Template
		err := db.Where("slug = ?", th.Slug).First(&existing).Error
		if err == nil {
			configslog.SLog.Debugf("Template '%s' already present, skipping", th.Slug)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			configslog.Log.Error("Template lookup failed", zap.String("slug", th.Slug), zap.Error(err))
			failed = true
			continue
		}
		tplType := models.TemplateFree
		if th.Premium {
			tplType = models.TemplatePremium
		}
		row := models.Template{
			Name:     th.Name,
			Slug:     th.Slug,
			Category: th.Category,
			Type:     tplType,
			IsActive: true,
			Config:   datatypes.JSON("{}"),
		}
		if err := db.Create(&row).Error; err != nil {
			configslog.Log.Error("Template could not be created", zap.String("slug", th.Slug), zap.Error(err))
			failed = true
			continue
		}
		created++
	}
	if failed {
		return errors.New("at least one template failed to seed")
	}
	configslog.SLog.Infof("%d built-in templates seeded", created)
	return nil
}
