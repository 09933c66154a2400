package models

import "gorm.io/datatypes"

type TemplateType string

const (
	TemplateFree    TemplateType = "Free"
	TemplatePremium TemplateType = "Premium"
)

// Template is a selectable design. Slug is the theme registry key; Config carries extraFields and
// optional theme overrides (see themes.Config).
type Template struct {
	BaseModel
	Name       string         `gorm:"type:varchar(120);not null" json:"name"`
	Slug       string         `gorm:"type:varchar(60);uniqueIndex;not null" json:"slug"`
	Category   string         `gorm:"type:varchar(60);index" json:"category"`
	Type       TemplateType   `gorm:"type:varchar(10);not null;default:'Free'" json:"type"`
	Thumbnail  string         `gorm:"type:varchar(500)" json:"thumbnail"`
	IsActive   bool           `gorm:"not null;index" json:"isActive"`
	Config     datatypes.JSON `gorm:"type:jsonb" json:"config"`
	UsageCount int64          `gorm:"not null;default:0" json:"usageCount"`
}
