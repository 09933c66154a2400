package models

import "time"

// BaseModel is embedded by every table. Rows are hard-deleted; there is no soft-delete column.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
