package models

import "gorm.io/datatypes"

// Invitation holds the whole editable wedding document of one user. Data has no enforced schema;
// readers go through weddingdata.Map.
type Invitation struct {
	BaseModel
	UserID uint           `gorm:"uniqueIndex;not null" json:"userId"`
	Data   datatypes.JSON `gorm:"type:jsonb" json:"data"`
}
