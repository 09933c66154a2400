package models

type MessageStatus string

const (
	MessagePending  MessageStatus = "PENDING"
	MessageApproved MessageStatus = "APPROVED"
)

type GuestMessage struct {
	BaseModel
	UserID    uint          `gorm:"not null;index" json:"userId"`
	GuestName string        `gorm:"type:varchar(100);not null" json:"guestName"`
	Message   string        `gorm:"type:text;not null" json:"message"`
	Status    MessageStatus `gorm:"type:varchar(10);not null;default:'PENDING';index" json:"status"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
}
