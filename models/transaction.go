package models

import (
	"time"

	"nika.id/pkg/plans"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "PENDING"
	TransactionSuccess TransactionStatus = "SUCCESS"
	TransactionFailed  TransactionStatus = "FAILED"
)

// CanTransitionTo allows PENDING -> SUCCESS and PENDING -> FAILED only.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	return s == TransactionPending && (next == TransactionSuccess || next == TransactionFailed)
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionSuccess, TransactionFailed:
		return true
	}
	return false
}

type Transaction struct {
	BaseModel
	UserID               uint              `gorm:"not null;index;uniqueIndex:ux_transactions_user_idem,priority:1" json:"userId"`
	OrderID              string            `gorm:"type:varchar(64);uniqueIndex;not null" json:"orderId"`
	Plan                 plans.Tier        `gorm:"type:varchar(10);not null" json:"plan"`
	Amount               decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status               TransactionStatus `gorm:"type:varchar(10);not null;default:'PENDING';index" json:"status"`
	PaymentProofURL      string            `gorm:"type:varchar(500)" json:"paymentProofUrl"`
	SnapToken            string            `gorm:"type:varchar(100)" json:"-"`
	SnapRedirectURL      string            `gorm:"type:varchar(500)" json:"-"`
	PaymentType          string            `gorm:"type:varchar(40)" json:"paymentType"`
	GatewayTransactionID string            `gorm:"type:varchar(64);index" json:"gatewayTransactionId"`
	IdempotencyKey       *string           `gorm:"type:varchar(100);uniqueIndex:ux_transactions_user_idem,priority:2" json:"-"`
	GatewayPayload       datatypes.JSON    `gorm:"type:jsonb" json:"-"`
	PaidAt               *time.Time        `json:"paidAt,omitempty"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
}
