package models

import "time"

// WebhookEvent stores each gateway notification once; the (provider, provider_event_id) pair
// is what makes redelivered notifications no-ops.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(20);not null;uniqueIndex:ux_webhook_events_provider_event,priority:1" json:"provider"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_webhook_events_provider_event,priority:2" json:"providerEventId"`
	OrderID         string     `gorm:"type:varchar(64);index" json:"orderId"`
	EventType       string     `gorm:"type:varchar(40);not null;index" json:"eventType"`
	PayloadJSON     string     `gorm:"type:text;not null" json:"payloadJson"`
	SignatureValid  bool       `gorm:"not null;default:false" json:"signatureValid"`
	ProcessedAt     *time.Time `json:"processedAt,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processingError"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
}
