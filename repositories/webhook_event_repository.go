package repositories

import (
	"context"
	"errors"
	"time"

	"nika.id/configs/configslog"
	"nika.id/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IWebhookEventRepository keeps the log of received gateway notifications.
type IWebhookEventRepository interface {
	// Record inserts the event and reports false when (provider, provider_event_id) was already stored.
	Record(ctx context.Context, e *models.WebhookEvent) (bool, error)
	MarkProcessed(ctx context.Context, id uint, processingErr error) error
	ListByOrderID(ctx context.Context, orderID string) ([]models.WebhookEvent, error)
}

// WebhookEventRepository implements IWebhookEventRepository on GORM.
type WebhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository returns a repository bound to db.
func NewWebhookEventRepository(db *gorm.DB) IWebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// Record stores e unless the same provider event was seen before, and reports whether it was new.
func (r *WebhookEventRepository) Record(ctx context.Context, e *models.WebhookEvent) (bool, error) {
	if e == nil || e.Provider == "" || e.ProviderEventID == "" {
		return false, errors.New("invalid webhook event")
	}
	var existing int64
	if err := r.getDB(ctx).Model(&models.WebhookEvent{}).
		Where("provider = ? AND provider_event_id = ?", e.Provider, e.ProviderEventID).
		Count(&existing).Error; err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}
	if err := r.getDB(ctx).Create(e).Error; err != nil {
		if errors.Is(translateError(err), ErrDuplicate) {
			return false, nil
		}
		configslog.Log.Error("WebhookEventRepository.Record: DB error", zap.String("event_id", e.ProviderEventID), zap.Error(err))
		return false, err
	}
	return true, nil
}

// MarkProcessed stamps the event as handled and keeps processingErr, if any.
func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, id uint, processingErr error) error {
	now := time.Now().UTC()
	data := map[string]any{"processed_at": &now}
	if processingErr != nil {
		data["processing_error"] = processingErr.Error()
	}
	return r.getDB(ctx).Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(data).Error
}

// ListByOrderID returns the notifications received for one order, oldest first.
func (r *WebhookEventRepository) ListByOrderID(ctx context.Context, orderID string) ([]models.WebhookEvent, error) {
	var out []models.WebhookEvent
	err := r.getDB(ctx).Where("order_id = ?", orderID).Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

var _ IWebhookEventRepository = (*WebhookEventRepository)(nil)
