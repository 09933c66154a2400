package repositories

import (
	"context"
	"errors"

	"nika.id/configs/configslog"
	"nika.id/models"
	"nika.id/pkg/queryparams"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IGuestMessageRepository stores guestbook messages and their moderation state.
type IGuestMessageRepository interface {
	Create(ctx context.Context, msg *models.GuestMessage) error
	FindByID(ctx context.Context, id uint) (*models.GuestMessage, error)
	ListByUser(ctx context.Context, userID uint) ([]models.GuestMessage, error)
	ListApprovedByUser(ctx context.Context, userID uint, limit int) ([]models.GuestMessage, error)
	List(ctx context.Context, params queryparams.ListParams) ([]models.GuestMessage, int64, error)
	SetStatus(ctx context.Context, id uint, status models.MessageStatus) error
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context, status models.MessageStatus) (int64, error)
}

// GuestMessageRepository implements IGuestMessageRepository on GORM.
type GuestMessageRepository struct {
	db *gorm.DB
}

// NewGuestMessageRepository returns a repository bound to db.
func NewGuestMessageRepository(db *gorm.DB) IGuestMessageRepository {
	return &GuestMessageRepository{db: db}
}

func (r *GuestMessageRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// Create inserts msg; the caller decides its initial status.
func (r *GuestMessageRepository) Create(ctx context.Context, msg *models.GuestMessage) error {
	if msg == nil || msg.UserID == 0 {
		return errors.New("invalid guest message")
	}
	if err := r.getDB(ctx).Create(msg).Error; err != nil {
		configslog.Log.Error("GuestMessageRepository.Create: DB error", zap.Uint("user_id", msg.UserID), zap.Error(err))
		return err
	}
	return nil
}

// FindByID loads a message with its owner, so callers know which page to refresh.
func (r *GuestMessageRepository) FindByID(ctx context.Context, id uint) (*models.GuestMessage, error) {
	var m models.GuestMessage
	if err := r.getDB(ctx).Preload("User").First(&m, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &m, nil
}

// ListByUser returns every message for the owner's panel, newest first.
func (r *GuestMessageRepository) ListByUser(ctx context.Context, userID uint) ([]models.GuestMessage, error) {
	var out []models.GuestMessage
	err := r.getDB(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

// ListApprovedByUser returns what the public page may show. A limit of 0 means no limit.
func (r *GuestMessageRepository) ListApprovedByUser(ctx context.Context, userID uint, limit int) ([]models.GuestMessage, error) {
	var out []models.GuestMessage
	q := r.getDB(ctx).Where("user_id = ? AND status = ?", userID, models.MessageApproved).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

var messageSortColumns = []string{"created_at", "guest_name", "status"}

// List pages through all messages for the moderation queue, optionally filtered by status.
func (r *GuestMessageRepository) List(ctx context.Context, params queryparams.ListParams) ([]models.GuestMessage, int64, error) {
	params.Validate(messageSortColumns...)
	q := r.getDB(ctx).Model(&models.GuestMessage{})
	if params.Status != "" {
		q = q.Where("status = ?", params.Status)
	}
	if params.Search != "" {
		p := likePattern(params.Search)
		q = q.Where("(LOWER(guest_name) LIKE ? ESCAPE '\\' OR LOWER(message) LIKE ? ESCAPE '\\')", p, p)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.GuestMessage
	err := q.Preload("User").Order(params.OrderClause()).Offset(params.CalculateOffset()).Limit(params.PerPage).Find(&out).Error
	return out, total, err
}

// SetStatus moves a message to status.
func (r *GuestMessageRepository) SetStatus(ctx context.Context, id uint, status models.MessageStatus) error {
	res := r.getDB(ctx).Model(&models.GuestMessage{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a message for good.
func (r *GuestMessageRepository) Delete(ctx context.Context, id uint) error {
	res := r.getDB(ctx).Delete(&models.GuestMessage{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus counts messages across all users in status.
func (r *GuestMessageRepository) CountByStatus(ctx context.Context, status models.MessageStatus) (int64, error) {
	var n int64
	q := r.getDB(ctx).Model(&models.GuestMessage{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&n).Error
	return n, err
}

var _ IGuestMessageRepository = (*GuestMessageRepository)(nil)
