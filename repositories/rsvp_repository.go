package repositories

import (
	"context"
	"errors"

	"nika.id/configs/configslog"
	"nika.id/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RSVPStats summarises the responses of one invitation.
type RSVPStats struct {
	Responses   int64 `json:"responses"`
	Attending   int64 `json:"attending"`
	Declined    int64 `json:"declined"`
	TotalGuests int64 `json:"totalGuests"`
}

// IRSVPRepository stores RSVP answers.
type IRSVPRepository interface {
	Create(ctx context.Context, rsvp *models.RSVP) error
	ListByUser(ctx context.Context, userID uint) ([]models.RSVP, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	StatsByUser(ctx context.Context, userID uint) (RSVPStats, error)
	Count(ctx context.Context) (int64, error)
}

// RSVPRepository implements IRSVPRepository on GORM.
type RSVPRepository struct {
	db *gorm.DB
}

// NewRSVPRepository returns a repository bound to db.
func NewRSVPRepository(db *gorm.DB) IRSVPRepository {
	return &RSVPRepository{db: db}
}

func (r *RSVPRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// Create inserts one answer.
func (r *RSVPRepository) Create(ctx context.Context, rsvp *models.RSVP) error {
	if rsvp == nil || rsvp.UserID == 0 {
		return errors.New("invalid rsvp")
	}
	if err := r.getDB(ctx).Create(rsvp).Error; err != nil {
		configslog.Log.Error("RSVPRepository.Create: DB error", zap.Uint("user_id", rsvp.UserID), zap.Error(err))
		return err
	}
	return nil
}

// ListByUser returns every answer for the owner, newest first.
func (r *RSVPRepository) ListByUser(ctx context.Context, userID uint) ([]models.RSVP, error) {
	var out []models.RSVP
	err := r.getDB(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

// CountByUser is the number the plan's MaxGuests cap is checked against.
func (r *RSVPRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.getDB(ctx).Model(&models.RSVP{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// StatsByUser aggregates the answers of one user. TotalGuests only counts attending parties.
func (r *RSVPRepository) StatsByUser(ctx context.Context, userID uint) (RSVPStats, error) {
	var s RSVPStats
	err := r.getDB(ctx).Model(&models.RSVP{}).Where("user_id = ?", userID).Select(
		"COUNT(*) AS responses, "+
			"COALESCE(SUM(CASE WHEN attendance = ? THEN 1 ELSE 0 END), 0) AS attending, "+
			"COALESCE(SUM(CASE WHEN attendance = ? THEN 1 ELSE 0 END), 0) AS declined, "+
			"COALESCE(SUM(CASE WHEN attendance = ? THEN guests ELSE 0 END), 0) AS total_guests",
		models.AttendanceYes, models.AttendanceNo, models.AttendanceYes,
	).Scan(&s).Error
	return s, err
}

// Count counts answers across all users.
func (r *RSVPRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.getDB(ctx).Model(&models.RSVP{}).Count(&n).Error
	return n, err
}

var _ IRSVPRepository = (*RSVPRepository)(nil)
