package repositories

import (
	"context"
	"errors"

	"nika.id/configs/configslog"
	"nika.id/models"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IInvitationRepository stores the wedding document of each user.
type IInvitationRepository interface {
	Create(ctx context.Context, inv *models.Invitation) error
	FindByUserID(ctx context.Context, userID uint) (*models.Invitation, error)
	SaveData(ctx context.Context, userID uint, data datatypes.JSON) error
}

// InvitationRepository implements IInvitationRepository on GORM.
type InvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository returns a repository bound to db.
func NewInvitationRepository(db *gorm.DB) IInvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// Create inserts the invitation row of a new account.
func (r *InvitationRepository) Create(ctx context.Context, inv *models.Invitation) error {
	if inv == nil || inv.UserID == 0 {
		return errors.New("invalid invitation")
	}
	return translateError(r.getDB(ctx).Create(inv).Error)
}

// FindByUserID loads the single invitation owned by userID.
func (r *InvitationRepository) FindByUserID(ctx context.Context, userID uint) (*models.Invitation, error) {
	var inv models.Invitation
	if err := r.getDB(ctx).Where("user_id = ?", userID).First(&inv).Error; err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrNotFound) {
			configslog.Log.Error("InvitationRepository.FindByUserID: DB error", zap.Uint("user_id", userID), zap.Error(err))
		}
		return nil, err
	}
	return &inv, nil
}

// SaveData overwrites the whole blob, creating the row for accounts that predate invitations.
// Concurrent saves are last-write-wins.
func (r *InvitationRepository) SaveData(ctx context.Context, userID uint, data datatypes.JSON) error {
	inv := models.Invitation{UserID: userID, Data: data}
	err := r.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&inv).Error
	if err != nil {
		configslog.Log.Error("InvitationRepository.SaveData: DB error", zap.Uint("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

var _ IInvitationRepository = (*InvitationRepository)(nil)
