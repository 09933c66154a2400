package repositories

import (
	"context"
	"errors"
	"time"

	"nika.id/configs/configslog"
	"nika.id/models"
	"nika.id/pkg/plans"
	"nika.id/pkg/queryparams"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IUserRepository stores accounts, their plan and their public slug.
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindBySlug(ctx context.Context, slug string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.User, error)
	ListSlugsByTemplate(ctx context.Context, templateSlug string) ([]string, error)
	SlugExists(ctx context.Context, slug string, exceptID uint) (bool, error)
	Update(ctx context.Context, id uint, data map[string]any) error
	IncrementViews(ctx context.Context, id uint) error
	SetPlan(ctx context.Context, id uint, tier plans.Tier, expiresAt *time.Time) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params queryparams.ListParams) ([]models.User, int64, error)
	Count(ctx context.Context) (int64, error)
	CountByPlan(ctx context.Context) (map[plans.Tier]int64, error)
	SumViews(ctx context.Context) (int64, error)
}

// UserRepository implements IUserRepository on GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a repository bound to db.
func NewUserRepository(db *gorm.DB) IUserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// Create inserts user. A taken email or slug returns ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("user is nil")
	}
	if err := r.getDB(ctx).Create(user).Error; err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrDuplicate) {
			configslog.Log.Error("UserRepository.Create: DB error", zap.String("email", user.Email), zap.Error(err))
		}
		return err
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	if err := r.getDB(ctx).Where(query, args...).First(&user).Error; err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrNotFound) {
			configslog.Log.Error("UserRepository: lookup failed", zap.String("query", query), zap.Error(err))
		}
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail matches email case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "LOWER(email) = LOWER(?)", email)
}

// FindBySlug loads the owner of an invitation slug.
func (r *UserRepository) FindBySlug(ctx context.Context, slug string) (*models.User, error) {
	return r.findOne(ctx, "invitation_slug = ?", slug)
}

// FindByGoogleID loads the account linked to a Google id.
func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	if googleID == "" {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, "google_id = ?", googleID)
}

// FindByIDForUpdate locks the user row; callers use it to serialise writes against one invitation.
func (r *UserRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// ListSlugsByTemplate returns the invitation slugs of users on templateSlug.
func (r *UserRepository) ListSlugsByTemplate(ctx context.Context, templateSlug string) ([]string, error) {
	var slugs []string
	err := r.getDB(ctx).Model(&models.User{}).Where("template_slug = ?", templateSlug).Pluck("invitation_slug", &slugs).Error
	return slugs, err
}

// SlugExists reports whether another user than exceptID holds slug.
func (r *UserRepository) SlugExists(ctx context.Context, slug string, exceptID uint) (bool, error) {
	var count int64
	q := r.getDB(ctx).Model(&models.User{}).Where("invitation_slug = ?", slug)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		configslog.Log.Error("UserRepository.SlugExists: DB error", zap.String("slug", slug), zap.Error(err))
		return false, err
	}
	return count > 0, nil
}

// Update writes the given columns. A slug collision returns ErrDuplicate.
func (r *UserRepository) Update(ctx context.Context, id uint, data map[string]any) error {
	if id == 0 || len(data) == 0 {
		return errors.New("invalid user update")
	}
	res := r.getDB(ctx).Model(&models.User{}).Where("id = ?", id).Updates(data)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews is a single atomic UPDATE so concurrent visits never lose a count.
func (r *UserRepository) IncrementViews(ctx context.Context, id uint) error {
	res := r.getDB(ctx).Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		configslog.Log.Error("UserRepository.IncrementViews: DB error", zap.Uint("user_id", id), zap.Error(res.Error))
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPlan switches the user to tier until expiresAt.
func (r *UserRepository) SetPlan(ctx context.Context, id uint, tier plans.Tier, expiresAt *time.Time) error {
	return r.Update(ctx, id, map[string]any{"plan": tier, "plan_expires_at": expiresAt})
}

// Delete removes the user; invitation, RSVPs, messages and transactions go with it.
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	return db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Invitation{}, &models.RSVP{}, &models.GuestMessage{}, &models.Transaction{}} {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

var userSortColumns = []string{"created_at", "name", "email", "views", "plan"}

// List pages through users for the admin dashboard, filtered by search and plan.
func (r *UserRepository) List(ctx context.Context, params queryparams.ListParams) ([]models.User, int64, error) {
	params.Validate(userSortColumns...)
	q := r.getDB(ctx).Model(&models.User{})
	if params.Search != "" {
		p := likePattern(params.Search)
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\' OR LOWER(invitation_slug) LIKE ? ESCAPE '\\')", p, p, p)
	}
	if params.Plan != "" {
		q = q.Where("plan = ?", plans.ParseTier(params.Plan))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := q.Order(params.OrderClause()).Offset(params.CalculateOffset()).Limit(params.PerPage).Find(&users).Error
	if err != nil {
		configslog.Log.Error("UserRepository.List: DB error", zap.Error(err))
		return nil, 0, err
	}
	return users, total, nil
}

// Count counts all users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.getDB(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

// CountByPlan counts users per stored tier.
func (r *UserRepository) CountByPlan(ctx context.Context) (map[plans.Tier]int64, error) {
	var rows []struct {
		Plan  plans.Tier
		Total int64
	}
	if err := r.getDB(ctx).Model(&models.User{}).Select("plan, COUNT(*) AS total").Group("plan").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[plans.Tier]int64, len(rows))
	for _, row := range rows {
		out[row.Plan] = row.Total
	}
	return out, nil
}

// SumViews totals the view counters of all invitations.
func (r *UserRepository) SumViews(ctx context.Context) (int64, error) {
	var total int64
	err := r.getDB(ctx).Model(&models.User{}).Select("COALESCE(SUM(views), 0)").Scan(&total).Error
	return total, err
}

var _ IUserRepository = (*UserRepository)(nil)
