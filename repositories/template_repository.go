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

// ITemplateRepository stores the selectable invitation designs.
type ITemplateRepository interface {
	Create(ctx context.Context, t *models.Template) error
	FindByID(ctx context.Context, id uint) (*models.Template, error)
	FindBySlug(ctx context.Context, slug string) (*models.Template, error)
	ListActive(ctx context.Context) ([]models.Template, error)
	List(ctx context.Context, params queryparams.ListParams) ([]models.Template, int64, error)
	Update(ctx context.Context, id uint, data map[string]any) error
	Delete(ctx context.Context, id uint) error
	IncrementUsage(ctx context.Context, slug string, delta int) error
	Count(ctx context.Context) (int64, error)
}

// TemplateRepository implements ITemplateRepository on GORM.
type TemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository returns a repository bound to db.
func NewTemplateRepository(db *gorm.DB) ITemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// Create inserts t. A taken slug returns ErrDuplicate.
func (r *TemplateRepository) Create(ctx context.Context, t *models.Template) error {
	if t == nil {
		return errors.New("template is nil")
	}
	return translateError(r.getDB(ctx).Create(t).Error)
}

// FindByID loads a template by primary key.
func (r *TemplateRepository) FindByID(ctx context.Context, id uint) (*models.Template, error) {
	var t models.Template
	if err := r.getDB(ctx).First(&t, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

// FindBySlug loads a template by its theme slug.
func (r *TemplateRepository) FindBySlug(ctx context.Context, slug string) (*models.Template, error) {
	var t models.Template
	if err := r.getDB(ctx).Where("slug = ?", slug).First(&t).Error; err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

// ListActive returns the designs users may pick, free ones first.
func (r *TemplateRepository) ListActive(ctx context.Context) ([]models.Template, error) {
	var out []models.Template
	err := r.getDB(ctx).Where("is_active = ?", true).Order("type ASC, usage_count DESC, name ASC").Find(&out).Error
	if err != nil {
		configslog.Log.Error("TemplateRepository.ListActive: DB error", zap.Error(err))
	}
	return out, err
}

var templateSortColumns = []string{"created_at", "name", "usage_count", "category"}

// List pages through all templates for the admin dashboard.
func (r *TemplateRepository) List(ctx context.Context, params queryparams.ListParams) ([]models.Template, int64, error) {
	params.Validate(templateSortColumns...)
	q := r.getDB(ctx).Model(&models.Template{})
	if params.Search != "" {
		p := likePattern(params.Search)
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(slug) LIKE ? ESCAPE '\\')", p, p)
	}
	if params.Category != "" {
		q = q.Where("category = ?", params.Category)
	}
	if params.Type != "" {
		q = q.Where("type = ?", params.Type)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Template
	err := q.Order(params.OrderClause()).Offset(params.CalculateOffset()).Limit(params.PerPage).Find(&out).Error
	return out, total, err
}

// Update writes the given columns.
func (r *TemplateRepository) Update(ctx context.Context, id uint, data map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	res := r.getDB(ctx).Model(&models.Template{}).Where("id = ?", id).Updates(data)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the template row. Users keep their template slug.
func (r *TemplateRepository) Delete(ctx context.Context, id uint) error {
	res := r.getDB(ctx).Delete(&models.Template{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementUsage never lets the counter go below zero.
func (r *TemplateRepository) IncrementUsage(ctx context.Context, slug string, delta int) error {
	expr := gorm.Expr("usage_count + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN usage_count + ? < 0 THEN 0 ELSE usage_count + ? END", delta, delta)
	}
	return r.getDB(ctx).Model(&models.Template{}).Where("slug = ?", slug).UpdateColumn("usage_count", expr).Error
}

// Count counts all templates.
func (r *TemplateRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.getDB(ctx).Model(&models.Template{}).Count(&n).Error
	return n, err
}

var _ ITemplateRepository = (*TemplateRepository)(nil)
