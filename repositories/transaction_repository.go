package repositories

import (
	"context"
	"errors"

	"nika.id/configs/configslog"
	"nika.id/models"
	"nika.id/pkg/queryparams"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ITransactionRepository stores plan purchases.
type ITransactionRepository interface {
	Create(ctx context.Context, t *models.Transaction) error
	FindByID(ctx context.Context, id uint) (*models.Transaction, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Transaction, error)
	FindByOrderIDForUpdate(ctx context.Context, orderID string) (*models.Transaction, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Transaction, error)
	FindByIdempotencyKey(ctx context.Context, userID uint, key string) (*models.Transaction, error)
	Update(ctx context.Context, id uint, data map[string]any) error
	TransitionFromPending(ctx context.Context, id uint, data map[string]any) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Transaction, error)
	List(ctx context.Context, params queryparams.ListParams) ([]models.Transaction, int64, error)
	CountByStatus(ctx context.Context, status models.TransactionStatus) (int64, error)
	SumSuccessful(ctx context.Context) (decimal.Decimal, error)
}

// TransactionRepository implements ITransactionRepository on GORM.
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository returns a repository bound to db.
func NewTransactionRepository(db *gorm.DB) ITransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// Create inserts t. A reused idempotency key returns ErrDuplicate.
func (r *TransactionRepository) Create(ctx context.Context, t *models.Transaction) error {
	if t == nil || t.UserID == 0 {
		return errors.New("invalid transaction")
	}
	if err := r.getDB(ctx).Create(t).Error; err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrDuplicate) {
			configslog.Log.Error("TransactionRepository.Create: DB error", zap.String("order_id", t.OrderID), zap.Error(err))
		}
		return err
	}
	return nil
}

func (r *TransactionRepository) first(q *gorm.DB) (*models.Transaction, error) {
	var t models.Transaction
	if err := q.First(&t).Error; err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

// FindByID loads a transaction with its user.
func (r *TransactionRepository) FindByID(ctx context.Context, id uint) (*models.Transaction, error) {
	return r.first(r.getDB(ctx).Preload("User").Where("id = ?", id))
}

// FindByOrderID loads a transaction by the order id sent to the gateway.
func (r *TransactionRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	return r.first(r.getDB(ctx).Where("order_id = ?", orderID))
}

// FindByOrderIDForUpdate locks the row; call it inside a transaction.
func (r *TransactionRepository) FindByOrderIDForUpdate(ctx context.Context, orderID string) (*models.Transaction, error) {
	return r.first(r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("order_id = ?", orderID))
}

// FindByIDForUpdate locks the row for the rest of the surrounding DB transaction.
func (r *TransactionRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Transaction, error) {
	return r.first(r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

// FindByIdempotencyKey finds an earlier purchase started with the same key by the same user.
func (r *TransactionRepository) FindByIdempotencyKey(ctx context.Context, userID uint, key string) (*models.Transaction, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	return r.first(r.getDB(ctx).Where("user_id = ? AND idempotency_key = ?", userID, key))
}

// Update writes the given columns.
func (r *TransactionRepository) Update(ctx context.Context, id uint, data map[string]any) error {
	res := r.getDB(ctx).Model(&models.Transaction{}).Where("id = ?", id).Updates(data)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TransitionFromPending applies data only while the row is still PENDING and reports whether it did.
func (r *TransactionRepository) TransitionFromPending(ctx context.Context, id uint, data map[string]any) (bool, error) {
	res := r.getDB(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, models.TransactionPending).
		Updates(data)
	if res.Error != nil {
		configslog.Log.Error("TransactionRepository.TransitionFromPending: DB error", zap.Uint("id", id), zap.Error(res.Error))
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListByUser returns the user's purchases, newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Transaction, error) {
	var out []models.Transaction
	err := r.getDB(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

var transactionSortColumns = []string{"created_at", "amount", "status", "plan"}

// List pages through all purchases for the admin dashboard.
func (r *TransactionRepository) List(ctx context.Context, params queryparams.ListParams) ([]models.Transaction, int64, error) {
	params.Validate(transactionSortColumns...)
	q := r.getDB(ctx).Model(&models.Transaction{})
	if params.Status != "" {
		q = q.Where("status = ?", params.Status)
	}
	if params.Plan != "" {
		q = q.Where("plan = ?", params.Plan)
	}
	if params.Search != "" {
		q = q.Where("LOWER(order_id) LIKE ? ESCAPE '\\'", likePattern(params.Search))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Transaction
	err := q.Preload("User").Order(params.OrderClause()).Offset(params.CalculateOffset()).Limit(params.PerPage).Find(&out).Error
	return out, total, err
}

// CountByStatus counts purchases in status.
func (r *TransactionRepository) CountByStatus(ctx context.Context, status models.TransactionStatus) (int64, error) {
	var n int64
	q := r.getDB(ctx).Model(&models.Transaction{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&n).Error
	return n, err
}

// SumSuccessful is the total revenue of settled purchases.
func (r *TransactionRepository) SumSuccessful(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.getDB(ctx).Model(&models.Transaction{}).
		Where("status = ?", models.TransactionSuccess).
		Select("SUM(amount)").Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

var _ ITransactionRepository = (*TransactionRepository)(nil)
