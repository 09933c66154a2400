package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"nika.id/configs/configslog"
	"nika.id/models"
	"nika.id/pkg/cache"
	"nika.id/pkg/events"
	"nika.id/pkg/payment"
	"nika.id/pkg/plans"
	"nika.id/pkg/queryparams"
	"nika.id/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentServiceError is a payment failure shown to the user or the gateway.
type PaymentServiceError string

func (e PaymentServiceError) Error() string { return string(e) }

const (
	ErrUnknownPlan          PaymentServiceError = "paket tidak dikenal"
	ErrTransactionNotFound  PaymentServiceError = "transaksi tidak ditemukan"
	ErrInvalidTransition    PaymentServiceError = "status transaksi tidak dapat diubah"
	ErrInvalidSignature     PaymentServiceError = "tanda tangan notifikasi tidak valid"
	ErrInvalidNotification  PaymentServiceError = "notifikasi pembayaran tidak valid"
	ErrGatewayUnavailable   PaymentServiceError = "gerbang pembayaran sedang tidak tersedia"
	ErrSimulatorDisabled    PaymentServiceError = "simulator pembayaran hanya tersedia di mode pengembangan"
	ErrInvalidIdempotencyID PaymentServiceError = "Idempotency-Key terlalu panjang"
)

const (
	ProviderMidtrans  = "midtrans"
	orderIDPrefix     = "NIKA-"
	maxIdempotencyKey = 100
)

// TokenResult is what the browser needs to open Snap for an order.
type TokenResult struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
	OrderID     string `json:"orderId"`
	Reused      bool   `json:"reused,omitempty"`
}

// NotificationResult says what a notification did. Duplicate deliveries and no-op statuses are
// not errors: the gateway must receive 200 so it stops retrying.
type NotificationResult struct {
	OrderID   string                   `json:"orderId"`
	Status    models.TransactionStatus `json:"status"`
	Applied   bool                     `json:"applied"`
	Duplicate bool                     `json:"duplicate"`
}

// IPaymentService sells plan upgrades through the payment gateway.
type IPaymentService interface {
	CreateToken(ctx context.Context, userID uint, plan, idempotencyKey string) (*TokenResult, error)
	HandleNotification(ctx context.Context, raw []byte) (*NotificationResult, error)
	Simulate(ctx context.Context, isAdmin bool, orderID, status string) (*NotificationResult, error)
	AdminSetStatus(ctx context.Context, actorID, transactionID uint, status string) (*models.Transaction, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Transaction, error)
	List(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	ClientKey() string
	SnapScriptURL() string
	SimulatorEnabled(isAdmin bool) bool
}

// PaymentService implements IPaymentService. Without a gateway only admin overrides work.
type PaymentService struct {
	db           *gorm.DB
	users        repositories.IUserRepository
	transactions repositories.ITransactionRepository
	webhooks     repositories.IWebhookEventRepository
	plans        *plans.Registry
	gateway      payment.Gateway
	cache        *cache.PageCache
	events       events.Publisher
	development  bool
}

// NewPaymentService wires the gateway, the payment repositories and the plan limits.
func NewPaymentService(opts Options, r repos) IPaymentService {
	return &PaymentService{
		db:           opts.DB,
		users:        r.users,
		transactions: r.transactions,
		webhooks:     r.webhooks,
		plans:        opts.Plans,
		gateway:      opts.Gateway,
		cache:        opts.PageCache,
		events:       opts.Events,
		development:  opts.Development,
	}
}

func (s *PaymentService) serverKey() string {
	if s.gateway == nil {
		return ""
	}
	return s.gateway.ServerKey()
}

// ClientKey is the public Snap key, empty without a gateway.
func (s *PaymentService) ClientKey() string {
	if s.gateway == nil {
		return ""
	}
	return s.gateway.ClientKey()
}

// SnapScriptURL picks the sandbox or production Snap script.
func (s *PaymentService) SnapScriptURL() string {
	return payment.SnapScriptURL(s.gateway != nil && s.gateway.IsProduction())
}

// SimulatorEnabled reports whether the notification simulator may be used.
func (s *PaymentService) SimulatorEnabled(isAdmin bool) bool {
	return s.development || isAdmin
}

// CreateToken opens a PENDING order for plan. A repeated idempotency key returns the first order.
func (s *PaymentService) CreateToken(ctx context.Context, userID uint, plan, idempotencyKey string) (*TokenResult, error) {
	tier := plans.ParseTier(plan)
	if !s.plans.Known(tier) || !tier.IsPaid() {
		return nil, ErrUnknownPlan
	}
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if len(idempotencyKey) > maxIdempotencyKey {
		return nil, ErrInvalidIdempotencyID
	}
	if idempotencyKey != "" {
		if existing, err := s.transactions.FindByIdempotencyKey(ctx, userID, idempotencyKey); err == nil {
			return reusedToken(existing), nil
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}
	if s.gateway == nil {
		return nil, ErrGatewayUnavailable
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	limits := s.plans.Get(tier)
	t := &models.Transaction{
		UserID:  u.ID,
		OrderID: orderIDPrefix + uuid.NewString(),
		Plan:    tier,
		Amount:  limits.Price,
		Status:  models.TransactionPending,
	}
	if idempotencyKey != "" {
		t.IdempotencyKey = &idempotencyKey
	}
	if err := s.transactions.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) && idempotencyKey != "" {
			// Lost a race against a concurrent request with the same key.
			if existing, ferr := s.transactions.FindByIdempotencyKey(ctx, userID, idempotencyKey); ferr == nil {
				return reusedToken(existing), nil
			}
		}
		return nil, err
	}

	snap, err := s.gateway.CreateSnap(ctx, payment.SnapRequest{
		OrderID:       t.OrderID,
		Amount:        t.Amount,
		ItemID:        string(tier),
		ItemName:      "Paket " + string(tier) + " nika.id",
		CustomerName:  u.Name,
		CustomerEmail: u.Email,
		CustomerPhone: u.Phone,
	})
	if err != nil {
		configslog.Log.Error("Snap token request failed", zap.String("order_id", t.OrderID), zap.Error(err))
		if _, ferr := s.transactions.TransitionFromPending(ctx, t.ID, map[string]any{"status": models.TransactionFailed}); ferr != nil {
			configslog.Log.Error("could not fail transaction after gateway error", zap.String("order_id", t.OrderID), zap.Error(ferr))
		}
		return nil, ErrGatewayUnavailable
	}
	if err := s.transactions.Update(ctx, t.ID, map[string]any{"snap_token": snap.Token, "snap_redirect_url": snap.RedirectURL}); err != nil {
		return nil, err
	}
	configslog.SLog.Infof("Payment started: user %d, plan %s, order %s", u.ID, tier, t.OrderID)
	return &TokenResult{Token: snap.Token, RedirectURL: snap.RedirectURL, OrderID: t.OrderID}, nil
}

func reusedToken(t *models.Transaction) *TokenResult {
	return &TokenResult{Token: t.SnapToken, RedirectURL: t.SnapRedirectURL, OrderID: t.OrderID, Reused: true}
}

// HandleNotification verifies, records and applies one gateway notification.
func (s *PaymentService) HandleNotification(ctx context.Context, raw []byte) (*NotificationResult, error) {
	var n payment.Notification
	if err := json.Unmarshal(raw, &n); err != nil || n.OrderID == "" || n.TransactionStatus == "" {
		return nil, ErrInvalidNotification
	}
	if !payment.VerifySignature(n, s.serverKey()) {
		configslog.Log.Warn("payment notification with bad signature", zap.String("order_id", n.OrderID), zap.String("status", n.TransactionStatus))
		return nil, ErrInvalidSignature
	}

	var (
		result  = &NotificationResult{OrderID: n.OrderID}
		updated *models.Transaction
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.WithTx(ctx, tx)
		ev := &models.WebhookEvent{
			Provider:        ProviderMidtrans,
			ProviderEventID: n.EventID(),
			OrderID:         n.OrderID,
			EventType:       strings.ToLower(n.TransactionStatus),
			PayloadJSON:     string(raw),
			SignatureValid:  true,
		}
		created, err := s.webhooks.Record(txCtx, ev)
		if err != nil {
			return err
		}
		if !created {
			result.Duplicate = true
			return nil
		}

		t, err := s.transactions.FindByOrderIDForUpdate(txCtx, n.OrderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		result.Status = t.Status

		var processingErr error
		next, ok := outcomeStatus(payment.MapStatus(n))
		switch {
		case !ok:
			// pending/challenge: keep the latest payload for support, no transition.
			err = s.transactions.Update(txCtx, t.ID, map[string]any{"gateway_payload": datatypes.JSON(raw)})
		case !amountMatches(n.GrossAmount, t.Amount):
			processingErr = errors.New("gross_amount does not match transaction amount")
			configslog.Log.Warn("payment notification amount mismatch", zap.String("order_id", n.OrderID), zap.String("gross_amount", n.GrossAmount), zap.String("expected", t.Amount.StringFixed(2)))
		default:
			data := map[string]any{
				"status":                 next,
				"payment_type":           n.PaymentType,
				"gateway_transaction_id": n.TransactionID,
				"gateway_payload":        datatypes.JSON(raw),
			}
			result.Applied, err = s.applyTransition(txCtx, t, next, data)
			if result.Applied {
				result.Status = next
				updated = t
			}
		}
		if err != nil {
			return err
		}
		return s.webhooks.MarkProcessed(txCtx, ev.ID, processingErr)
	})
	if err != nil {
		if !errors.Is(err, ErrTransactionNotFound) {
			configslog.Log.Error("payment notification failed", zap.String("order_id", n.OrderID), zap.Error(err))
		}
		return nil, err
	}
	if updated != nil {
		s.afterTransition(ctx, updated, result.Status)
	}
	return result, nil
}

func outcomeStatus(o payment.Outcome) (models.TransactionStatus, bool) {
	switch o {
	case payment.OutcomeSuccess:
		return models.TransactionSuccess, true
	case payment.OutcomeFailed:
		return models.TransactionFailed, true
	}
	return "", false
}

func amountMatches(gross string, amount decimal.Decimal) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(gross))
	return err == nil && d.Equal(amount)
}

// applyTransition moves t out of PENDING and, on success, upgrades the owner's plan. It must run
// inside the caller's DB transaction. A transaction that already left PENDING is left untouched.
func (s *PaymentService) applyTransition(ctx context.Context, t *models.Transaction, next models.TransactionStatus, data map[string]any) (bool, error) {
	if !t.Status.CanTransitionTo(next) {
		return false, nil
	}
	now := nowFunc()
	if next == models.TransactionSuccess {
		data["paid_at"] = &now
	}
	ok, err := s.transactions.TransitionFromPending(ctx, t.ID, data)
	if err != nil || !ok {
		return false, err
	}
	if next == models.TransactionSuccess {
		if err := s.upgradePlan(ctx, t.UserID, t.Plan, now); err != nil {
			return false, err
		}
	}
	return true, nil
}

// upgradePlan starts the paid period now, or extends it when the same tier is still running.
func (s *PaymentService) upgradePlan(ctx context.Context, userID uint, tier plans.Tier, now time.Time) error {
	u, err := s.users.FindByIDForUpdate(ctx, userID)
	if err != nil {
		return err
	}
	start := now
	if u.EffectivePlan(now) == tier && u.PlanExpiresAt != nil && u.PlanExpiresAt.After(now) {
		start = *u.PlanExpiresAt
	}
	expires := start.AddDate(0, 0, s.plans.Get(tier).ActiveDays)
	if err := s.users.SetPlan(ctx, userID, tier, &expires); err != nil {
		return err
	}
	configslog.SLog.Infof("User %d upgraded to %s until %s", userID, tier, expires.Format(time.RFC3339))
	return nil
}

// afterTransition runs once the status change is committed. A successful payment changes the
// owner's plan, so their cached page goes stale.
func (s *PaymentService) afterTransition(ctx context.Context, t *models.Transaction, status models.TransactionStatus) {
	if status == models.TransactionSuccess && s.cache.Enabled() {
		u, err := s.users.FindByID(ctx, t.UserID)
		if err != nil {
			configslog.Log.Warn("page cache not invalidated after upgrade", zap.Uint("user_id", t.UserID), zap.Error(err))
		} else {
			s.cache.Invalidate(ctx, u.InvitationSlug)
		}
	}
	events.PublishAsync(s.events, events.Event{
		Type:       events.TransactionUpdated,
		Key:        t.OrderID,
		OccurredAt: nowFunc(),
		Payload:    map[string]any{"orderId": t.OrderID, "userId": t.UserID, "plan": t.Plan, "status": status},
	})
	if status == models.TransactionSuccess {
		events.PublishAsync(s.events, events.Event{
			Type:       events.PlanUpgraded,
			Key:        t.OrderID,
			OccurredAt: nowFunc(),
			Payload:    map[string]any{"userId": t.UserID, "plan": t.Plan},
		})
	}
}

// Simulate builds a correctly signed notification and feeds it through HandleNotification.
func (s *PaymentService) Simulate(ctx context.Context, isAdmin bool, orderID, status string) (*NotificationResult, error) {
	if !s.SimulatorEnabled(isAdmin) {
		return nil, ErrSimulatorDisabled
	}
	if !payment.IsSimulatedStatus(status) {
		return nil, ErrInvalidNotification
	}
	t, err := s.transactions.FindByOrderID(ctx, strings.TrimSpace(orderID))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	n := payment.BuildNotification(t.OrderID, status, t.Amount.StringFixed(2), s.serverKey(), "SIM-"+uuid.NewString())
	raw, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	configslog.SLog.Infof("Simulating %s notification for %s", status, t.OrderID)
	return s.HandleNotification(ctx, raw)
}

// AdminSetStatus settles or fails a PENDING order by hand, with the same effects as a notification.
func (s *PaymentService) AdminSetStatus(ctx context.Context, actorID, transactionID uint, status string) (*models.Transaction, error) {
	next := models.TransactionStatus(strings.ToUpper(strings.TrimSpace(status)))
	if next != models.TransactionSuccess && next != models.TransactionFailed {
		return nil, ErrInvalidTransition
	}
	var updated *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.WithTx(ctx, tx)
		t, err := s.transactions.FindByIDForUpdate(txCtx, transactionID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		ok, err := s.applyTransition(txCtx, t, next, map[string]any{"status": next, "payment_type": "manual"})
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	configslog.SLog.Infof("Transaction %s set to %s by admin %d", updated.OrderID, next, actorID)
	s.afterTransition(ctx, updated, next)
	return s.transactions.FindByID(ctx, transactionID)
}

// ListForUser returns the user's orders, newest first.
func (s *PaymentService) ListForUser(ctx context.Context, userID uint) ([]models.Transaction, error) {
	return s.transactions.ListByUser(ctx, userID)
}

// List pages through all orders for the admin dashboard.
func (s *PaymentService) List(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	list, total, err := s.transactions.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return queryparams.NewPaginatedResult(list, params, total), nil
}
