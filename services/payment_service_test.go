package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"nika.id/internal/testutil"
	"nika.id/models"
	"nika.id/pkg/payment"
	"nika.id/pkg/plans"
)

func notification(t *testing.T, orderID, status, gross string) []byte {
	t.Helper()
	n := payment.BuildNotification(orderID, status, gross, testServerKey, "TX-"+orderID+"-"+status)
	b, err := json.Marshal(n)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func startSilver(t *testing.T, env *testEnv, u *models.User) *TokenResult {
	t.Helper()
	res, err := env.svc.Payments.CreateToken(context.Background(), u.ID, "silver", "")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return res
}

func TestCreateTokenIdempotency(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.db, "pay-idem")
	ctx := context.Background()

	first, err := env.svc.Payments.CreateToken(ctx, u.ID, "GOLD", "key-1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := env.svc.Payments.CreateToken(ctx, u.ID, "GOLD", "key-1")
	if err != nil {
		t.Fatal(err)
	}
	if !second.Reused || second.OrderID != first.OrderID || second.Token != first.Token {
		t.Fatalf("second = %+v, first = %+v", second, first)
	}
	if env.gateway.calls != 1 {
		t.Fatalf("gateway calls = %d, want 1", env.gateway.calls)
	}

	var n int64
	if err := env.db.Model(&models.Transaction{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("transactions = %d, want 1", n)
	}

	if _, err := env.svc.Payments.CreateToken(ctx, u.ID, "FREE", ""); !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("free plan err = %v", err)
	}
	if _, err := env.svc.Payments.CreateToken(ctx, u.ID, "PLATINUM", ""); !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("unknown plan err = %v", err)
	}
}

func TestCreateTokenGatewayFailureMarksFailed(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.CreateSnapFunc = func(context.Context, payment.SnapRequest) (payment.SnapResult, error) {
		return payment.SnapResult{}, errors.New("midtrans down")
	}
	u := testutil.CreateUser(t, env.db, "pay-down")

	if _, err := env.svc.Payments.CreateToken(context.Background(), u.ID, "SILVER", ""); !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("err = %v", err)
	}
	var tx models.Transaction
	if err := env.db.First(&tx).Error; err != nil {
		t.Fatal(err)
	}
	if tx.Status != models.TransactionFailed {
		t.Fatalf("status = %s, want FAILED", tx.Status)
	}
}

func TestCreateTokenWithoutGateway(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.Gateway = nil })
	u := testutil.CreateUser(t, env.db, "pay-none")
	if _, err := env.svc.Payments.CreateToken(context.Background(), u.ID, "SILVER", ""); !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestNotificationSuccessUpgradesPlan(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.db, "pay-ok")
	ctx := context.Background()
	tok := startSilver(t, env, u)

	res, err := env.svc.Payments.HandleNotification(ctx, notification(t, tok.OrderID, "settlement", "99000.00"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Applied || res.Status != models.TransactionSuccess {
		t.Fatalf("result = %+v", res)
	}

	var got models.User
	if err := env.db.First(&got, u.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Plan != plans.TierSilver || got.PlanExpiresAt == nil {
		t.Fatalf("user plan = %s, expires = %v", got.Plan, got.PlanExpiresAt)
	}
	wantExpiry := time.Now().AddDate(0, 0, env.svc.Plans.Get(plans.TierSilver).ActiveDays)
	if d := got.PlanExpiresAt.Sub(wantExpiry); d > time.Minute || d < -time.Minute {
		t.Fatalf("expires = %v, want about %v", got.PlanExpiresAt, wantExpiry)
	}

	// The same delivery again is recorded once and changes nothing.
	dup, err := env.svc.Payments.HandleNotification(ctx, notification(t, tok.OrderID, "settlement", "99000.00"))
	if err != nil {
		t.Fatal(err)
	}
	if !dup.Duplicate || dup.Applied {
		t.Fatalf("duplicate = %+v", dup)
	}

	// A later failure cannot undo a success.
	late, err := env.svc.Payments.HandleNotification(ctx, notification(t, tok.OrderID, "expire", "99000.00"))
	if err != nil {
		t.Fatal(err)
	}
	if late.Applied || late.Status != models.TransactionSuccess {
		t.Fatalf("late failure = %+v", late)
	}

	var events int64
	if err := env.db.Model(&models.WebhookEvent{}).Count(&events).Error; err != nil {
		t.Fatal(err)
	}
	if events != 2 {
		t.Fatalf("webhook events = %d, want 2", events)
	}
}

func TestNotificationRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.db, "pay-bad")
	ctx := context.Background()
	tok := startSilver(t, env, u)

	tampered := payment.BuildNotification(tok.OrderID, "settlement", "99000.00", testServerKey, "TX-1")
	tampered.GrossAmount = "1.00"
	raw, _ := json.Marshal(tampered)
	if _, err := env.svc.Payments.HandleNotification(ctx, raw); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("tampered err = %v", err)
	}

	if _, err := env.svc.Payments.HandleNotification(ctx, []byte(`not json`)); !errors.Is(err, ErrInvalidNotification) {
		t.Fatalf("garbage err = %v", err)
	}

	if _, err := env.svc.Payments.HandleNotification(ctx, notification(t, "NIKA-missing", "settlement", "99000.00")); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("missing order err = %v", err)
	}

	var events int64
	if err := env.db.Model(&models.WebhookEvent{}).Count(&events).Error; err != nil {
		t.Fatal(err)
	}
	if events != 0 {
		t.Fatalf("webhook events = %d, want 0", events)
	}
}

func TestNotificationAmountMismatchIsRecordedNotApplied(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.db, "pay-amount")
	tok := startSilver(t, env, u)

	res, err := env.svc.Payments.HandleNotification(context.Background(), notification(t, tok.OrderID, "settlement", "1000.00"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Applied || res.Status != models.TransactionPending {
		t.Fatalf("result = %+v", res)
	}
	var ev models.WebhookEvent
	if err := env.db.First(&ev).Error; err != nil {
		t.Fatal(err)
	}
	if ev.ProcessingError == "" {
		t.Fatal("processing error not recorded")
	}
}

func TestSimulatorAndAdminOverride(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.db, "pay-sim")
	ctx := context.Background()
	tok := startSilver(t, env, u)

	if _, err := env.svc.Payments.Simulate(ctx, false, tok.OrderID, "settlement"); !errors.Is(err, ErrSimulatorDisabled) {
		t.Fatalf("non-admin simulate err = %v", err)
	}
	res, err := env.svc.Payments.Simulate(ctx, true, tok.OrderID, "settlement")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Applied {
		t.Fatalf("simulate result = %+v", res)
	}

	var tx models.Transaction
	if err := env.db.Where("order_id = ?", tok.OrderID).First(&tx).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.Payments.AdminSetStatus(ctx, 1, tx.ID, "FAILED"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("override of settled tx err = %v", err)
	}

	other := startSilver(t, env, u)
	var pending models.Transaction
	if err := env.db.Where("order_id = ?", other.OrderID).First(&pending).Error; err != nil {
		t.Fatal(err)
	}
	updated, err := env.svc.Payments.AdminSetStatus(ctx, 1, pending.ID, "failed")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != models.TransactionFailed {
		t.Fatalf("status = %s", updated.Status)
	}
}

func TestUpgradeRefreshesCachedPage(t *testing.T) {
	env := newTestEnv(t, withPageCache(t))
	u := testutil.CreateUser(t, env.db, "pay-cache")
	ctx := context.Background()
	const watermark = "Dibuat dengan nika.id"

	page, err := env.svc.Public.RenderInvitation(ctx, "pay-cache", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page.Body), watermark) {
		t.Fatal("free page should carry the watermark")
	}

	tok, err := env.svc.Payments.CreateToken(ctx, u.ID, "gold", "")
	if err != nil {
		t.Fatal(err)
	}
	res, err := env.svc.Payments.HandleNotification(ctx, notification(t, tok.OrderID, "settlement", "199000.00"))
	if err != nil || !res.Applied {
		t.Fatalf("notification = %+v, %v", res, err)
	}

	page, err = env.svc.Public.RenderInvitation(ctx, "pay-cache", "")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(page.Body), watermark) {
		t.Fatal("cached free page served after the upgrade")
	}
}
