package repositories_test

import (
	"context"
	"errors"
	"testing"

	"nika.id/internal/testutil"
	"nika.id/models"
	"nika.id/pkg/plans"
	"nika.id/repositories"

	"github.com/shopspring/decimal"
)

func newPendingTx(t *testing.T, repo repositories.ITransactionRepository, userID uint, orderID string) *models.Transaction {
	t.Helper()
	tx := &models.Transaction{
		UserID:  userID,
		OrderID: orderID,
		Plan:    plans.TierSilver,
		Amount:  decimal.NewFromInt(99000),
		Status:  models.TransactionPending,
	}
	if err := repo.Create(context.Background(), tx); err != nil {
		t.Fatalf("create tx: %v", err)
	}
	return tx
}

func TestTransactionRepository_TransitionOnlyFromPending(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewTransactionRepository(db)
	u := testutil.CreateUser(t, db, "pay-user")
	tx := newPendingTx(t, repo, u.ID, "NIKA-1")
	ctx := context.Background()

	ok, err := repo.TransitionFromPending(ctx, tx.ID, map[string]any{"status": models.TransactionSuccess})
	if err != nil || !ok {
		t.Fatalf("first transition = %v, %v", ok, err)
	}
	ok, err = repo.TransitionFromPending(ctx, tx.ID, map[string]any{"status": models.TransactionFailed})
	if err != nil || ok {
		t.Fatalf("second transition = %v, %v; want no-op", ok, err)
	}
	got, err := repo.FindByOrderID(ctx, "NIKA-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.TransactionSuccess {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestTransactionRepository_IdempotencyKeyPerUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewTransactionRepository(db)
	a := testutil.CreateUser(t, db, "user-a")
	b := testutil.CreateUser(t, db, "user-b")
	ctx := context.Background()
	key := "k-1"

	first := &models.Transaction{UserID: a.ID, OrderID: "NIKA-A", Plan: plans.TierGold, Amount: decimal.NewFromInt(1), Status: models.TransactionPending, IdempotencyKey: &key}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatal(err)
	}
	dup := &models.Transaction{UserID: a.ID, OrderID: "NIKA-A2", Plan: plans.TierGold, Amount: decimal.NewFromInt(1), Status: models.TransactionPending, IdempotencyKey: &key}
	if err := repo.Create(ctx, dup); !errors.Is(err, repositories.ErrDuplicate) {
		t.Fatalf("same key same user err = %v", err)
	}
	other := &models.Transaction{UserID: b.ID, OrderID: "NIKA-B", Plan: plans.TierGold, Amount: decimal.NewFromInt(1), Status: models.TransactionPending, IdempotencyKey: &key}
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("same key other user: %v", err)
	}

	found, err := repo.FindByIdempotencyKey(ctx, a.ID, key)
	if err != nil || found.OrderID != "NIKA-A" {
		t.Fatalf("FindByIdempotencyKey = %+v, %v", found, err)
	}
}

func TestTransactionRepository_SumSuccessful(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewTransactionRepository(db)
	u := testutil.CreateUser(t, db, "sum-user")
	ctx := context.Background()

	a := newPendingTx(t, repo, u.ID, "NIKA-S1")
	newPendingTx(t, repo, u.ID, "NIKA-S2")
	if _, err := repo.TransitionFromPending(ctx, a.ID, map[string]any{"status": models.TransactionSuccess}); err != nil {
		t.Fatal(err)
	}
	sum, err := repo.SumSuccessful(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Equal(decimal.NewFromInt(99000)) {
		t.Fatalf("sum = %s", sum)
	}
	pending, _ := repo.CountByStatus(ctx, models.TransactionPending)
	if pending != 1 {
		t.Fatalf("pending = %d", pending)
	}
}

func TestWebhookEventRepository_RecordDedupes(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewWebhookEventRepository(db)
	ctx := context.Background()

	ev := func() *models.WebhookEvent {
		return &models.WebhookEvent{Provider: "midtrans", ProviderEventID: "tx-1:settlement", OrderID: "NIKA-1", EventType: "settlement", PayloadJSON: "{}"}
	}
	created, err := repo.Record(ctx, ev())
	if err != nil || !created {
		t.Fatalf("first record = %v, %v", created, err)
	}
	created, err = repo.Record(ctx, ev())
	if err != nil || created {
		t.Fatalf("duplicate record = %v, %v", created, err)
	}
	list, err := repo.ListByOrderID(ctx, "NIKA-1")
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByOrderID = %d, %v", len(list), err)
	}
	if err := repo.MarkProcessed(ctx, list[0].ID, errors.New("boom")); err != nil {
		t.Fatal(err)
	}
}
