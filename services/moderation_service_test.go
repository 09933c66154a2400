package services

import (
	"context"
	"errors"
	"testing"

	"nika.id/internal/testutil"
	"nika.id/models"
	"nika.id/pkg/queryparams"
)

func TestModerationApproveAndDelete(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "mod-test")
	ctx := context.Background()

	for _, name := range []string{"Rina", "Doni"} {
		in := SubmissionInput{Slug: "mod-test", Type: "MESSAGE", GuestName: name, Message: "Barakallah"}
		if err := env.svc.Submissions.Submit(ctx, in); err != nil {
			t.Fatalf("submit %s: %v", name, err)
		}
	}

	pending := queryparams.DefaultListParams("created_at")
	pending.Status = string(models.MessagePending)
	res, err := env.svc.Moderation.List(ctx, pending)
	if err != nil {
		t.Fatal(err)
	}
	list := res.Data.([]models.GuestMessage)
	if len(list) != 2 {
		t.Fatalf("pending = %d, want 2", len(list))
	}

	if err := env.svc.Moderation.Approve(ctx, list[0].ID); err != nil {
		t.Fatal(err)
	}
	// approving twice is a no-op
	if err := env.svc.Moderation.Approve(ctx, list[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := env.svc.Moderation.Delete(ctx, list[1].ID); err != nil {
		t.Fatal(err)
	}

	all := queryparams.DefaultListParams("created_at")
	res, err = env.svc.Moderation.List(ctx, all)
	if err != nil {
		t.Fatal(err)
	}
	left := res.Data.([]models.GuestMessage)
	if len(left) != 1 || left[0].Status != models.MessageApproved {
		t.Fatalf("remaining = %+v", left)
	}

	if err := env.svc.Moderation.Delete(ctx, list[1].ID); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	if err := env.svc.Moderation.Approve(ctx, 9999); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("approve missing err = %v", err)
	}
}
