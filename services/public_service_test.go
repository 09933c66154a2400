package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"nika.id/internal/testutil"
	"nika.id/models"
)

func TestRenderInvitationCountsEveryView(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.db, "raka-dewi")
	ctx := context.Background()

	const n = 5
	for i := 0; i < n; i++ {
		page, err := env.svc.Public.RenderInvitation(ctx, "raka-dewi", "Pak Joko")
		if err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
		if !page.TemplateFound {
			t.Fatal("template should resolve")
		}
		if !strings.Contains(string(page.Body), "Pak Joko") {
			t.Fatal("guest name missing from page")
		}
	}
	var got models.User
	if err := env.db.First(&got, u.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Views != n {
		t.Fatalf("views = %d, want %d", got.Views, n)
	}
}

func TestRenderInvitationUnknownTemplate(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.db, "lost-theme")
	env.db.Model(u).Update("template_slug", "does-not-exist")

	page, err := env.svc.Public.RenderInvitation(context.Background(), "lost-theme", "")
	if err != nil {
		t.Fatal(err)
	}
	if page.TemplateFound {
		t.Fatal("TemplateFound should be false")
	}
	if !strings.Contains(string(page.Body), "Template Tidak Ditemukan") {
		t.Fatalf("body = %s", page.Body)
	}
}

func TestRenderInvitationMissingSlug(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.svc.Public.RenderInvitation(context.Background(), "ghost", ""); !errors.Is(err, ErrInvitationNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestSaveInvitationClampsToPlan(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.db, "clamp-test")
	ctx := context.Background()

	res, err := env.svc.Invitations.Save(ctx, u.ID, []byte(`{"music":{"enabled":true,"url":"/a.mp3"},"gallery":["1","2","3","4","5"]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Clamped) == 0 {
		t.Fatal("expected clamped paths for FREE plan")
	}
	if strings.Contains(string(res.Data), `"enabled":true`) {
		t.Fatalf("music still enabled: %s", res.Data)
	}

	state, err := env.svc.Invitations.GetEditor(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if string(state.Data) != string(res.Data) {
		t.Fatalf("stored %s, returned %s", state.Data, res.Data)
	}

	if _, err := env.svc.Invitations.Save(ctx, u.ID, []byte(`[1,2]`)); !errors.Is(err, ErrInvalidInvitationData) {
		t.Fatalf("array body err = %v", err)
	}
}

func TestCachedPageKeepsGuestCase(t *testing.T) {
	env := newTestEnv(t, withPageCache(t))
	testutil.CreateUser(t, env.db, "andi-sari")
	ctx := context.Background()

	for _, guest := range []string{"BUDI", "Budi", "BUDI"} {
		page, err := env.svc.Public.RenderInvitation(ctx, "andi-sari", guest)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(page.Body), guest) {
			t.Fatalf("page for %q greets someone else", guest)
		}
	}
}
