package services

import (
	"context"
	"errors"
	"testing"

	"nika.id/internal/testutil"
	"nika.id/models"
)

func TestUpdateSettings(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.db, "raka-dewi")
	testutil.CreateUser(t, env.db, "sudah-ada")
	ctx := context.Background()

	cases := []struct {
		name string
		in   SettingsInput
		want error
	}{
		{"empty name", SettingsInput{Name: "  "}, ErrInvalidSettings},
		{"bad phone", SettingsInput{Name: "Raka", Phone: "not a phone"}, ErrInvalidPhone},
		{"reserved slug", SettingsInput{Name: "Raka", Slug: "dashboard"}, ErrInvalidSlug},
		{"bad slug", SettingsInput{Name: "Raka", Slug: "a b"}, ErrInvalidSlug},
		{"taken slug", SettingsInput{Name: "Raka", Slug: "sudah-ada"}, ErrSlugTaken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.svc.Users.UpdateSettings(ctx, u.ID, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	got, err := env.svc.Users.UpdateSettings(ctx, u.ID, SettingsInput{
		Name:        "Raka",
		PartnerName: "Dewi",
		Phone:       "081234567890",
		Slug:        "Raka-Dewi-2026",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.InvitationSlug != "raka-dewi-2026" || got.Phone != "+6281234567890" || got.PartnerName != "Dewi" {
		t.Fatalf("saved %+v", got)
	}

	page, err := env.svc.Public.RenderInvitation(ctx, "raka-dewi-2026", "")
	if err != nil || page == nil {
		t.Fatalf("render at new slug: %v", err)
	}
	if _, err := env.svc.Public.RenderInvitation(ctx, "raka-dewi", ""); !errors.Is(err, ErrInvitationNotFound) {
		t.Fatalf("old slug err = %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateUser(t, env.db, "admin-user")
	if err := env.db.Model(admin).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatal(err)
	}
	victim := testutil.CreateUser(t, env.db, "to-delete")
	ctx := context.Background()

	if err := env.svc.Users.Delete(ctx, admin.ID, admin.ID); !errors.Is(err, ErrCannotDeleteSelf) {
		t.Fatalf("self delete err = %v", err)
	}
	if err := env.svc.Users.Delete(ctx, admin.ID, victim.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.Users.GetByID(ctx, victim.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("after delete err = %v", err)
	}
	var invitations int64
	if err := env.db.Model(&models.Invitation{}).Where("user_id = ?", victim.ID).Count(&invitations).Error; err != nil {
		t.Fatal(err)
	}
	if invitations != 0 {
		t.Fatalf("invitation survived deletion")
	}
	if err := env.svc.Users.Delete(ctx, admin.ID, victim.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestSetActiveHidesInvitation(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.db, "nonaktif")
	ctx := context.Background()

	if err := env.svc.Users.SetActive(ctx, 99, u.ID, false); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.Public.RenderInvitation(ctx, "nonaktif", ""); !errors.Is(err, ErrInvitationNotFound) {
		t.Fatalf("inactive render err = %v", err)
	}
	if err := env.svc.Users.SetActive(ctx, u.ID, u.ID, false); !errors.Is(err, ErrCannotDeleteSelf) {
		t.Fatalf("self deactivate err = %v", err)
	}
}
