package repositories_test

import (
	"context"
	"testing"

	"nika.id/internal/testutil"
	"nika.id/models"
	"nika.id/repositories"
)

func TestRSVPRepository_DeclinedKeepsZeroGuests(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewRSVPRepository(db)
	u := testutil.CreateUser(t, db, "tamu-nol")
	ctx := context.Background()

	declined := &models.RSVP{UserID: u.ID, GuestName: "Sari", Attendance: models.AttendanceNo, Guests: 0}
	if err := repo.Create(ctx, declined); err != nil {
		t.Fatal(err)
	}
	attending := &models.RSVP{UserID: u.ID, GuestName: "Budi", Attendance: models.AttendanceYes, Guests: 4}
	if err := repo.Create(ctx, attending); err != nil {
		t.Fatal(err)
	}

	list, err := repo.ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range list {
		if r.GuestName == "Sari" && r.Guests != 0 {
			t.Fatalf("declined RSVP stored Guests=%d, want 0", r.Guests)
		}
	}

	stats, err := repo.StatsByUser(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := repositories.RSVPStats{Responses: 2, Attending: 1, Declined: 1, TotalGuests: 4}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}
