package services

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"nika.id/models"
	"nika.id/pkg/plans"
	"nika.id/repositories"
)

// GuestSummary is the panel's guest-list header: responses so far against the plan cap.
type GuestSummary struct {
	Stats      repositories.RSVPStats `json:"stats"`
	Used       int64                  `json:"used"`
	Cap        int                    `json:"cap"`
	CapReached bool                   `json:"capReached"`
	Plan       plans.Tier             `json:"plan"`
}

// IGuestService serves the couple's guest list pages.
type IGuestService interface {
	Summary(ctx context.Context, userID uint) (*GuestSummary, error)
	ListRSVPs(ctx context.Context, userID uint) ([]models.RSVP, error)
	ListMessages(ctx context.Context, userID uint) ([]models.GuestMessage, error)
	WriteCSV(ctx context.Context, userID uint, w io.Writer) error
}

// GuestService implements IGuestService.
type GuestService struct {
	users    repositories.IUserRepository
	rsvps    repositories.IRSVPRepository
	messages repositories.IGuestMessageRepository
	plans    *plans.Registry
}

// NewGuestService wires the guest repositories and the plan limits.
func NewGuestService(registry *plans.Registry, r repos) IGuestService {
	return &GuestService{users: r.users, rsvps: r.rsvps, messages: r.messages, plans: registry}
}

// Summary counts the responses against the cap of the user's effective plan.
func (s *GuestService) Summary(ctx context.Context, userID uint) (*GuestSummary, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	stats, err := s.rsvps.StatsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	tier := u.EffectivePlan(nowFunc())
	return &GuestSummary{
		Stats:      stats,
		Used:       stats.Responses,
		Cap:        s.plans.Get(tier).MaxGuests,
		CapReached: s.plans.GuestCapReached(tier, stats.Responses),
		Plan:       tier,
	}, nil
}

// ListRSVPs returns the user's RSVP answers, newest first.
func (s *GuestService) ListRSVPs(ctx context.Context, userID uint) ([]models.RSVP, error) {
	return s.rsvps.ListByUser(ctx, userID)
}

// ListMessages returns all guestbook messages of the user, whatever their status.
func (s *GuestService) ListMessages(ctx context.Context, userID uint) ([]models.GuestMessage, error) {
	return s.messages.ListByUser(ctx, userID)
}

// WriteCSV exports the guest list for spreadsheets.
func (s *GuestService) WriteCSV(ctx context.Context, userID uint, w io.Writer) error {
	list, err := s.rsvps.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Nama Tamu", "Kehadiran", "Jumlah Tamu", "Waktu"}); err != nil {
		return err
	}
	for _, r := range list {
		row := []string{r.GuestName, string(r.Attendance), strconv.Itoa(r.Guests), r.CreatedAt.Format("2006-01-02 15:04")}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
