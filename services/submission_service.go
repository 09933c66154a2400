package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"nika.id/configs/configslog"
	"nika.id/models"
	"nika.id/pkg/events"
	"nika.id/pkg/plans"
	"nika.id/repositories"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubmissionServiceError is a guest form failure shown on the public page.
type SubmissionServiceError string

func (e SubmissionServiceError) Error() string { return string(e) }

const (
	ErrInvalidSubmission SubmissionServiceError = "data yang dikirim tidak valid"
	ErrRSVPDisabled      SubmissionServiceError = "konfirmasi kehadiran tidak tersedia untuk undangan ini"
	ErrGuestLimitReached SubmissionServiceError = "kuota tamu undangan ini sudah penuh"
)

const (
	SubmissionRSVP    = "RSVP"
	SubmissionMessage = "MESSAGE"

	maxMessageRunes = 1000
	maxPartySize    = 10
)

// SubmissionInput is the body of POST /api/public/submit.
type SubmissionInput struct {
	Slug       string `json:"slug"`
	Type       string `json:"type"`
	GuestName  string `json:"guestName"`
	Attendance string `json:"attendance"`
	Guests     int    `json:"guests"`
	Message    string `json:"message"`
}

// ISubmissionService accepts RSVPs and guestbook messages from public pages.
type ISubmissionService interface {
	Submit(ctx context.Context, in SubmissionInput) error
}

// SubmissionService implements ISubmissionService.
type SubmissionService struct {
	db          *gorm.DB
	users       repositories.IUserRepository
	invitations repositories.IInvitationRepository
	rsvps       repositories.IRSVPRepository
	messages    repositories.IGuestMessageRepository
	plans       *plans.Registry
	events      events.Publisher
}

// NewSubmissionService wires the guest repositories and plans.
func NewSubmissionService(opts Options, r repos) ISubmissionService {
	return &SubmissionService{
		db:          opts.DB,
		users:       r.users,
		invitations: r.invitations,
		rsvps:       r.rsvps,
		messages:    r.messages,
		plans:       opts.Plans,
		events:      opts.Events,
	}
}

// Submit validates in and stores it for the invitation at in.Slug. RSVPs stop at the plan's guest cap.
func (s *SubmissionService) Submit(ctx context.Context, in SubmissionInput) error {
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.GuestName = cleanGuestName(in.GuestName)
	if in.Slug == "" || in.GuestName == "" {
		return ErrInvalidSubmission
	}
	switch strings.ToUpper(strings.TrimSpace(in.Type)) {
	case SubmissionRSVP:
		return s.submitRSVP(ctx, in)
	case SubmissionMessage:
		return s.submitMessage(ctx, in)
	default:
		return ErrInvalidSubmission
	}
}

func (s *SubmissionService) owner(ctx context.Context, slug string) (*models.User, error) {
	u, err := s.users.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvitationNotFound
	}
	return u, nil
}

// rsvpEnabled combines the plan and the couple's own switch in the invitation data.
func (s *SubmissionService) rsvpEnabled(ctx context.Context, u *models.User, limits plans.Limits) (bool, error) {
	if !limits.CanUseRSVP {
		return false, nil
	}
	inv, err := s.invitations.FindByUserID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	v := gjson.GetBytes(inv.Data, "rsvp.enabled")
	return !v.Exists() || v.Bool(), nil
}

func (s *SubmissionService) submitRSVP(ctx context.Context, in SubmissionInput) error {
	attendance := models.Attendance(strings.TrimSpace(in.Attendance))
	if !attendance.Valid() {
		return ErrInvalidSubmission
	}
	guests := in.Guests
	if attendance == models.AttendanceNo {
		guests = 0
	} else if guests < 1 {
		guests = 1
	}
	if guests > maxPartySize {
		return ErrInvalidSubmission
	}

	u, err := s.owner(ctx, in.Slug)
	if err != nil {
		return err
	}
	tier := u.EffectivePlan(nowFunc())
	limits := s.plans.Get(tier)
	enabled, err := s.rsvpEnabled(ctx, u, limits)
	if err != nil {
		return err
	}
	if !enabled {
		return ErrRSVPDisabled
	}

	rsvp := &models.RSVP{UserID: u.ID, GuestName: in.GuestName, Attendance: attendance, Guests: guests}
	// The owner row lock serialises concurrent submissions so the cap cannot be overshot.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.WithTx(ctx, tx)
		if _, err := s.users.FindByIDForUpdate(txCtx, u.ID); err != nil {
			return err
		}
		current, err := s.rsvps.CountByUser(txCtx, u.ID)
		if err != nil {
			return err
		}
		if s.plans.GuestCapReached(tier, current) {
			return ErrGuestLimitReached
		}
		return s.rsvps.Create(txCtx, rsvp)
	})
	if err != nil {
		if !errors.Is(err, ErrGuestLimitReached) {
			configslog.Log.Error("RSVP submit failed", zap.String("slug", in.Slug), zap.Error(err))
		}
		return err
	}

	events.PublishAsync(s.events, events.Event{
		Type:       events.RSVPCreated,
		Key:        u.InvitationSlug,
		OccurredAt: nowFunc(),
		Payload:    map[string]any{"userId": u.ID, "guestName": rsvp.GuestName, "attendance": rsvp.Attendance, "guests": rsvp.Guests},
	})
	return nil
}

// submitMessage stores a guestbook entry as PENDING; it shows up on the page once approved.
func (s *SubmissionService) submitMessage(ctx context.Context, in SubmissionInput) error {
	msg := strings.TrimSpace(in.Message)
	if msg == "" || utf8.RuneCountInString(msg) > maxMessageRunes {
		return ErrInvalidSubmission
	}
	u, err := s.owner(ctx, in.Slug)
	if err != nil {
		return err
	}
	gm := &models.GuestMessage{UserID: u.ID, GuestName: in.GuestName, Message: msg, Status: models.MessagePending}
	if err := s.messages.Create(ctx, gm); err != nil {
		configslog.Log.Error("guest message submit failed", zap.String("slug", in.Slug), zap.Error(err))
		return err
	}
	events.PublishAsync(s.events, events.Event{
		Type:       events.MessageCreated,
		Key:        u.InvitationSlug,
		OccurredAt: nowFunc(),
		Payload:    map[string]any{"userId": u.ID, "messageId": gm.ID, "guestName": gm.GuestName},
	})
	return nil
}
