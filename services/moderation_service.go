package services

import (
	"context"
	"errors"

	"nika.id/models"
	"nika.id/pkg/cache"
	"nika.id/pkg/events"
	"nika.id/pkg/queryparams"
	"nika.id/repositories"
)

// ModerationServiceError is a moderation failure shown to the admin.
type ModerationServiceError string

func (e ModerationServiceError) Error() string { return string(e) }

const (
	ErrMessageNotFound ModerationServiceError = "ucapan tidak ditemukan"
	ErrInvalidAction   ModerationServiceError = "aksi moderasi tidak valid"
)

// IModerationService is the admin guestbook queue.
type IModerationService interface {
	List(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	Approve(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

// ModerationService implements IModerationService.
type ModerationService struct {
	messages repositories.IGuestMessageRepository
	cache    *cache.PageCache
	events   events.Publisher
}

// NewModerationService wires the message repository and the page cache.
func NewModerationService(opts Options, r repos) IModerationService {
	return &ModerationService{messages: r.messages, cache: opts.PageCache, events: opts.Events}
}

// List pages through messages, filtered by status when params carry one.
func (s *ModerationService) List(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	list, total, err := s.messages.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return queryparams.NewPaginatedResult(list, params, total), nil
}

func (s *ModerationService) find(ctx context.Context, id uint) (*models.GuestMessage, error) {
	m, err := s.messages.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return m, nil
}

// invalidate drops the owner's cached page since the guestbook section changed.
func (s *ModerationService) invalidate(ctx context.Context, m *models.GuestMessage) {
	if m.User != nil {
		s.cache.Invalidate(ctx, m.User.InvitationSlug)
	}
}

// Approve publishes a message. Approving twice is a no-op.
func (s *ModerationService) Approve(ctx context.Context, id uint) error {
	m, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if m.Status == models.MessageApproved {
		return nil
	}
	if err := s.messages.SetStatus(ctx, id, models.MessageApproved); err != nil {
		return err
	}
	s.invalidate(ctx, m)
	key := ""
	if m.User != nil {
		key = m.User.InvitationSlug
	}
	events.PublishAsync(s.events, events.Event{
		Type:       events.MessageApproved,
		Key:        key,
		OccurredAt: nowFunc(),
		Payload:    map[string]any{"messageId": m.ID, "userId": m.UserID},
	})
	return nil
}

// Delete removes a message in any status.
func (s *ModerationService) Delete(ctx context.Context, id uint) error {
	m, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if m.Status == models.MessageApproved {
		s.invalidate(ctx, m)
	}
	return nil
}
