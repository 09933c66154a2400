package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"nika.id/configs/configslog"
	"nika.id/models"
	"nika.id/pkg/cache"
	"nika.id/pkg/events"
	"nika.id/pkg/plans"
	"nika.id/pkg/queryparams"
	"nika.id/pkg/slugify"
	"nika.id/pkg/themes"
	"nika.id/repositories"
	"nika.id/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserServiceError is an account failure shown to the user or admin.
type UserServiceError string

func (e UserServiceError) Error() string { return string(e) }

const (
	ErrUserNotFound     UserServiceError = "pengguna tidak ditemukan"
	ErrSlugTaken        UserServiceError = "alamat undangan sudah dipakai"
	ErrInvalidSlug      UserServiceError = "alamat undangan hanya boleh huruf kecil, angka dan tanda hubung (3-60 karakter)"
	ErrInvalidPhone     UserServiceError = "nomor WhatsApp tidak valid"
	ErrInvalidSettings  UserServiceError = "data pengaturan tidak valid"
	ErrCannotDeleteSelf UserServiceError = "Anda tidak dapat menghapus akun Anda sendiri dari panel admin"
	ErrPlanRequired     UserServiceError = "template ini memerlukan paket berbayar"
)

func validateSlug(slug string) error {
	if !slugify.Valid(slug) {
		return ErrInvalidSlug
	}
	return nil
}

// SettingsInput is the panel settings form. An empty Slug keeps the current one.
type SettingsInput struct {
	Name        string
	PartnerName string
	Phone       string
	Slug        string
	WeddingDate *time.Time
}

// IUserService manages accounts from the panel and the admin dashboard.
type IUserService interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	UpdateSettings(ctx context.Context, userID uint, in SettingsInput) (*models.User, error)
	ChooseTemplate(ctx context.Context, userID uint, templateSlug string) error
	List(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	SetActive(ctx context.Context, actorID, userID uint, active bool) error
	Delete(ctx context.Context, actorID, userID uint) error
}

// UserService implements IUserService.
type UserService struct {
	db        *gorm.DB
	users     repositories.IUserRepository
	templates repositories.ITemplateRepository
	plans     *plans.Registry
	themes    *themes.Registry
	cache     *cache.PageCache
	events    events.Publisher
}

// NewUserService wires the account repositories, plans, themes and page cache.
func NewUserService(opts Options, r repos) IUserService {
	return &UserService{
		db:        opts.DB,
		users:     r.users,
		templates: r.templates,
		plans:     opts.Plans,
		themes:    opts.Themes,
		cache:     opts.PageCache,
		events:    opts.Events,
	}
}

// GetByID loads a user.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateSettings validates and stores the settings form. A new slug moves the public page.
func (s *UserService) UpdateSettings(ctx context.Context, userID uint, in SettingsInput) (*models.User, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || utf8.RuneCountInString(name) > 120 || utf8.RuneCountInString(in.PartnerName) > 120 {
		return nil, ErrInvalidSettings
	}
	phone := ""
	if strings.TrimSpace(in.Phone) != "" {
		phone, err = utils.NormalizePhone(in.Phone)
		if err != nil {
			return nil, ErrInvalidPhone
		}
	}

	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if slug == "" {
		slug = u.InvitationSlug
	}
	if slug != u.InvitationSlug {
		if err := validateSlug(slug); err != nil {
			return nil, err
		}
		taken, err := s.users.SlugExists(ctx, slug, u.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugTaken
		}
	}

	data := map[string]any{
		"name":            name,
		"partner_name":    strings.TrimSpace(in.PartnerName),
		"phone":           phone,
		"invitation_slug": slug,
		"wedding_date":    in.WeddingDate,
	}
	if err := s.users.Update(ctx, u.ID, data); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	s.cache.Invalidate(ctx, u.InvitationSlug)
	if slug != u.InvitationSlug {
		configslog.SLog.Infof("User %d moved invitation from /%s to /%s", u.ID, u.InvitationSlug, slug)
		s.cache.Invalidate(ctx, slug)
	}
	return s.GetByID(ctx, u.ID)
}

// ChooseTemplate switches the user's design. Premium designs need a paid effective plan.
func (s *UserService) ChooseTemplate(ctx context.Context, userID uint, templateSlug string) error {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	tpl, err := s.templates.FindBySlug(ctx, templateSlug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	if !tpl.IsActive {
		return ErrTemplateNotFound
	}
	if tpl.Type == models.TemplatePremium && !u.EffectivePlan(nowFunc()).IsPaid() {
		return ErrPlanRequired
	}
	if u.TemplateSlug == tpl.Slug {
		return nil
	}

	previous := u.TemplateSlug
	err = s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.WithTx(ctx, tx)
		if err := s.users.Update(txCtx, u.ID, map[string]any{"template_slug": tpl.Slug}); err != nil {
			return err
		}
		if err := s.templates.IncrementUsage(txCtx, tpl.Slug, 1); err != nil {
			return err
		}
		return s.templates.IncrementUsage(txCtx, previous, -1)
	})
	if err != nil {
		configslog.Log.Error("ChooseTemplate failed", zap.Uint("user_id", u.ID), zap.String("template", tpl.Slug), zap.Error(err))
		return err
	}
	s.cache.Invalidate(ctx, u.InvitationSlug)
	return nil
}

// List pages through users for the admin dashboard.
func (s *UserService) List(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	users, total, err := s.users.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return queryparams.NewPaginatedResult(users, params, total), nil
}

// SetActive enables or disables an account. Admins cannot disable themselves.
func (s *UserService) SetActive(ctx context.Context, actorID, userID uint, active bool) error {
	if actorID == userID && !active {
		return ErrCannotDeleteSelf
	}
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, userID, map[string]any{"is_active": active}); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, u.InvitationSlug)
	return nil
}

// Delete removes a user with everything attached to it.
func (s *UserService) Delete(ctx context.Context, actorID, userID uint) error {
	if actorID == userID {
		return ErrCannotDeleteSelf
	}
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.WithTx(ctx, tx)
		if err := s.templates.IncrementUsage(txCtx, u.TemplateSlug, -1); err != nil {
			return err
		}
		return s.users.Delete(txCtx, u.ID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		configslog.Log.Error("User deletion failed", zap.Uint("user_id", userID), zap.Uint("actor_id", actorID), zap.Error(err))
		return err
	}
	s.cache.Invalidate(ctx, u.InvitationSlug)
	configslog.SLog.Infof("User %d (%s) deleted by %d", u.ID, u.Email, actorID)
	events.PublishAsync(s.events, events.Event{
		Type:       events.UserDeleted,
		Key:        u.InvitationSlug,
		OccurredAt: nowFunc(),
		Payload:    map[string]any{"userId": u.ID, "deletedBy": actorID},
	})
	return nil
}
