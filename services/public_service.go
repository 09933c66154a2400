package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"nika.id/configs/configslog"
	"nika.id/models"
	"nika.id/pkg/cache"
	"nika.id/pkg/plans"
	"nika.id/pkg/themes"
	"nika.id/pkg/weddingdata"
	"nika.id/repositories"

	"go.uber.org/zap"
)

const (
	maxGuestNameRunes  = 100
	guestbookPageLimit = 50
)

// RenderedPage is a public invitation ready to write. TemplateFound is false for the fallback page.
type RenderedPage struct {
	Body []byte
	// TemplateFound is false when the body is the "Template Tidak Ditemukan" page.
	TemplateFound bool
}

// IPublicService renders public invitation pages.
type IPublicService interface {
	RenderInvitation(ctx context.Context, slug, guest string) (*RenderedPage, error)
}

// PublicService implements IPublicService, caching pages when a cache is configured.
type PublicService struct {
	users       repositories.IUserRepository
	invitations repositories.IInvitationRepository
	templates   repositories.ITemplateRepository
	messages    repositories.IGuestMessageRepository
	plans       *plans.Registry
	themes      *themes.Registry
	renderer    *themes.Renderer
	cache       *cache.PageCache
	baseURL     string
}

// NewPublicService wires the repositories, themes, renderer and page cache.
func NewPublicService(opts Options, r repos) IPublicService {
	return &PublicService{
		users:       r.users,
		invitations: r.invitations,
		templates:   r.templates,
		messages:    r.messages,
		plans:       opts.Plans,
		themes:      opts.Themes,
		renderer:    opts.Renderer,
		cache:       opts.PageCache,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
	}
}

func cleanGuestName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > maxGuestNameRunes {
		s = string([]rune(s)[:maxGuestNameRunes])
	}
	return s
}

// RenderInvitation counts the visit and renders the page for slug, personalised for guest.
func (s *PublicService) RenderInvitation(ctx context.Context, slug, guest string) (*RenderedPage, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
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
	if err := s.users.IncrementViews(ctx, u.ID); err != nil {
		configslog.Log.Warn("view counter update failed", zap.Uint("user_id", u.ID), zap.Error(err))
	}

	guest = cleanGuestName(guest)
	if body, ok := s.cache.Get(ctx, slug, guest); ok {
		return &RenderedPage{Body: body, TemplateFound: true}, nil
	}

	cfg := s.templateConfig(ctx, u.TemplateSlug)
	theme, ok := s.themes.Resolve(u.TemplateSlug, cfg)
	if !ok {
		configslog.Log.Warn("invitation template cannot be resolved", zap.String("slug", slug), zap.String("template", u.TemplateSlug))
		var buf bytes.Buffer
		if err := s.renderer.RenderNotFound(&buf, u.TemplateSlug); err != nil {
			return nil, err
		}
		return &RenderedPage{Body: buf.Bytes(), TemplateFound: false}, nil
	}

	page, err := s.buildPage(ctx, u, theme, cfg, guest)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, page); err != nil {
		configslog.Log.Error("invitation render failed", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	s.cache.Set(ctx, slug, guest, buf.Bytes())
	return &RenderedPage{Body: buf.Bytes(), TemplateFound: true}, nil
}

func (s *PublicService) templateConfig(ctx context.Context, templateSlug string) themes.Config {
	tpl, err := s.templates.FindBySlug(ctx, templateSlug)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			configslog.Log.Warn("template lookup failed", zap.String("template", templateSlug), zap.Error(err))
		}
		return themes.Config{}
	}
	cfg, err := themes.ParseConfig(tpl.Config)
	if err != nil {
		configslog.Log.Warn("stored template config is invalid, ignoring it", zap.String("template", templateSlug), zap.Error(err))
		return themes.Config{}
	}
	return cfg
}

func (s *PublicService) buildPage(ctx context.Context, u *models.User, theme themes.Theme, cfg themes.Config, guest string) (themes.Page, error) {
	var raw []byte
	inv, err := s.invitations.FindByUserID(ctx, u.ID)
	switch {
	case err == nil:
		raw = inv.Data
	case !errors.Is(err, repositories.ErrNotFound):
		return themes.Page{}, err
	}

	now := nowFunc()
	fallbackDate := now.AddDate(0, 3, 0)
	if u.WeddingDate != nil {
		fallbackDate = *u.WeddingDate
	}

	approved, err := s.messages.ListApprovedByUser(ctx, u.ID, guestbookPageLimit)
	if err != nil {
		return themes.Page{}, err
	}
	msgs := make([]themes.Message, 0, len(approved))
	for _, m := range approved {
		msgs = append(msgs, themes.Message{GuestName: m.GuestName, Message: m.Message, CreatedAt: m.CreatedAt})
	}

	return themes.Page{
		Theme:       theme,
		Data:        weddingdata.Map(raw, guest, fallbackDate),
		Slug:        u.InvitationSlug,
		Limits:      s.plans.Get(u.EffectivePlan(now)),
		Messages:    msgs,
		ExtraFields: cfg.ExtraFields,
		BaseURL:     s.baseURL,
		Now:         now,
	}, nil
}
