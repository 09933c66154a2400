package services

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"

	"nika.id/configs/configslog"
	"nika.id/models"
	"nika.id/pkg/cache"
	"nika.id/pkg/queryparams"
	"nika.id/pkg/slugify"
	"nika.id/pkg/themes"
	"nika.id/repositories"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// TemplateServiceError is a template admin failure.
type TemplateServiceError string

func (e TemplateServiceError) Error() string { return string(e) }

const (
	ErrTemplateNotFound     TemplateServiceError = "template tidak ditemukan"
	ErrInvalidTemplate      TemplateServiceError = "data template tidak valid"
	ErrTemplateSlugTaken    TemplateServiceError = "slug template sudah dipakai"
	ErrTemplateUnresolvable TemplateServiceError = "slug template tidak dikenal; isi \"base\" dengan desain bawaan"
	ErrInvalidThemeFile     TemplateServiceError = "berkas tema tidak valid"
)

// TemplateInput creates a template. A nil IsActive means active.
type TemplateInput struct {
	Name      string              `json:"name"`
	Slug      string              `json:"slug"`
	Category  string              `json:"category"`
	Type      models.TemplateType `json:"type"`
	Thumbnail string              `json:"thumbnail"`
	IsActive  *bool               `json:"isActive"`
	Config    json.RawMessage     `json:"config"`
}

// TemplatePatch updates only the fields that are set. The slug is immutable: users reference it.
type TemplatePatch struct {
	Name      *string              `json:"name"`
	Category  *string              `json:"category"`
	Type      *models.TemplateType `json:"type"`
	Thumbnail *string              `json:"thumbnail"`
	IsActive  *bool                `json:"isActive"`
	Config    json.RawMessage      `json:"config"`
}

// ITemplateService manages the design catalogue.
type ITemplateService interface {
	ListActive(ctx context.Context) ([]models.Template, error)
	List(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	Get(ctx context.Context, id uint) (*models.Template, error)
	Create(ctx context.Context, in TemplateInput) (*models.Template, error)
	Update(ctx context.Context, id uint, patch TemplatePatch) (*models.Template, error)
	Delete(ctx context.Context, id uint) error
	ParseThemeFile(filename string, raw []byte) (json.RawMessage, error)
	BaseThemes() []string
}

// TemplateService implements ITemplateService.
type TemplateService struct {
	templates repositories.ITemplateRepository
	users     repositories.IUserRepository
	themes    *themes.Registry
	cache     *cache.PageCache
}

// NewTemplateService wires the template repository, themes and page cache.
func NewTemplateService(opts Options, r repos) ITemplateService {
	return &TemplateService{
		templates: r.templates,
		users:     r.users,
		themes:    opts.Themes,
		cache:     opts.PageCache,
	}
}

func validTemplateType(t models.TemplateType) bool {
	return t == models.TemplateFree || t == models.TemplatePremium
}

// checkConfig validates raw and makes sure slug resolves with it.
func (s *TemplateService) checkConfig(slug string, raw []byte) (datatypes.JSON, error) {
	cfg, err := themes.ParseConfig(raw)
	if err != nil {
		configslog.SLog.Debugf("template config rejected: %v", err)
		return nil, ErrInvalidTemplate
	}
	if _, ok := s.themes.Resolve(slug, cfg); !ok {
		return nil, ErrTemplateUnresolvable
	}
	return datatypes.JSON(cfg.JSON()), nil
}

// BaseThemes names the registered designs a new template can extend through its config "base".
func (s *TemplateService) BaseThemes() []string {
	return s.themes.Slugs()
}

// ListActive returns the designs users may pick.
func (s *TemplateService) ListActive(ctx context.Context) ([]models.Template, error) {
	return s.templates.ListActive(ctx)
}

// List pages through all templates.
func (s *TemplateService) List(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	list, total, err := s.templates.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return queryparams.NewPaginatedResult(list, params, total), nil
}

// Get loads one template.
func (s *TemplateService) Get(ctx context.Context, id uint) (*models.Template, error) {
	t, err := s.templates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

// Create stores a template whose slug resolves to a design, directly or through its config base.
func (s *TemplateService) Create(ctx context.Context, in TemplateInput) (*models.Template, error) {
	name := strings.TrimSpace(in.Name)
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if slug == "" {
		slug = slugify.Make(name)
	}
	if name == "" || !slugify.Valid(slug) {
		return nil, ErrInvalidTemplate
	}
	if in.Type == "" {
		in.Type = models.TemplateFree
	}
	if !validTemplateType(in.Type) {
		return nil, ErrInvalidTemplate
	}
	cfg, err := s.checkConfig(slug, in.Config)
	if err != nil {
		return nil, err
	}
	t := &models.Template{
		Name:      name,
		Slug:      slug,
		Category:  strings.TrimSpace(in.Category),
		Type:      in.Type,
		Thumbnail: strings.TrimSpace(in.Thumbnail),
		IsActive:  in.IsActive == nil || *in.IsActive,
		Config:    cfg,
	}
	if err := s.templates.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrTemplateSlugTaken
		}
		return nil, err
	}
	configslog.SLog.Infof("Template %s created (ID: %d)", t.Slug, t.ID)
	return t, nil
}

// Update applies p and refreshes the pages of every user on the template.
func (s *TemplateService) Update(ctx context.Context, id uint, p TemplatePatch) (*models.Template, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data := map[string]any{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, ErrInvalidTemplate
		}
		data["name"] = name
	}
	if p.Category != nil {
		data["category"] = strings.TrimSpace(*p.Category)
	}
	if p.Type != nil {
		if !validTemplateType(*p.Type) {
			return nil, ErrInvalidTemplate
		}
		data["type"] = *p.Type
	}
	if p.Thumbnail != nil {
		data["thumbnail"] = strings.TrimSpace(*p.Thumbnail)
	}
	if p.IsActive != nil {
		data["is_active"] = *p.IsActive
	}
	if len(p.Config) > 0 {
		cfg, err := s.checkConfig(t.Slug, p.Config)
		if err != nil {
			return nil, err
		}
		data["config"] = cfg
	}
	if err := s.templates.Update(ctx, id, data); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	s.invalidateUsers(ctx, t.Slug)
	return s.Get(ctx, id)
}

// Delete removes the template row. Users keep its slug; one that no longer resolves renders the not-found page.
func (s *TemplateService) Delete(ctx context.Context, id uint) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	configslog.SLog.Infof("Template %s deleted (%d users still reference it)", t.Slug, t.UsageCount)
	s.invalidateUsers(ctx, t.Slug)
	return nil
}

// invalidateUsers drops cached pages of every invitation using templateSlug.
func (s *TemplateService) invalidateUsers(ctx context.Context, templateSlug string) {
	if !s.cache.Enabled() {
		return
	}
	slugs, err := s.users.ListSlugsByTemplate(ctx, templateSlug)
	if err != nil {
		configslog.Log.Warn("could not list invitations for cache invalidation", zap.String("template", templateSlug), zap.Error(err))
		return
	}
	for _, slug := range slugs {
		s.cache.Invalidate(ctx, slug)
	}
}

// ParseThemeFile turns an uploaded .yaml/.yml/.json theme file into the stored config JSON.
func (s *TemplateService) ParseThemeFile(filename string, raw []byte) (json.RawMessage, error) {
	var (
		cfg themes.Config
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		cfg, err = themes.ParseConfig(raw)
	case ".yaml", ".yml":
		cfg, err = themes.ParseConfigYAML(raw)
	default:
		return nil, ErrInvalidThemeFile
	}
	if err != nil {
		configslog.SLog.Debugf("theme file %s rejected: %v", filename, err)
		return nil, ErrInvalidThemeFile
	}
	return json.RawMessage(cfg.JSON()), nil
}
