package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"nika.id/configs/configslog"
	"nika.id/pkg/cache"
	"nika.id/pkg/plans"
	"nika.id/pkg/themes"
	"nika.id/repositories"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// InvitationServiceError is an editor failure shown to the user.
type InvitationServiceError string

func (e InvitationServiceError) Error() string { return string(e) }

const (
	ErrInvitationNotFound    InvitationServiceError = "undangan tidak ditemukan"
	ErrInvalidInvitationData InvitationServiceError = "data undangan harus berupa objek JSON"
	ErrInvitationTooLarge    InvitationServiceError = "data undangan terlalu besar"
)

const MaxInvitationBytes = 256 << 10

// EditorState is what the panel editor loads: the raw blob plus the limits the UI greys out against.
type EditorState struct {
	Data         json.RawMessage     `json:"data"`
	Slug         string              `json:"slug"`
	TemplateSlug string              `json:"templateSlug"`
	Plan         plans.Tier          `json:"plan"`
	Limits       plans.Limits        `json:"limits"`
	ExtraFields  []themes.ExtraField `json:"extraFields"`
}

// SaveResult is what was stored and which gated fields the plan dropped.
type SaveResult struct {
	Data    json.RawMessage `json:"data"`
	Clamped []string        `json:"clamped"`
}

// IInvitationService loads and saves the wedding document in the editor.
type IInvitationService interface {
	GetEditor(ctx context.Context, userID uint) (*EditorState, error)
	Save(ctx context.Context, userID uint, raw []byte) (*SaveResult, error)
}

// InvitationService implements IInvitationService.
type InvitationService struct {
	users       repositories.IUserRepository
	invitations repositories.IInvitationRepository
	templates   repositories.ITemplateRepository
	plans       *plans.Registry
	cache       *cache.PageCache
}

// NewInvitationService wires the invitation repositories, plans and page cache.
func NewInvitationService(opts Options, r repos) IInvitationService {
	return &InvitationService{
		users:       r.users,
		invitations: r.invitations,
		templates:   r.templates,
		plans:       opts.Plans,
		cache:       opts.PageCache,
	}
}

// GetEditor returns the stored document with the limits and extra fields of the user's template.
func (s *InvitationService) GetEditor(ctx context.Context, userID uint) (*EditorState, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	data := json.RawMessage("{}")
	inv, err := s.invitations.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		if len(inv.Data) > 0 && gjson.ValidBytes(inv.Data) {
			data = json.RawMessage(inv.Data)
		}
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}

	tier := u.EffectivePlan(nowFunc())
	state := &EditorState{
		Data:         data,
		Slug:         u.InvitationSlug,
		TemplateSlug: u.TemplateSlug,
		Plan:         tier,
		Limits:       s.plans.Get(tier),
		ExtraFields:  []themes.ExtraField{},
	}
	if tpl, err := s.templates.FindBySlug(ctx, u.TemplateSlug); err == nil {
		if cfg, err := themes.ParseConfig(tpl.Config); err == nil && cfg.ExtraFields != nil {
			state.ExtraFields = cfg.ExtraFields
		}
	}
	return state, nil
}

// Save replaces the whole blob after clamping it to the effective plan.
func (s *InvitationService) Save(ctx context.Context, userID uint, raw []byte) (*SaveResult, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > MaxInvitationBytes {
		return nil, ErrInvitationTooLarge
	}
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return nil, ErrInvalidInvitationData
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	limits := s.plans.Get(u.EffectivePlan(nowFunc()))
	clamped, changes := plans.Enforce(limits, raw)
	if err := s.invitations.SaveData(ctx, userID, datatypes.JSON(clamped)); err != nil {
		configslog.Log.Error("Invitation save failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}
	if len(changes) > 0 {
		configslog.SLog.Debugf("Invitation of user %d clamped to plan %s: %v", userID, u.Plan, changes)
	}
	s.cache.Invalidate(ctx, u.InvitationSlug)
	if changes == nil {
		changes = []string{}
	}
	return &SaveResult{Data: json.RawMessage(clamped), Clamped: changes}, nil
}
