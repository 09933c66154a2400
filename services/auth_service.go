package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"nika.id/configs/configslog"
	"nika.id/models"
	"nika.id/pkg/plans"
	"nika.id/pkg/slugify"
	"nika.id/repositories"
	"nika.id/utils"

	"github.com/tidwall/sjson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuthServiceError is a login or registration failure whose text is shown to the user.
type AuthServiceError string

func (e AuthServiceError) Error() string { return string(e) }

const (
	ErrInvalidCredentials AuthServiceError = "email atau kata sandi salah"
	ErrAccountInactive    AuthServiceError = "akun Anda dinonaktifkan"
	ErrEmailTaken         AuthServiceError = "email sudah terdaftar"
	ErrWeakPassword       AuthServiceError = "kata sandi minimal 8 karakter"
	ErrInvalidRegister    AuthServiceError = "data pendaftaran tidak valid"
	ErrPasswordMismatch   AuthServiceError = "kata sandi saat ini salah"
)

const MinPasswordLength = 8

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name        string
	PartnerName string
	Email       string
	Password    string
	Slug        string
	WeddingDate *time.Time
}

// IAuthService handles accounts: sign-up, password login, Google login and password changes.
type IAuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	LoginWithGoogle(ctx context.Context, profile GoogleProfile) (*models.User, error)
	ChangePassword(ctx context.Context, userID uint, current, next string) error
}

// AuthService implements IAuthService.
type AuthService struct {
	db          *gorm.DB
	users       repositories.IUserRepository
	invitations repositories.IInvitationRepository
}

// NewAuthService wires the account repositories.
func NewAuthService(db *gorm.DB, users repositories.IUserRepository, invitations repositories.IInvitationRepository) IAuthService {
	return &AuthService{db: db, users: users, invitations: invitations}
}

func normalizeEmail(email string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	return email, true
}

// initialInvitationData seeds the editor with the couple's names so a fresh page is not all placeholders.
func initialInvitationData(u *models.User) datatypes.JSON {
	raw := []byte("{}")
	raw, _ = sjson.SetBytes(raw, "groom.name", u.Name)
	if u.PartnerName != "" {
		raw, _ = sjson.SetBytes(raw, "bride.name", u.PartnerName)
	}
	if u.WeddingDate != nil {
		raw, _ = sjson.SetBytes(raw, "event.date", u.WeddingDate.Format("2006-01-02"))
	}
	return datatypes.JSON(raw)
}

// createAccount inserts the user and its invitation atomically.
func (s *AuthService) createAccount(ctx context.Context, u *models.User) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.WithTx(ctx, tx)
		if err := s.users.Create(txCtx, u); err != nil {
			return err
		}
		return s.invitations.Create(txCtx, &models.Invitation{UserID: u.ID, Data: initialInvitationData(u)})
	})
	if errors.Is(err, repositories.ErrDuplicate) {
		// A concurrent signup won the race; report which unique key it took.
		if taken, _ := s.users.SlugExists(ctx, u.InvitationSlug, 0); taken {
			return ErrSlugTaken
		}
		return ErrEmailTaken
	}
	return err
}

// Register creates an active FREE account with a starter invitation at a free slug.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || utf8.RuneCountInString(name) > 120 {
		return nil, ErrInvalidRegister
	}
	email, ok := normalizeEmail(in.Email)
	if !ok {
		return nil, ErrInvalidRegister
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	slug := slugify.Make(in.Slug)
	if strings.TrimSpace(in.Slug) == "" {
		slug = slugify.Make(name + " " + in.PartnerName)
	}
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	taken, err := s.users.SlugExists(ctx, slug, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Name:           name,
		Email:          email,
		PasswordHash:   string(hash),
		Role:           models.RoleUser,
		InvitationSlug: slug,
		TemplateSlug:   "simple-free",
		PartnerName:    strings.TrimSpace(in.PartnerName),
		WeddingDate:    in.WeddingDate,
		Plan:           plans.TierFree,
		IsActive:       true,
	}
	if err := s.createAccount(ctx, u); err != nil {
		return nil, err
	}
	configslog.SLog.Infof("User registered: %s (slug %s)", email, slug)
	return u, nil
}

// Login checks the password of an active account. Unknown emails and wrong passwords fail alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}
	return u, nil
}

// LoginWithGoogle signs in by Google id, links an existing email account, or creates a new one.
func (s *AuthService) LoginWithGoogle(ctx context.Context, p GoogleProfile) (*models.User, error) {
	if p.ID == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.FindByGoogleID(ctx, p.ID)
	if err == nil {
		if !u.IsActive {
			return nil, ErrAccountInactive
		}
		return u, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	email, ok := normalizeEmail(p.Email)
	if !ok || !p.VerifiedEmail {
		return nil, ErrInvalidCredentials
	}
	u, err = s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !u.IsActive {
			return nil, ErrAccountInactive
		}
		if err := s.users.Update(ctx, u.ID, map[string]any{"google_id": p.ID}); err != nil {
			return nil, err
		}
		gid := p.ID
		u.GoogleID = &gid
		configslog.SLog.Infof("Google account linked to user %d", u.ID)
		return u, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	slug, err := s.freeSlug(ctx, name)
	if err != nil {
		return nil, err
	}
	gid := p.ID
	u = &models.User{
		Name:           name,
		Email:          email,
		GoogleID:       &gid,
		Role:           models.RoleUser,
		InvitationSlug: slug,
		TemplateSlug:   "simple-free",
		Plan:           plans.TierFree,
		IsActive:       true,
	}
	if err := s.createAccount(ctx, u); err != nil {
		configslog.Log.Error("Google signup failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return u, nil
}

// freeSlug derives a slug from name and appends a random suffix until it is unused.
func (s *AuthService) freeSlug(ctx context.Context, name string) (string, error) {
	base := slugify.Make(name)
	if len(base) > slugify.MaxLength-7 {
		base = strings.Trim(base[:slugify.MaxLength-7], "-")
	}
	if validateSlug(base) == nil {
		if taken, err := s.users.SlugExists(ctx, base, 0); err != nil {
			return "", err
		} else if !taken {
			return base, nil
		}
	}
	if base == "" {
		base = "undangan"
	}
	for i := 0; i < 5; i++ {
		suffix, err := utils.GenerateSecureRandomString(3)
		if err != nil {
			return "", err
		}
		candidate := base + "-" + strings.ToLower(suffix)
		if validateSlug(candidate) != nil {
			continue
		}
		taken, err := s.users.SlugExists(ctx, candidate, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrSlugTaken
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if u.PasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
			return ErrPasswordMismatch
		}
	}
	if utf8.RuneCountInString(next) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, userID, map[string]any{"password_hash": string(hash)})
}
