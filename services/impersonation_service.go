package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"nika.id/models"
	"nika.id/repositories"

	"github.com/golang-jwt/jwt/v5"
)

// ImpersonationServiceError is an impersonation failure shown to the admin.
type ImpersonationServiceError string

func (e ImpersonationServiceError) Error() string { return string(e) }

const (
	ErrImpersonationInvalid ImpersonationServiceError = "tautan penyamaran tidak valid atau kedaluwarsa"
	ErrImpersonateAdmin     ImpersonationServiceError = "tidak dapat menyamar sebagai admin lain"
)

const (
	impersonationTTL      = 2 * time.Minute
	impersonationAudience = "nika.id/impersonate"
)

// ImpersonationClaims is the signed grant. The subject is the target user.
type ImpersonationClaims struct {
	AdminID uint `json:"adm"`
	jwt.RegisteredClaims
}

// Grant is a verified impersonation request.
type Grant struct {
	AdminID uint
	UserID  uint
}

// IImpersonationService issues and redeems short-lived admin login grants.
type IImpersonationService interface {
	Issue(ctx context.Context, adminID, userID uint) (string, error)
	Verify(ctx context.Context, token string) (*Grant, error)
}

// ImpersonationService implements IImpersonationService with HS256 tokens.
type ImpersonationService struct {
	secret []byte
	users  repositories.IUserRepository
}

// NewImpersonationService signs grants with secret.
func NewImpersonationService(secret []byte, users repositories.IUserRepository) IImpersonationService {
	return &ImpersonationService{secret: secret, users: users}
}

// Issue signs a grant for adminID to act as userID. Admins cannot be impersonated.
func (s *ImpersonationService) Issue(ctx context.Context, adminID, userID uint) (string, error) {
	target, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if target.IsAdmin() {
		return "", ErrImpersonateAdmin
	}
	now := nowFunc()
	claims := ImpersonationClaims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(target.ID), 10),
			Audience:  jwt.ClaimStrings{impersonationAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(impersonationTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the grant and that its issuer is still an admin.
func (s *ImpersonationService) Verify(ctx context.Context, token string) (*Grant, error) {
	var claims ImpersonationClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(impersonationAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(nowFunc),
	)
	if err != nil {
		return nil, ErrImpersonationInvalid
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, ErrImpersonationInvalid
	}
	admin, err := s.users.FindByID(ctx, claims.AdminID)
	if err != nil || !models.IsAdminRole(admin.Role) {
		return nil, ErrImpersonationInvalid
	}
	return &Grant{AdminID: claims.AdminID, UserID: uint(userID)}, nil
}
