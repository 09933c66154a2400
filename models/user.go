package models

import (
	"strings"
	"time"

	"nika.id/pkg/plans"
)

// Role is the authorization role of a user. RoleAdmin is the only value admin guards compare against.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole normalizes a stored or session role string. Older rows were written lowercase.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// IsAdminRole is the single admin check used by middlewares and services.
func IsAdminRole(r Role) bool {
	return ParseRole(string(r)) == RoleAdmin
}

type User struct {
	BaseModel
	Name           string     `gorm:"type:varchar(120);not null" json:"name"`
	Email          string     `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	PasswordHash   string     `gorm:"type:varchar(255)" json:"-"`
	GoogleID       *string    `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	Role           Role       `gorm:"type:varchar(10);not null;default:'USER';index" json:"role"`
	InvitationSlug string     `gorm:"type:varchar(60);uniqueIndex;not null" json:"invitationSlug"`
	TemplateSlug   string     `gorm:"type:varchar(60);not null;default:'simple-free'" json:"templateSlug"`
	PartnerName    string     `gorm:"type:varchar(120)" json:"partnerName"`
	WeddingDate    *time.Time `json:"weddingDate,omitempty"`
	Phone          string     `gorm:"type:varchar(20)" json:"phone"`
	Views          int64      `gorm:"not null;default:0" json:"views"`
	Plan           plans.Tier `gorm:"type:varchar(10);not null;default:'FREE';index" json:"plan"`
	PlanExpiresAt  *time.Time `json:"planExpiresAt,omitempty"`
	IsActive       bool       `gorm:"not null" json:"isActive"`

	Invitation *Invitation `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (u *User) IsAdmin() bool {
	return IsAdminRole(u.Role)
}

// EffectivePlan is the tier whose limits apply right now; paid tiers fall back to FREE once expired.
func (u *User) EffectivePlan(now time.Time) plans.Tier {
	if u.Plan == "" || u.Plan == plans.TierFree {
		return plans.TierFree
	}
	if u.PlanExpiresAt != nil && now.After(*u.PlanExpiresAt) {
		return plans.TierFree
	}
	return u.Plan
}
