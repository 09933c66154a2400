package utils

import (
	"errors"
	"fmt"

	"nika.id/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	SessionUserIDKey       = "user_id"
	SessionUserNameKey     = "user_name"
	SessionUserRoleKey     = "user_role"
	SessionImpersonatorKey = "impersonator_id"
	LocalsSessionStore     = "session_store"
	LocalsUserID           = "userID"
	LocalsUserName         = "userName"
	LocalsUserRole         = "userRole"
	LocalsImpersonatorID   = "impersonatorID"
)

var ErrSessionStoreMissing = errors.New("session store not initialised")

func SessionStart(c *fiber.Ctx) (*session.Session, error) {
	store, ok := c.Locals(LocalsSessionStore).(*session.Store)
	if !ok || store == nil {
		return nil, ErrSessionStoreMissing
	}
	return store.Get(c)
}

func GetUserIDFromSession(sess *session.Session) (uint, error) {
	switch v := sess.Get(SessionUserIDKey).(type) {
	case uint:
		if v == 0 {
			return 0, errors.New("empty user id in session")
		}
		return v, nil
	case int:
		if v <= 0 {
			return 0, errors.New("empty user id in session")
		}
		return uint(v), nil
	case nil:
		return 0, errors.New("no user in session")
	default:
		return 0, fmt.Errorf("unexpected user id type %T in session", v)
	}
}

// GetRoleFromSession always returns a normalized role; anything unreadable is treated as a plain user.
func GetRoleFromSession(sess *session.Session) models.Role {
	s, _ := sess.Get(SessionUserRoleKey).(string)
	return models.ParseRole(s)
}

// LoginUser regenerates the session id before storing the identity.
func LoginUser(c *fiber.Ctx, user *models.User) error {
	sess, err := SessionStart(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Delete(SessionImpersonatorKey)
	setIdentity(sess, user)
	return sess.Save()
}

func setIdentity(sess *session.Session, user *models.User) {
	sess.Set(SessionUserIDKey, user.ID)
	sess.Set(SessionUserNameKey, user.Name)
	sess.Set(SessionUserRoleKey, string(models.ParseRole(string(user.Role))))
}

// StartImpersonation signs in as user while remembering adminID for the way back.
func StartImpersonation(c *fiber.Ctx, user *models.User, adminID uint) error {
	sess, err := SessionStart(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	setIdentity(sess, user)
	sess.Set(SessionImpersonatorKey, adminID)
	return sess.Save()
}

// GetImpersonatorFromSession returns the admin behind an impersonated session.
func GetImpersonatorFromSession(sess *session.Session) (uint, bool) {
	id, ok := sess.Get(SessionImpersonatorKey).(uint)
	return id, ok && id != 0
}

func LogoutUser(c *fiber.Ctx) error {
	sess, err := SessionStart(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

// CurrentUserID reads the id placed in Locals by the session middleware.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalsUserID).(uint)
	return id, ok && id != 0
}

func CurrentRole(c *fiber.Ctx) models.Role {
	r, _ := c.Locals(LocalsUserRole).(models.Role)
	return models.ParseRole(string(r))
}
