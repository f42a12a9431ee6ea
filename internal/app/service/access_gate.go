package service

import (
	"fmt"

	"github.com/ratethestore/ratethestore-backend/internal/app/model"
)

// Session is the authenticated caller, resolved from the user record on
// every request so the role is always current.
type Session struct {
	UserID uint
	Name   string
	Email  string
	Role   model.UserRole
}

func NewSession(user *model.User) *Session {
	return &Session{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}
}

// Capability is a coarse permission checked at the route level.
type Capability int

const (
	CapAuthenticated Capability = iota
	CapAdmin
	CapManageStores
)

func (c Capability) String() string {
	switch c {
	case CapAuthenticated:
		return "authenticated"
	case CapAdmin:
		return "admin"
	case CapManageStores:
		return "manage_stores"
	default:
		return fmt.Sprintf("capability(%d)", int(c))
	}
}

// Authorize returns ErrForbidden unless the session holds capability.
// A nil session is never authorized.
func Authorize(session *Session, capability Capability) error {
	if session == nil {
		return ErrForbidden
	}

	var allowed bool
	switch capability {
	case CapAuthenticated:
		allowed = true
	case CapAdmin:
		allowed = session.Role == model.RoleAdmin
	case CapManageStores:
		switch session.Role {
		case model.RoleAdmin, model.RoleStoreOwner:
			allowed = true
		case model.RoleNormalUser:
			allowed = false
		}
	}

	if !allowed {
		return ErrForbidden
	}
	return nil
}

// CanEditStore: admins always, store owners only for stores they own.
func CanEditStore(session *Session, store *model.Store) bool {
	if session == nil || store == nil {
		return false
	}
	switch session.Role {
	case model.RoleAdmin:
		return true
	case model.RoleStoreOwner:
		return store.IsOwnedBy(session.UserID)
	case model.RoleNormalUser:
		return false
	default:
		return false
	}
}

// CanActOnUser: admins, or the user themselves.
func CanActOnUser(session *Session, userID uint) bool {
	if session == nil {
		return false
	}
	switch session.Role {
	case model.RoleAdmin:
		return true
	case model.RoleNormalUser, model.RoleStoreOwner:
		return session.UserID == userID
	default:
		return false
	}
}
