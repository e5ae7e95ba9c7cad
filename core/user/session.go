package user

import (
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

// Session identifies the acting user of a core call. It is held by the caller
// (API request, CLI run) and passed explicitly into every service method.
type Session struct {
	UserID int  `json:"user_id"`
	Role   Role `json:"role"`
}

// SystemSession acts with DIRECTOR rights and no user record; operator tooling only.
func SystemSession() Session {
	return Session{Role: RoleDirector}
}

func (s Session) Can(op Operation) bool {
	for _, role := range capabilities[op] {
		if role == s.Role {
			return true
		}
	}
	return false
}

// Authorize fails with core.ErrForbidden unless the session's role may perform op.
func (s Session) Authorize(op Operation) error {
	if s.Can(op) {
		return nil
	}
	return errors.Wrapf(core.ErrForbidden, "%s may not perform %s", s.roleName(), op)
}

// AuthorizeSelf is Authorize, but also lets users perform self-capable ops on their own records.
func (s Session) AuthorizeSelf(op Operation, ownerID int) error {
	if selfCapabilities[op] && s.UserID != 0 && s.UserID == ownerID && s.Role.Valid() {
		return nil
	}
	return s.Authorize(op)
}

func (s Session) IsTeacher() bool { return s.Role == RoleTeacher }
func (s Session) IsStudent() bool { return s.Role == RoleStudent }

func (s Session) roleName() string {
	if s.Role == "" {
		return "anonymous"
	}
	return string(s.Role)
}
