package domain

import (
	"errors"
	"slices"
	"strings"
)

const MaxUsernameLen = 256

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

// UserProfile is the identity of a connected user as the hub sees it.
type UserProfile struct {
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Roles       []AppRole `json:"roles"`
}

// NewUserProfile validates the username and normalises it to lower case.
func NewUserProfile(username string, roles ...AppRole) (*UserProfile, error) {
	username = strings.TrimSpace(username)
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	return &UserProfile{Username: strings.ToLower(username), Roles: roles}, nil
}

func (u *UserProfile) HasRole(role AppRole) bool {
	return slices.Contains(u.Roles, role)
}

func (u *UserProfile) IsAdmin() bool { return u.HasRole(AppRoleVhOfficer) }

func (u *UserProfile) IsStaffMember() bool { return u.HasRole(AppRoleStaffMember) }

// IsHost reports whether the user may perform host-only actions.
func (u *UserProfile) IsHost() bool {
	return u.HasRole(AppRoleJudge) || u.HasRole(AppRoleStaffMember)
}
