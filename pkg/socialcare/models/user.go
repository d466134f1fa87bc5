package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a back-office user.
//
// A user carries two independent kinds of role state: global role holdings
// (the role_users join table, organization-independent, currently only
// "admin" is checked) and organization memberships (one row per
// organization+role pair held).
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `json:"-"`

	// Relationships
	Roles       []Role                   `gorm:"many2many:role_users" json:"roles,omitempty"`
	Memberships []OrganizationMembership `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
}

// HasGlobalRole reports whether the user holds the given role system-wide.
// Requires Roles to be loaded.
func (u *User) HasGlobalRole(name RoleName) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user holds the global admin role.
func (u *User) IsAdmin() bool {
	return u.HasGlobalRole(RoleAdmin)
}

// IsMemberOf reports whether the user holds any role in the organization.
// Requires Memberships to be loaded.
func (u *User) IsMemberOf(orgID uint) bool {
	for _, m := range u.Memberships {
		if m.OrganizationID == orgID {
			return true
		}
	}
	return false
}

// HasOrgRole reports whether the user holds the given role in the given
// organization. Requires Memberships to be loaded with their Role.
func (u *User) HasOrgRole(orgID uint, name RoleName) bool {
	for _, m := range u.Memberships {
		if m.OrganizationID == orgID && m.Role.Name == name {
			return true
		}
	}
	return false
}

// HasRoleAnywhere reports whether the user holds the given role in at least
// one organization.
func (u *User) HasRoleAnywhere(name RoleName) bool {
	for _, m := range u.Memberships {
		if m.Role.Name == name {
			return true
		}
	}
	return false
}
