package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrUnknownRole is returned when a role name is not part of the registry.
var ErrUnknownRole = errors.New("unknown role")

// RoleName identifies one of the fixed set of roles. The set is closed:
// roles are configuration, not user data.
type RoleName string

const (
	// RoleAdmin is the only global role; it is held independently of any
	// organization and grants system-wide administration.
	RoleAdmin RoleName = "admin"
	// RoleManager is organization-scoped and grants administration of the
	// organizations it is held in.
	RoleManager RoleName = "manager"
	// RoleSocialAssistant is organization-scoped field-worker access.
	RoleSocialAssistant RoleName = "social-assistant"
)

// AllRoleNames returns the full registry, in seed order.
func AllRoleNames() []RoleName {
	return []RoleName{RoleAdmin, RoleManager, RoleSocialAssistant}
}

// ParseRoleName resolves a role name against the registry.
func ParseRoleName(name string) (RoleName, error) {
	for _, r := range AllRoleNames() {
		if string(r) == name {
			return r, nil
		}
	}
	return "", ErrUnknownRole
}

// IsGlobal reports whether the role is held system-wide rather than within
// an organization membership.
func (r RoleName) IsGlobal() bool {
	return r == RoleAdmin
}

// Role is the persisted form of a registry entry. Rows exist only for
// referential integrity; they are seeded at startup and never mutated.
type Role struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      RoleName  `gorm:"type:varchar(30);uniqueIndex;not null" json:"name"`
}

// SeedRoles creates any missing registry rows. Idempotent.
func SeedRoles(db *gorm.DB) error {
	for _, name := range AllRoleNames() {
		role := Role{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}
	return nil
}

// RoleByName fetches the persisted row for a registry name.
func RoleByName(db *gorm.DB, name RoleName) (*Role, error) {
	if _, err := ParseRoleName(string(name)); err != nil {
		return nil, err
	}
	var role Role
	if err := db.Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownRole
		}
		return nil, err
	}
	return &role, nil
}
