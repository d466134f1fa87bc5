package models

import (
	"time"

	"gorm.io/gorm"
)

// Organization represents a partner organization in the back office.
// Organizations are soft-deleted: a deleted organization disappears from
// every listing and membership check, but its membership rows are kept.
type Organization struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Phone        string         `json:"phone"`
	DocumentType string         `gorm:"type:varchar(10)" json:"document_type"` // cpf or cnpj
	Document     string         `json:"document"`
	SubjectRef   string         `json:"subject_ref,omitempty"`

	// Relationships
	Memberships []OrganizationMembership `gorm:"foreignKey:OrganizationID" json:"memberships,omitempty"`
}

// OrganizationMembership is the (organization, user, role) relation. The
// composite unique index makes attach idempotent at the store level; a user
// may hold several roles in the same organization, each as its own row.
//
// Memberships are hard-deleted on detach: a soft-delete tombstone would
// occupy the unique index and block re-attaching the same triple.
type OrganizationMembership struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	OrganizationID uint      `gorm:"not null;uniqueIndex:idx_org_user_role" json:"organization_id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_org_user_role" json:"user_id"`
	RoleID         uint      `gorm:"not null;uniqueIndex:idx_org_user_role" json:"role_id"`

	// Relationships
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role         Role         `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}
