package membership

import (
	"errors"

	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUnknownUser         = errors.New("unknown user")
	ErrUnknownOrganization = errors.New("unknown organization")
)

// Pair is one (user, role) element of a batch attach/detach against a
// single organization.
type Pair struct {
	UserID uint            `json:"user_id"`
	Role   models.RoleName `json:"role"`
}

// PairResult reports the outcome for one pair. A failing pair does not
// abort its siblings.
type PairResult struct {
	Pair
	Err error
}

// Store is the persistence capability set the policy and query layers
// depend on.
type Store interface {
	HasGlobalRole(userID uint, role models.RoleName) (bool, error)
	MembershipsOf(userID uint) ([]models.OrganizationMembership, error)
	MembersOf(orgID uint, role models.RoleName) ([]uint, error)
	Attach(orgID uint, pairs []Pair) ([]PairResult, error)
	Detach(orgID uint, pairs []Pair) ([]PairResult, error)
	Actor(userID uint) (*models.User, error)
}

// DB implements Store on GORM.
type DB struct {
	db *gorm.DB
}

// NewDB creates a membership store backed by the given database.
func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

// liveOrganization resolves an organization id against the live (not
// soft-deleted) set.
func (s *DB) liveOrganization(orgID uint) error {
	var org models.Organization
	if err := s.db.First(&org, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownOrganization
		}
		return err
	}
	return nil
}

// HasGlobalRole reports whether a global role-holding row exists for the
// user and role.
func (s *DB) HasGlobalRole(userID uint, role models.RoleName) (bool, error) {
	var count int64
	err := s.db.Table("role_users").
		Joins("JOIN roles ON roles.id = role_users.role_id").
		Where("role_users.user_id = ? AND roles.name = ?", userID, role).
		Count(&count).Error
	return count > 0, err
}

// MembershipsOf returns all organization memberships of a user, joined
// through the live organization set so soft-deleted organizations stay
// invisible. Ordered by row id for deterministic listing.
func (s *DB) MembershipsOf(userID uint) ([]models.OrganizationMembership, error) {
	var memberships []models.OrganizationMembership
	err := s.db.
		Joins("JOIN organizations ON organizations.id = organization_memberships.organization_id AND organizations.deleted_at IS NULL").
		Where("organization_memberships.user_id = ?", userID).
		Order("organization_memberships.id").
		Preload("Role").
		Find(&memberships).Error
	return memberships, err
}

// MembersOf returns the ids of users holding the given role in the given
// organization.
func (s *DB) MembersOf(orgID uint, role models.RoleName) ([]uint, error) {
	if err := s.liveOrganization(orgID); err != nil {
		return nil, err
	}
	roleRow, err := models.RoleByName(s.db, role)
	if err != nil {
		return nil, err
	}
	var userIDs []uint
	err = s.db.Model(&models.OrganizationMembership{}).
		Where("organization_id = ? AND role_id = ?", orgID, roleRow.ID).
		Order("user_id").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

// Attach creates the membership triples for each pair. Duplicate attach is
// a no-op success; an unknown user or role fails only its own pair.
func (s *DB) Attach(orgID uint, pairs []Pair) ([]PairResult, error) {
	if err := s.liveOrganization(orgID); err != nil {
		return nil, err
	}
	results := make([]PairResult, len(pairs))
	for i, p := range pairs {
		results[i] = PairResult{Pair: p, Err: s.attachOne(orgID, p)}
	}
	return results, nil
}

func (s *DB) attachOne(orgID uint, p Pair) error {
	roleRow, err := models.RoleByName(s.db, p.Role)
	if err != nil {
		return err
	}
	if err := s.userExists(p.UserID); err != nil {
		return err
	}
	membership := models.OrganizationMembership{
		OrganizationID: orgID,
		UserID:         p.UserID,
		RoleID:         roleRow.ID,
	}
	// Concurrent attaches of the same triple land on the unique index;
	// DoNothing keeps the duplicate a no-op instead of an error.
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "organization_id"}, {Name: "user_id"}, {Name: "role_id"}},
		DoNothing: true,
	}).Create(&membership).Error
}

// Detach removes the membership triples for each pair. A missing membership
// is a no-op success; an unknown user or role fails only its own pair.
func (s *DB) Detach(orgID uint, pairs []Pair) ([]PairResult, error) {
	if err := s.liveOrganization(orgID); err != nil {
		return nil, err
	}
	results := make([]PairResult, len(pairs))
	for i, p := range pairs {
		results[i] = PairResult{Pair: p, Err: s.detachOne(orgID, p)}
	}
	return results, nil
}

func (s *DB) detachOne(orgID uint, p Pair) error {
	roleRow, err := models.RoleByName(s.db, p.Role)
	if err != nil {
		return err
	}
	if err := s.userExists(p.UserID); err != nil {
		return err
	}
	return s.db.
		Where("organization_id = ? AND user_id = ? AND role_id = ?", orgID, p.UserID, roleRow.ID).
		Delete(&models.OrganizationMembership{}).Error
}

func (s *DB) userExists(userID uint) error {
	var user models.User
	if err := s.db.Select("id").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownUser
		}
		return err
	}
	return nil
}

// Actor loads a user with global roles and live-organization memberships
// materialized, ready for policy evaluation.
func (s *DB) Actor(userID uint) (*models.User, error) {
	var user models.User
	err := s.db.
		Preload("Roles").
		Preload("Memberships", func(tx *gorm.DB) *gorm.DB {
			return tx.Joins("JOIN organizations ON organizations.id = organization_memberships.organization_id AND organizations.deleted_at IS NULL")
		}).
		Preload("Memberships.Role").
		First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	return &user, nil
}
