package membership

import (
	"strings"

	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/models"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 15
	maxPageSize     = 100
)

// Page is a pagination request. Zero values mean "first page, default size".
type Page struct {
	Number int
	Size   int
}

func (p Page) normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Size
}

// UserPage is one page of a user listing plus the unpaginated total.
type UserPage struct {
	Items      []models.User
	TotalCount int64
	Page       int
	PageSize   int
}

// MembersByRole returns the users holding the given role in the given
// organization. Filtering is joint over organization AND role; ordering is
// by user id so pages are stable for an unchanged data set.
func (s *DB) MembersByRole(orgID uint, role models.RoleName, page Page) (UserPage, error) {
	if err := s.liveOrganization(orgID); err != nil {
		return UserPage{}, err
	}
	roleRow, err := models.RoleByName(s.db, role)
	if err != nil {
		return UserPage{}, err
	}

	query := s.db.Model(&models.User{}).
		Joins("JOIN organization_memberships ON organization_memberships.user_id = users.id").
		Where("organization_memberships.organization_id = ? AND organization_memberships.role_id = ?", orgID, roleRow.ID)

	return s.paginate(query, page)
}

// Members returns all memberships of an organization regardless of role,
// with user and role rows loaded. Used by the members listing when no role
// filter is given.
func (s *DB) Members(orgID uint) ([]models.OrganizationMembership, error) {
	if err := s.liveOrganization(orgID); err != nil {
		return nil, err
	}
	var memberships []models.OrganizationMembership
	err := s.db.Preload("User").Preload("Role").
		Where("organization_id = ?", orgID).
		Order("id").
		Find(&memberships).Error
	return memberships, err
}

// EligibleUsers returns the complement of the organization's membership:
// users who do not hold the given role in it (or, with no role, hold no
// membership at all). Users belonging to other organizations are eligible.
// searchTerm is a case-insensitive substring match on the user name, ANDed
// with the eligibility filter before pagination.
func (s *DB) EligibleUsers(orgID uint, role *models.RoleName, searchTerm string, page Page) (UserPage, error) {
	if err := s.liveOrganization(orgID); err != nil {
		return UserPage{}, err
	}

	members := s.db.Model(&models.OrganizationMembership{}).
		Select("user_id").
		Where("organization_id = ?", orgID)
	if role != nil {
		roleRow, err := models.RoleByName(s.db, *role)
		if err != nil {
			return UserPage{}, err
		}
		members = members.Where("role_id = ?", roleRow.ID)
	}

	query := s.db.Model(&models.User{}).Where("users.id NOT IN (?)", members)
	if searchTerm != "" {
		query = query.Where("LOWER(users.name) LIKE ?", "%"+strings.ToLower(searchTerm)+"%")
	}

	return s.paginate(query, page)
}

// paginate counts the filtered set, then fetches one page in stable user-id
// order.
func (s *DB) paginate(query *gorm.DB, page Page) (UserPage, error) {
	page = page.normalize()

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return UserPage{}, err
	}

	var users []models.User
	err := query.Order("users.id").
		Limit(page.Size).
		Offset(page.offset()).
		Find(&users).Error
	if err != nil {
		return UserPage{}, err
	}

	return UserPage{
		Items:      users,
		TotalCount: total,
		Page:       page.Number,
		PageSize:   page.Size,
	}, nil
}
