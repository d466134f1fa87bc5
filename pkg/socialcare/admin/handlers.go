package admin

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/auth"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/membership"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/models"
	"gorm.io/gorm"
)

// Handler handles admin requests
type Handler struct {
	db    *gorm.DB
	store *membership.DB
}

// NewHandler creates a new admin handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, store: membership.NewDB(db)}
}

// OrgAssignment names one organization membership to grant on user
// creation or update.
type OrgAssignment struct {
	OrganizationID uint   `json:"organization_id" binding:"required"`
	Role           string `json:"role" binding:"required"`
}

// CreateUserRequest represents the request to create a user
type CreateUserRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=255"`
	Email         string          `json:"email" binding:"required,email"`
	Password      string          `json:"password" binding:"required,min=8"`
	Roles         []string        `json:"roles"`
	Organizations []OrgAssignment `json:"organizations"`
}

// UpdateUserRequest represents the request to update a user
type UpdateUserRequest struct {
	Name  *string   `json:"name"`
	Email *string   `json:"email" binding:"omitempty,email"`
	Roles *[]string `json:"roles"`
}

// AssignmentError reports one organization assignment that could not be
// granted during user creation.
type AssignmentError struct {
	OrganizationID uint   `json:"organization_id"`
	Role           string `json:"role"`
	Error          string `json:"error"`
}

// UserResponse represents user data in admin responses
type UserResponse struct {
	ID            uint     `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Roles         []string `json:"roles"`
	Organizations []uint   `json:"organizations"`
	CreatedAt     string   `json:"created_at"`
}

// CreateUserResponse is a UserResponse plus the assignments that failed.
// The user is still created when assignments fail; callers must check
// assignment_errors.
type CreateUserResponse struct {
	UserResponse
	AssignmentErrors []AssignmentError `json:"assignment_errors,omitempty"`
}

func userResponse(user *models.User) UserResponse {
	roles := make([]string, len(user.Roles))
	for i, r := range user.Roles {
		roles[i] = string(r.Name)
	}
	orgIDs := make([]uint, 0, len(user.Memberships))
	seen := make(map[uint]bool)
	for _, m := range user.Memberships {
		if !seen[m.OrganizationID] {
			seen[m.OrganizationID] = true
			orgIDs = append(orgIDs, m.OrganizationID)
		}
	}
	return UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Roles:         roles,
		Organizations: orgIDs,
		CreatedAt:     user.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// resolveGlobalRoles maps role names to persisted rows, failing on any name
// outside the registry.
func (h *Handler) resolveGlobalRoles(names []string) ([]models.Role, error) {
	roles := make([]models.Role, 0, len(names))
	for _, name := range names {
		parsed, err := models.ParseRoleName(name)
		if err != nil {
			return nil, err
		}
		role, err := models.RoleByName(h.db, parsed)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, nil
}

// ListUsers returns all users (admin only)
// @Summary List users
// @Description Get all users, optionally filtered by search term and role
// @Tags admin
// @Produce json
// @Param q query string false "Search by name or email"
// @Param role query string false "Filter by global role"
// @Success 200 {array} UserResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	query := h.db.Model(&models.User{}).Order("users.created_at DESC")

	// Optional search by email or name
	if search := c.Query("q"); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", term, term)
	}

	// Optional filter by global role
	if roleParam := c.Query("role"); roleParam != "" {
		role, err := models.ParseRoleName(roleParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}
		query = query.
			Joins("JOIN role_users ON role_users.user_id = users.id").
			Joins("JOIN roles ON roles.id = role_users.role_id").
			Where("roles.name = ?", role)
	}

	var users []models.User
	if err := query.Preload("Roles").Preload("Memberships").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = userResponse(&users[i])
	}

	c.JSON(http.StatusOK, responses)
}

// GetUser returns a single user by ID (admin only)
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := h.db.Preload("Roles").Preload("Memberships").First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, userResponse(&user))
}

// CreateUser creates a user with its global roles and organization
// memberships in one call (admin only)
// @Summary Create a user
// @Description Create a user with global roles and organization memberships
// @Tags admin
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "User details"
// @Success 201 {object} CreateUserResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Email already registered"
// @Security BearerAuth
// @Router /admin/users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.User
	if err := h.db.Where("email = ?", strings.ToLower(req.Email)).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	roles, err := h.resolveGlobalRoles(req.Roles)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		Roles:        roles,
	}
	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	// Attach requested organization memberships. Assignments fail
	// independently so a bad organization id does not orphan the user,
	// but every failure is reported back.
	var assignmentErrors []AssignmentError
	for _, assignment := range req.Organizations {
		role, err := models.ParseRoleName(assignment.Role)
		if err != nil {
			assignmentErrors = append(assignmentErrors, AssignmentError{
				OrganizationID: assignment.OrganizationID,
				Role:           assignment.Role,
				Error:          err.Error(),
			})
			continue
		}
		results, err := h.store.Attach(assignment.OrganizationID, []membership.Pair{{UserID: user.ID, Role: role}})
		if err != nil {
			assignmentErrors = append(assignmentErrors, AssignmentError{
				OrganizationID: assignment.OrganizationID,
				Role:           assignment.Role,
				Error:          err.Error(),
			})
			continue
		}
		for _, result := range results {
			if result.Err != nil {
				assignmentErrors = append(assignmentErrors, AssignmentError{
					OrganizationID: assignment.OrganizationID,
					Role:           assignment.Role,
					Error:          result.Err.Error(),
				})
			}
		}
	}

	var created models.User
	if err := h.db.Preload("Roles").Preload("Memberships").First(&created, user.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusCreated, CreateUserResponse{
		UserResponse:     userResponse(&created),
		AssignmentErrors: assignmentErrors,
	})
}

// UpdateUser updates a user's profile and global roles (admin only)
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := h.db.Preload("Roles").First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Prevent an admin from removing their own admin role
	currentUserID, _ := auth.GetUserID(c)
	if uint(id) == currentUserID && req.Roles != nil && !containsRole(*req.Roles, models.RoleAdmin) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot remove your own admin role"})
		return
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(*req.Email)
	}
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	if req.Roles != nil {
		roles, err := h.resolveGlobalRoles(*req.Roles)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}
		if err := h.db.Model(&user).Association("Roles").Replace(&roles); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update roles"})
			return
		}
	}

	var updated models.User
	if err := h.db.Preload("Roles").Preload("Memberships").First(&updated, user.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, userResponse(&updated))
}

// DeleteUser soft-deletes a user (admin only)
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	currentUserID, _ := auth.GetUserID(c)
	if uint(id) == currentUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete yourself"})
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.db.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func containsRole(names []string, role models.RoleName) bool {
	for _, name := range names {
		if name == string(role) {
			return true
		}
	}
	return false
}

// RegisterRoutes registers admin routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users", h.ListUsers)
	rg.POST("/users", h.CreateUser)
	rg.GET("/users/:id", h.GetUser)
	rg.PUT("/users/:id", h.UpdateUser)
	rg.DELETE("/users/:id", h.DeleteUser)
}
