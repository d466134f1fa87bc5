package organizations

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/auth"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/membership"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/models"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/policy"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/support"
	"gorm.io/gorm"
)

// Handler handles organization-related requests
type Handler struct {
	db    *gorm.DB
	store *membership.DB
}

// NewHandler creates a new organizations handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, store: membership.NewDB(db)}
}

// OrgRequest represents the request to create or update an organization
type OrgRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=255"`
	Phone        string `json:"phone" binding:"required"`
	DocumentType string `json:"document_type" binding:"required,oneof=cpf cnpj"`
	Document     string `json:"document" binding:"required"`
	SubjectRef   string `json:"subject_ref" binding:"omitempty,max=255"`
}

// OrgResponse represents an organization in API responses
type OrgResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	DocumentType string `json:"document_type"`
	Document     string `json:"document"`
	SubjectRef   string `json:"subject_ref,omitempty"`
	MemberCount  int64  `json:"member_count"`
	CreatedAt    string `json:"created_at"`
}

// PaginationResponse is the envelope for paginated listings
type PaginationResponse struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

func (h *Handler) orgResponse(org *models.Organization) OrgResponse {
	var memberCount int64
	h.db.Model(&models.OrganizationMembership{}).Where("organization_id = ?", org.ID).Count(&memberCount)

	return OrgResponse{
		ID:           org.ID,
		Name:         org.Name,
		Phone:        org.Phone,
		DocumentType: org.DocumentType,
		Document:     org.Document,
		SubjectRef:   org.SubjectRef,
		MemberCount:  memberCount,
		CreatedAt:    org.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// actor resolves the authenticated user with roles and memberships
// materialized. Writes the error response itself on failure.
func (h *Handler) actor(c *gin.Context) (*models.User, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return nil, false
	}
	actor, err := h.store.Actor(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return nil, false
	}
	return actor, true
}

// accessDenied writes the generic forbidden response. The rule that failed
// is never revealed.
func accessDenied(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
}

func pageFromQuery(c *gin.Context) membership.Page {
	number, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "15"))
	return membership.Page{Number: number, Size: size}
}

func (h *Handler) findOrg(c *gin.Context) (*models.Organization, bool) {
	orgID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization ID"})
		return nil, false
	}
	var org models.Organization
	if err := h.db.First(&org, orgID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return nil, false
	}
	return &org, true
}

func validateOrgRequest(req *OrgRequest) string {
	if !support.ValidatePhone(req.Phone) {
		return "Invalid phone format"
	}
	if !support.ValidateDocument(req.DocumentType, req.Document) {
		return "Invalid document"
	}
	return ""
}

// List returns all organizations, with optional name search (admin only)
// @Summary List organizations
// @Description Get all organizations, optionally filtered by name
// @Tags organizations
// @Produce json
// @Param q query string false "Name search term"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Access denied"
// @Security BearerAuth
// @Router /admin/organizations [get]
func (h *Handler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if !policy.ViewAny(actor) {
		accessDenied(c)
		return
	}

	query := h.db.Model(&models.Organization{})
	if search := c.Query("q"); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch organizations"})
		return
	}

	page := pageFromQuery(c)
	var orgs []models.Organization
	if err := query.Order("id").Limit(page.Size).Offset((page.Number - 1) * page.Size).Find(&orgs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch organizations"})
		return
	}

	responses := make([]OrgResponse, len(orgs))
	for i := range orgs {
		responses[i] = h.orgResponse(&orgs[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       responses,
		"pagination": PaginationResponse{Page: page.Number, PageSize: page.Size, Total: total},
	})
}

// ListYours returns the organizations the current user belongs to
// @Summary List your organizations
// @Description Get the organizations the current user manages or belongs to
// @Tags organizations
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Access denied"
// @Security BearerAuth
// @Router /organizations/yours [get]
func (h *Handler) ListYours(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if !policy.ViewYours(actor) {
		accessDenied(c)
		return
	}

	seen := make(map[uint]bool)
	responses := make([]OrgResponse, 0, len(actor.Memberships))
	for _, m := range actor.Memberships {
		if seen[m.OrganizationID] {
			continue
		}
		seen[m.OrganizationID] = true

		var org models.Organization
		if err := h.db.First(&org, m.OrganizationID).Error; err != nil {
			continue
		}
		responses = append(responses, h.orgResponse(&org))
	}

	c.JSON(http.StatusOK, gin.H{"data": responses})
}

// Create creates a new organization (admin only)
// @Summary Create an organization
// @Description Create a new organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param request body OrgRequest true "Organization details"
// @Success 201 {object} OrgResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Access denied"
// @Security BearerAuth
// @Router /admin/organizations [post]
func (h *Handler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if !policy.Create(actor) {
		accessDenied(c)
		return
	}

	var req OrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := validateOrgRequest(&req); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	org := models.Organization{
		Name:         strings.TrimSpace(req.Name),
		Phone:        req.Phone,
		DocumentType: req.DocumentType,
		Document:     req.Document,
		SubjectRef:   req.SubjectRef,
	}
	if err := h.db.Create(&org).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create organization"})
		return
	}

	c.JSON(http.StatusCreated, h.orgResponse(&org))
}

// Get returns a specific organization
// @Summary Get an organization
// @Description Get details of a specific organization
// @Tags organizations
// @Produce json
// @Param id path int true "Organization ID"
// @Success 200 {object} OrgResponse
// @Failure 403 {object} map[string]string "Access denied"
// @Failure 404 {object} map[string]string "Organization not found"
// @Security BearerAuth
// @Router /organizations/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	org, ok := h.findOrg(c)
	if !ok {
		return
	}
	if !policy.View(actor, org) {
		accessDenied(c)
		return
	}

	c.JSON(http.StatusOK, h.orgResponse(org))
}

// Update updates an organization (admin or organization manager)
// @Summary Update an organization
// @Description Update an organization (requires admin or manager role in the organization)
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path int true "Organization ID"
// @Param request body OrgRequest true "Updated organization details"
// @Success 200 {object} OrgResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Access denied"
// @Security BearerAuth
// @Router /organizations/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	org, ok := h.findOrg(c)
	if !ok {
		return
	}
	if !policy.Update(actor, org) {
		accessDenied(c)
		return
	}

	var req OrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := validateOrgRequest(&req); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	org.Name = strings.TrimSpace(req.Name)
	org.Phone = req.Phone
	org.DocumentType = req.DocumentType
	org.Document = req.Document
	org.SubjectRef = req.SubjectRef

	if err := h.db.Save(org).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update organization"})
		return
	}

	c.JSON(http.StatusOK, h.orgResponse(org))
}

// Delete soft-deletes an organization (admin only)
// @Summary Delete an organization
// @Description Delete an organization (admin only, soft delete)
// @Tags organizations
// @Produce json
// @Param id path int true "Organization ID"
// @Success 200 {object} map[string]string "Organization deleted"
// @Failure 403 {object} map[string]string "Access denied"
// @Security BearerAuth
// @Router /organizations/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	org, ok := h.findOrg(c)
	if !ok {
		return
	}
	if !policy.Delete(actor, org) {
		accessDenied(c)
		return
	}

	// Soft delete: membership rows stay untouched but the organization
	// disappears from every listing and policy check.
	if err := h.db.Delete(org).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete organization"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted"})
}

// RegisterRoutes registers organization routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/yours", h.ListYours)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// RegisterAdminRoutes registers the admin-wide organization routes
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
}
