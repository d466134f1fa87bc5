package organizations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/membership"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/models"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/policy"
)

// MemberResponse represents an organization member in API responses
type MemberResponse struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// UserSummary represents a user row in member/eligible listings
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MembersRequest represents a batch associate/disassociate request
type MembersRequest struct {
	Users []membership.Pair `json:"users" binding:"required,min=1"`
}

// PairResponse reports the outcome for one (user, role) pair
type PairResponse struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

func pairResponses(results []membership.PairResult) []PairResponse {
	responses := make([]PairResponse, len(results))
	for i, r := range results {
		responses[i] = PairResponse{UserID: r.UserID, Role: string(r.Role), OK: r.Err == nil}
		if r.Err != nil {
			responses[i].Error = r.Err.Error()
		}
	}
	return responses
}

func userSummaries(users []models.User) []UserSummary {
	summaries := make([]UserSummary, len(users))
	for i, u := range users {
		summaries[i] = UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return summaries
}

// ListMembers returns the members of an organization. With a role query
// parameter the listing is filtered to that role and paginated; without it
// all membership rows are returned.
func (h *Handler) ListMembers(c *gin.Context) {
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

	if roleParam := c.Query("role"); roleParam != "" {
		role, err := models.ParseRoleName(roleParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}

		result, err := h.store.MembersByRole(org.ID, role, pageFromQuery(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data":       userSummaries(result.Items),
			"pagination": PaginationResponse{Page: result.Page, PageSize: result.PageSize, Total: result.TotalCount},
		})
		return
	}

	memberships, err := h.store.Members(org.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	members := make([]MemberResponse, len(memberships))
	for i, m := range memberships {
		members[i] = MemberResponse{
			UserID: m.UserID,
			Name:   m.User.Name,
			Email:  m.User.Email,
			Role:   string(m.Role.Name),
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": members})
}

// ListEligible returns users not yet holding the given role (or any role)
// in the organization: candidates for association. Supports q name search.
func (h *Handler) ListEligible(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	org, ok := h.findOrg(c)
	if !ok {
		return
	}
	if !policy.AssociateUsers(actor, org) {
		accessDenied(c)
		return
	}

	var role *models.RoleName
	if roleParam := c.Query("role"); roleParam != "" {
		parsed, err := models.ParseRoleName(roleParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}
		role = &parsed
	}

	result, err := h.store.EligibleUsers(org.ID, role, c.Query("q"), pageFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch eligible users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       userSummaries(result.Items),
		"pagination": PaginationResponse{Page: result.Page, PageSize: result.PageSize, Total: result.TotalCount},
	})
}

// AssociateMembers attaches a batch of (user, role) pairs to the
// organization. Pairs fail independently; duplicate attaches are no-ops.
func (h *Handler) AssociateMembers(c *gin.Context) {
	h.mutateMembers(c, policy.AssociateUsers, h.store.Attach)
}

// DisassociateMembers detaches a batch of (user, role) pairs from the
// organization. Detaching a non-member is a no-op.
func (h *Handler) DisassociateMembers(c *gin.Context) {
	h.mutateMembers(c, policy.DisassociateUsers, h.store.Detach)
}

func (h *Handler) mutateMembers(
	c *gin.Context,
	allowed func(*models.User, *models.Organization) bool,
	op func(uint, []membership.Pair) ([]membership.PairResult, error),
) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	org, ok := h.findOrg(c)
	if !ok {
		return
	}
	if !allowed(actor, org) {
		accessDenied(c)
		return
	}

	var req MembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := op(org.ID, req.Users)
	if err != nil {
		if errors.Is(err, membership.ErrUnknownOrganization) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update members"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": pairResponses(results)})
}

// RegisterMemberRoutes registers member management routes
func (h *Handler) RegisterMemberRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/members", h.ListMembers)
	rg.GET("/:id/members/eligible", h.ListEligible)
	rg.POST("/:id/members", h.AssociateMembers)
	rg.DELETE("/:id/members", h.DisassociateMembers)
}
