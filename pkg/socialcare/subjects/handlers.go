package subjects

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/models"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/support"
	"gorm.io/gorm"
)

// Handler handles subject (assisted person) requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new subjects handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// SubjectRequest represents the request to create or update a subject
type SubjectRequest struct {
	Name             string `json:"name" binding:"required,min=1,max=255"`
	RelativeName     string `json:"relative_name" binding:"required,min=1,max=255"`
	RelativeRelation string `json:"relative_relation" binding:"required,min=1,max=255"`
	BirthDate        string `json:"birth_date" binding:"required"`
	ContactPhone     string `json:"contact_phone" binding:"required"`
	CPF              string `json:"cpf" binding:"required"`
	RG               string `json:"rg" binding:"required"`
	SkinColor        string `json:"skin_color" binding:"required,oneof=branca preta parda amarela indigena"`
}

// SubjectResponse represents a subject in API responses
type SubjectResponse struct {
	ID               uint   `json:"id"`
	Name             string `json:"name"`
	RelativeName     string `json:"relative_name"`
	RelativeRelation string `json:"relative_relation"`
	BirthDate        string `json:"birth_date"`
	ContactPhone     string `json:"contact_phone"`
	CPF              string `json:"cpf"`
	RG               string `json:"rg"`
	SkinColor        string `json:"skin_color"`
	CreatedAt        string `json:"created_at"`
}

func subjectResponse(s *models.Subject) SubjectResponse {
	return SubjectResponse{
		ID:               s.ID,
		Name:             s.Name,
		RelativeName:     s.RelativeName,
		RelativeRelation: s.RelativeRelation,
		BirthDate:        s.BirthDate.Format("2006-01-02"),
		ContactPhone:     s.ContactPhone,
		CPF:              s.CPF,
		RG:               s.RG,
		SkinColor:        string(s.SkinColor),
		CreatedAt:        s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// validate checks the fields gin bindings cannot express.
func (r *SubjectRequest) validate() (time.Time, string) {
	birthDate, err := time.Parse("2006-01-02", r.BirthDate)
	if err != nil {
		return time.Time{}, "Invalid birth date, expected YYYY-MM-DD"
	}
	if birthDate.After(time.Now()) {
		return time.Time{}, "Birth date cannot be in the future"
	}
	if !support.ValidateCPF(r.CPF) {
		return time.Time{}, "Invalid CPF"
	}
	if !support.ValidatePhone(r.ContactPhone) {
		return time.Time{}, "Invalid phone format"
	}
	return birthDate, ""
}

// List returns all subjects, with optional name search
func (h *Handler) List(c *gin.Context) {
	query := h.db.Model(&models.Subject{}).Order("id")

	if search := c.Query("q"); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var subjects []models.Subject
	if err := query.Find(&subjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subjects"})
		return
	}

	responses := make([]SubjectResponse, len(subjects))
	for i := range subjects {
		responses[i] = subjectResponse(&subjects[i])
	}

	c.JSON(http.StatusOK, gin.H{"data": responses})
}

// Get returns a specific subject
func (h *Handler) Get(c *gin.Context) {
	subject, ok := h.find(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, subjectResponse(subject))
}

// Create creates a new subject
func (h *Handler) Create(c *gin.Context) {
	var req SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	birthDate, msg := req.validate()
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	subject := models.Subject{
		Name:             strings.TrimSpace(req.Name),
		RelativeName:     strings.TrimSpace(req.RelativeName),
		RelativeRelation: req.RelativeRelation,
		BirthDate:        birthDate,
		ContactPhone:     req.ContactPhone,
		CPF:              req.CPF,
		RG:               req.RG,
		SkinColor:        models.SkinColor(req.SkinColor),
	}
	if err := h.db.Create(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subject"})
		return
	}

	c.JSON(http.StatusCreated, subjectResponse(&subject))
}

// Update updates a subject
func (h *Handler) Update(c *gin.Context) {
	subject, ok := h.find(c)
	if !ok {
		return
	}

	var req SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	birthDate, msg := req.validate()
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	subject.Name = strings.TrimSpace(req.Name)
	subject.RelativeName = strings.TrimSpace(req.RelativeName)
	subject.RelativeRelation = req.RelativeRelation
	subject.BirthDate = birthDate
	subject.ContactPhone = req.ContactPhone
	subject.CPF = req.CPF
	subject.RG = req.RG
	subject.SkinColor = models.SkinColor(req.SkinColor)

	if err := h.db.Save(subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subject"})
		return
	}

	c.JSON(http.StatusOK, subjectResponse(subject))
}

// Delete soft-deletes a subject
func (h *Handler) Delete(c *gin.Context) {
	subject, ok := h.find(c)
	if !ok {
		return
	}

	if err := h.db.Delete(subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subject"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subject deleted"})
}

func (h *Handler) find(c *gin.Context) (*models.Subject, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject ID"})
		return nil, false
	}
	var subject models.Subject
	if err := h.db.First(&subject, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return nil, false
	}
	return &subject, true
}

// RegisterRoutes registers subject routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
