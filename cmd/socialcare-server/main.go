package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/admin"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/auth"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/database"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/models"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/organizations"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/subjects"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/projeto-conselho-da-comunidade/social-care-app-back/api/swagger"
)

// @title Social Care API
// @version 1.0
// @description Back office for managing organizations, users and role assignments.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}"

func main() {
	// Get database path from environment or use default
	dbPath := os.Getenv("SOCIALCARE_DB_PATH")
	if dbPath == "" {
		dbPath = "socialcare.db"
	}

	// Connect to database
	if err := database.Connect(dbPath); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Seed the role registry (must run before admin creation)
	if err := models.SeedRoles(database.GetDB()); err != nil {
		log.Fatalf("Failed to seed roles: %v", err)
	}

	// Create default admin user if no admin exists
	if err := ensureAdminExists(); err != nil {
		log.Fatalf("Failed to ensure admin user exists: %v", err)
	}

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		authHandler := auth.NewHandler(database.GetDB())
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Organization routes (protected; per-operation policy checks
		// happen inside the handlers)
		orgsHandler := organizations.NewHandler(database.GetDB())
		orgsGroup := api.Group("/organizations")
		orgsGroup.Use(auth.AuthMiddleware())
		orgsHandler.RegisterRoutes(orgsGroup)
		orgsHandler.RegisterMemberRoutes(orgsGroup)

		// Subject routes (protected)
		subjectsHandler := subjects.NewHandler(database.GetDB())
		subjectsGroup := api.Group("/subjects")
		subjectsGroup.Use(auth.AuthMiddleware())
		subjectsHandler.RegisterRoutes(subjectsGroup)

		// Admin routes (admin global role required)
		adminGroup := api.Group("/admin")
		adminGroup.Use(auth.AuthMiddleware(), auth.RequireAdmin(database.GetDB()))

		adminHandler := admin.NewHandler(database.GetDB())
		adminHandler.RegisterRoutes(adminGroup)
		orgsHandler.RegisterAdminRoutes(adminGroup.Group("/organizations"))
	}

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting social-care server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// ensureAdminExists creates a bootstrap admin user when no user holds the
// admin global role yet. Credentials come from the environment, with
// development defaults.
func ensureAdminExists() error {
	db := database.GetDB()

	var count int64
	err := db.Table("role_users").
		Joins("JOIN roles ON roles.id = role_users.role_id").
		Where("roles.name = ?", models.RoleAdmin).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // An admin already exists
	}

	email := os.Getenv("SOCIALCARE_ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}
	password := os.Getenv("SOCIALCARE_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Println("WARNING: using default admin password - set SOCIALCARE_ADMIN_PASSWORD")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	adminRole, err := models.RoleByName(db, models.RoleAdmin)
	if err != nil {
		return err
	}

	adminUser := models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Roles:        []models.Role{*adminRole},
	}
	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Printf("Created default admin user: %s (ID: %d)", adminUser.Email, adminUser.ID)
	return nil
}
