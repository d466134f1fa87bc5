package models

import "gorm.io/gorm"

// AllModels returns all models for migration.
// Note: Role and Organization must be migrated before the membership tables
// that reference them.
func AllModels() []interface{} {
	return []interface{}{
		&Role{},
		&Organization{},
		&User{},
		&OrganizationMembership{},
		&Subject{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
