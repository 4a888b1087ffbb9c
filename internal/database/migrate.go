package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-complaint-api/internal/models"
)

// Models lists every table owned by the service, parents before children.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.ComplaintCategory{},
		&models.ComplaintStatus{},
		&models.Complaint{},
		&models.ComplaintResponse{},
		&models.ActivityLog{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
