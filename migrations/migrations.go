package migrations

import (
	"fmt"

	"StaffBox/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RunMigrations creates or updates every table known to the manifest,
// plus the tenant catalog itself. The manifest is walked in dependency
// order so foreign keys always reference existing tables.
func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running migrations...")

	if err := db.AutoMigrate(&models.Tenant{}); err != nil {
		return fmt.Errorf("failed to migrate Tenant: %w", err)
	}

	for _, entry := range models.GlobalTables() {
		if err := db.AutoMigrate(entry.Model); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", entry.Name, err)
		}
	}
	for _, entry := range models.CaptureOrder() {
		if err := db.AutoMigrate(entry.Model); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", entry.Name, err)
		}
	}

	if err := db.AutoMigrate(&models.BackupRecord{}); err != nil {
		return fmt.Errorf("failed to migrate BackupRecord: %w", err)
	}

	logrus.Info("Migrations completed successfully")
	return nil
}
