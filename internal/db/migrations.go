package db

import (
	"log"

	"gorm.io/gorm"
)

// runMigrations performs database migrations
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Audit{},
		&StatusChange{},
		&Report{},
		&ReportAudit{},
		&WorkflowTask{},
	); err != nil {
		return err
	}

	return migrateOrphanedAudits(db)
}

// migrateOrphanedAudits assigns audits without an owner to the first user.
func migrateOrphanedAudits(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Audit{}).Where("created_by_id = 0 OR created_by_id IS NULL").Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	var owner User
	if err := db.First(&owner).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// No users exist yet, that's fine
			return nil
		}
		return err
	}

	result := db.Model(&Audit{}).Where("created_by_id = 0 OR created_by_id IS NULL").Update("created_by_id", owner.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Migrated %d orphaned audits to user %d (%s)", result.RowsAffected, owner.ID, owner.Username)
	}
	return nil
}
