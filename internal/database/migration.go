package database

import (
	"fmt"

	"github.com/Maniok19/Wikitricks/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Trick{},
		&models.Comment{},
		&models.ForumTopic{},
		&models.ForumReply{},
		&models.Skatepark{},
		&models.TrickUpvote{},
		&models.ReplyUpvote{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
