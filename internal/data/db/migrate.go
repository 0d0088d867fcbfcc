package db

import (
	types "github.com/yungbote/chargeback-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.User{},
		&types.GoogleCredential{},
		&types.PlaceholderMapping{},
		&types.Chargeback{},
	)
}
