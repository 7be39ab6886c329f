package database

import (
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// AllModels is the single registry of persisted models. Migrations and table
// maintenance iterate this list so a new model only needs to be added once.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.RefreshToken{},
		&models.Author{},
		&models.Category{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Save{},
		&models.Media{},
	}
}

// MaintenanceTables is the fixed list of tables the optimize command asks the
// storage engine to recompute statistics for.
var MaintenanceTables = []string{
	"posts",
	"categories",
	"tags",
	"post_tags",
	"comments",
	"likes",
	"saves",
	"media",
	"authors",
	"users",
}

// Migrate runs AutoMigrate for every registered model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
