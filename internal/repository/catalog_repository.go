package repository

import (
	"rubrics_backend/internal/model"

	"gorm.io/gorm"
)

type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

// LoadOutcomes 读取完整的 outcome -> indicator -> level 层级
func (r *CatalogRepository) LoadOutcomes() ([]model.StudentOutcome, error) {
	var outcomes []model.StudentOutcome
	err := r.DB.
		Preload("Indicators", func(db *gorm.DB) *gorm.DB {
			return db.Order("letter ASC")
		}).
		Preload("Indicators.Levels", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Order("sort_order ASC").
		Find(&outcomes).Error
	return outcomes, err
}
