package database

import (
	"log"

	"rubrics_backend/internal/catalog"
	"rubrics_backend/internal/model"

	"gorm.io/gorm"
)

// SeedCatalog 参考表为空时写入 7 个 Student Outcome 及其指标、等级，已有数据则跳过
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.StudentOutcome{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	outcomes, err := catalog.SeedOutcomes()
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for i := range outcomes {
			// 关联的 Indicators 与 Levels 随之一起写入
			if err := tx.Create(&outcomes[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Seeded %d student outcomes", len(outcomes))
	return nil
}
