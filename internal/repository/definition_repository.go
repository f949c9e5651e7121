package repository

import (
	"context"
	"errors"
	"fmt"

	"rubrics_backend/internal/model"
	"rubrics_backend/internal/util"

	"gorm.io/gorm"
)

type DefinitionRepository struct {
	DB *gorm.DB
}

func NewDefinitionRepository(db *gorm.DB) *DefinitionRepository {
	return &DefinitionRepository{DB: db}
}

func (r *DefinitionRepository) FindByID(ctx context.Context, id uint) (*model.Definition, error) {
	var def model.Definition
	err := r.DB.WithContext(ctx).First(&def, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrDefinitionNotFound
	}
	return &def, err
}

func (r *DefinitionRepository) FindByAreaID(ctx context.Context, areaID uint) (*model.Definition, error) {
	var def model.Definition
	err := r.DB.WithContext(ctx).Where("area_id = ?", areaID).First(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrDefinitionNotFound
	}
	return &def, err
}

// Save ID 为 0 时插入，否则整行更新
func (r *DefinitionRepository) Save(ctx context.Context, def *model.Definition) error {
	return r.DB.WithContext(ctx).Save(def).Error
}

// DeleteCascade 删除定义及其全部评分实例和评价记录
func (r *DefinitionRepository) DeleteCascade(ctx context.Context, id uint) (instances, evaluations int64, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&model.GradingInstance{}).Where("definition_id = ?", id).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			res := tx.Where("instance_id IN ?", ids).Delete(&model.Evaluation{})
			if res.Error != nil {
				return res.Error
			}
			evaluations = res.RowsAffected

			res = tx.Where("id IN ?", ids).Delete(&model.GradingInstance{})
			if res.Error != nil {
				return res.Error
			}
			instances = res.RowsAffected
		}

		res := tx.Delete(&model.Definition{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrDefinitionNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, util.ErrDefinitionNotFound) {
			return 0, 0, err
		}
		return 0, 0, fmt.Errorf("delete definition %d: %w", id, err)
	}
	return instances, evaluations, nil
}
