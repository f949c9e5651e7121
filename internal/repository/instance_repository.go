package repository

import (
	"context"
	"errors"

	"rubrics_backend/internal/model"
	"rubrics_backend/internal/util"

	"gorm.io/gorm"
)

type InstanceRepository struct {
	DB *gorm.DB
}

func NewInstanceRepository(db *gorm.DB) *InstanceRepository {
	return &InstanceRepository{DB: db}
}

func (r *InstanceRepository) WithTx(tx *gorm.DB) *InstanceRepository {
	return &InstanceRepository{DB: tx}
}

func (r *InstanceRepository) Create(ctx context.Context, inst *model.GradingInstance) error {
	if inst.Status == "" {
		inst.Status = model.InstanceIncomplete
	}
	return r.DB.WithContext(ctx).Create(inst).Error
}

func (r *InstanceRepository) FindByID(ctx context.Context, id uint) (*model.GradingInstance, error) {
	var inst model.GradingInstance
	err := r.DB.WithContext(ctx).First(&inst, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInstanceNotFound
	}
	return &inst, err
}

// FindLatest 同一教师对同一提交的最新实例
func (r *InstanceRepository) FindLatest(ctx context.Context, definitionID, raterID, itemID uint) (*model.GradingInstance, error) {
	var inst model.GradingInstance
	err := r.DB.WithContext(ctx).
		Where("definition_id = ? AND rater_id = ? AND item_id = ?", definitionID, raterID, itemID).
		Order("updated_at DESC, id DESC").
		First(&inst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInstanceNotFound
	}
	return &inst, err
}

// FindLatestActiveForStudent 学生可见的评分结果
func (r *InstanceRepository) FindLatestActiveForStudent(ctx context.Context, definitionID, studentID uint) (*model.GradingInstance, error) {
	var inst model.GradingInstance
	err := r.DB.WithContext(ctx).
		Where("definition_id = ? AND student_id = ? AND status = ?", definitionID, studentID, model.InstanceActive).
		Order("updated_at DESC, id DESC").
		First(&inst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInstanceNotFound
	}
	return &inst, err
}

// MarkGraded 将实例置为 active 并记录原始成绩，同一提交的其他 active 实例归档
func (r *InstanceRepository) MarkGraded(ctx context.Context, inst *model.GradingInstance, rawGrade *float64, studentID uint) error {
	db := r.DB.WithContext(ctx)

	err := db.Model(&model.GradingInstance{}).
		Where("definition_id = ? AND item_id = ? AND id <> ? AND status = ?",
			inst.DefinitionID, inst.ItemID, inst.ID, model.InstanceActive).
		Update("status", model.InstanceArchived).Error
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"status":    model.InstanceActive,
		"raw_grade": rawGrade,
	}
	if studentID > 0 {
		updates["student_id"] = studentID
	}
	if err := db.Model(inst).Updates(updates).Error; err != nil {
		return err
	}

	inst.Status = model.InstanceActive
	inst.RawGrade = rawGrade
	if studentID > 0 {
		inst.StudentID = studentID
	}
	return nil
}

// Reset 清空评价后实例回到 incomplete
func (r *InstanceRepository) Reset(ctx context.Context, inst *model.GradingInstance) error {
	err := r.DB.WithContext(ctx).Model(inst).Updates(map[string]interface{}{
		"status":    model.InstanceIncomplete,
		"raw_grade": nil,
	}).Error
	if err != nil {
		return err
	}
	inst.Status = model.InstanceIncomplete
	inst.RawGrade = nil
	return nil
}
