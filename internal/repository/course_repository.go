package repository

import (
	"context"
	"errors"

	"rubrics_backend/internal/model"
	"rubrics_backend/internal/util"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) CreateCourse(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Create(course).Error
}

func (r *CourseRepository) FindCourse(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).First(&course, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	return &course, err
}

func (r *CourseRepository) CreateArea(ctx context.Context, area *model.GradingArea) error {
	return r.DB.WithContext(ctx).Omit("Course").Create(area).Error
}

// FindArea 连同所属课程一起加载
func (r *CourseRepository) FindArea(ctx context.Context, id uint) (*model.GradingArea, error) {
	var area model.GradingArea
	err := r.DB.WithContext(ctx).Preload("Course").First(&area, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAreaNotFound
	}
	return &area, err
}
