package service

import (
	"context"
	"errors"
	"strings"

	"rubrics_backend/internal/model"
	"rubrics_backend/internal/repository"
)

type CourseService struct {
	CourseRepo *repository.CourseRepository
}

func NewCourseService(courseRepo *repository.CourseRepository) *CourseService {
	return &CourseService{CourseRepo: courseRepo}
}

type CreateCourseRequest struct {
	ShortName string `json:"shortName" binding:"required"`
	FullName  string `json:"fullName" binding:"required"`
}

type CreateAreaRequest struct {
	CourseID     uint   `json:"courseId" binding:"required"`
	ActivityID   uint   `json:"activityId" binding:"required"`
	ActivityName string `json:"activityName" binding:"required"`
}

func (s *CourseService) CreateCourse(ctx context.Context, req CreateCourseRequest) (*model.Course, error) {
	course := &model.Course{
		ShortName: strings.TrimSpace(req.ShortName),
		FullName:  strings.TrimSpace(req.FullName),
	}
	if err := s.CourseRepo.CreateCourse(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// CreateArea 为课程中的一个活动创建评分区域
func (s *CourseService) CreateArea(ctx context.Context, req CreateAreaRequest) (*model.GradingArea, error) {
	name := strings.TrimSpace(req.ActivityName)
	if name == "" {
		return nil, errors.New("activity name is required")
	}
	course, err := s.CourseRepo.FindCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	area := &model.GradingArea{
		CourseID:     course.ID,
		ActivityID:   req.ActivityID,
		ActivityName: name,
	}
	if err := s.CourseRepo.CreateArea(ctx, area); err != nil {
		return nil, err
	}
	area.Course = *course
	return area, nil
}
