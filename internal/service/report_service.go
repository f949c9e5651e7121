package service

import (
	"context"

	"rubrics_backend/internal/catalog"
	"rubrics_backend/internal/repository"
)

type ReportService struct {
	EvalRepo *repository.EvaluationRepository
	Catalog  *catalog.Catalog
}

func NewReportService(evalRepo *repository.EvaluationRepository, cat *catalog.Catalog) *ReportService {
	return &ReportService{EvalRepo: evalRepo, Catalog: cat}
}

// EvaluationRow 对外接口字段名保持与旧版 Web Service 一致
type EvaluationRow struct {
	ID                     uint     `json:"id"`
	InstanceID             uint     `json:"instanceid"`
	IndicatorID            uint     `json:"indicator_id"`
	IndicatorLetter        string   `json:"indicator_letter"`
	IndicatorDescriptionEn string   `json:"indicator_description_en"`
	IndicatorDescriptionEs string   `json:"indicator_description_es"`
	StudentOutcomeID       uint     `json:"student_outcome_id"`
	SONumber               string   `json:"so_number"`
	SOTitleEn              string   `json:"so_title_en"`
	SOTitleEs              string   `json:"so_title_es"`
	PerformanceLevelID     *uint    `json:"performance_level_id"`
	PerformanceLevelNameEn *string  `json:"performance_level_name_en"`
	PerformanceLevelNameEs *string  `json:"performance_level_name_es"`
	MinScore               *float64 `json:"min_score"`
	MaxScore               *float64 `json:"max_score"`
	Score                  *float64 `json:"score"`
	Feedback               string   `json:"feedback"`
	CourseID               uint     `json:"courseid"`
	CourseName             string   `json:"coursename"`
	ActivityName           string   `json:"activityname"`
	AssignmentID           uint     `json:"assignment_id"`
	StudentID              uint     `json:"student_id"`
	StudentName            string   `json:"student_name"`
	GraderID               uint     `json:"grader_id"`
	GraderName             string   `json:"grader_name"`
	RubricName             string   `json:"rubric_name"`
	TimeCreated            int64    `json:"timecreated"`
	TimeModified           int64    `json:"timemodified"`
}

type EvaluationList struct {
	Evaluations []EvaluationRow `json:"evaluations"`
	Count       int             `json:"count"`
}

func (s *ReportService) GetEvaluations(ctx context.Context, f repository.EvaluationFilter) (*EvaluationList, error) {
	records, err := s.EvalRepo.Query(ctx, f)
	if err != nil {
		return nil, err
	}

	rows := make([]EvaluationRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, EvaluationRow{
			ID:                     r.ID,
			InstanceID:             r.InstanceID,
			IndicatorID:            r.IndicatorID,
			IndicatorLetter:        r.IndicatorLetter,
			IndicatorDescriptionEn: r.IndicatorDescriptionEn,
			IndicatorDescriptionEs: r.IndicatorDescriptionEs,
			StudentOutcomeID:       r.StudentOutcomeID,
			SONumber:               r.SONumber,
			SOTitleEn:              r.SOTitleEn,
			SOTitleEs:              r.SOTitleEs,
			PerformanceLevelID:     r.PerformanceLevelID,
			PerformanceLevelNameEn: r.PerformanceLevelNameEn,
			PerformanceLevelNameEs: r.PerformanceLevelNameEs,
			MinScore:               r.MinScore,
			MaxScore:               r.MaxScore,
			Score:                  r.Score,
			Feedback:               r.Feedback,
			CourseID:               r.CourseID,
			CourseName:             deref(r.CourseName),
			ActivityName:           r.ActivityName,
			AssignmentID:           r.ActivityID,
			StudentID:              r.StudentID,
			StudentName:            deref(r.StudentName),
			GraderID:               r.GraderID,
			GraderName:             deref(r.GraderName),
			RubricName:             r.RubricName,
			TimeCreated:            r.CreatedAt.Unix(),
			TimeModified:           r.UpdatedAt.Unix(),
		})
	}
	return &EvaluationList{Evaluations: rows, Count: len(rows)}, nil
}

type StudentOutcomeList struct {
	StudentOutcomes []catalog.Outcome `json:"student_outcomes"`
	Count           int               `json:"count"`
	Language        string            `json:"language"`
}

func (s *ReportService) GetStudentOutcomes(lang string) *StudentOutcomeList {
	lang = catalog.NormalizeLang(lang)
	outcomes := s.Catalog.StudentOutcomes(lang)
	return &StudentOutcomeList{
		StudentOutcomes: outcomes,
		Count:           len(outcomes),
		Language:        lang,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
