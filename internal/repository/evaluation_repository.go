package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rubrics_backend/internal/model"
	"rubrics_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EvaluationRepository struct {
	DB *gorm.DB
	// Now 可在测试中替换
	Now func() time.Time
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{DB: db, Now: time.Now}
}

// WithTx 返回绑定到事务的副本
func (r *EvaluationRepository) WithTx(tx *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{DB: tx, Now: r.Now}
}

// EvaluationInput 一个指标的保存请求，level/score/feedback 以外的字段均为必填
type EvaluationInput struct {
	InstanceID         uint
	StudentID          uint
	CourseID           uint
	ActivityID         uint
	ActivityName       string
	StudentOutcomeID   uint
	IndicatorID        uint
	PerformanceLevelID *uint
	Score              *float64
	Feedback           string
}

func (in EvaluationInput) Validate() error {
	var missing []string
	if in.InstanceID == 0 {
		missing = append(missing, "instance")
	}
	if in.StudentID == 0 {
		missing = append(missing, "student")
	}
	if in.CourseID == 0 {
		missing = append(missing, "course")
	}
	if in.ActivityID == 0 {
		missing = append(missing, "activity")
	}
	if strings.TrimSpace(in.ActivityName) == "" {
		missing = append(missing, "activity name")
	}
	if in.StudentOutcomeID == 0 {
		missing = append(missing, "student outcome")
	}
	if in.IndicatorID == 0 {
		missing = append(missing, "indicator")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", util.ErrInvalidEvaluation, strings.Join(missing, ", "))
	}
	return nil
}

var evaluationUpdateColumns = []string{
	"student_outcome_id",
	"performance_level_id",
	"score",
	"feedback",
	"student_id",
	"course_id",
	"activity_id",
	"activity_name",
	"updated_at",
}

// Save 按 (instance_id, indicator_id) upsert；更新时保留原 created_at
func (r *EvaluationRepository) Save(ctx context.Context, in EvaluationInput) (uint, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	now := r.Now()
	eval := model.Evaluation{
		InstanceID:         in.InstanceID,
		IndicatorID:        in.IndicatorID,
		StudentOutcomeID:   in.StudentOutcomeID,
		PerformanceLevelID: in.PerformanceLevelID,
		Score:              in.Score,
		Feedback:           in.Feedback,
		StudentID:          in.StudentID,
		CourseID:           in.CourseID,
		ActivityID:         in.ActivityID,
		ActivityName:       in.ActivityName,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "instance_id"}, {Name: "indicator_id"}},
		DoUpdates: clause.AssignmentColumns(evaluationUpdateColumns),
	}).Create(&eval).Error
	if err != nil {
		return 0, fmt.Errorf("save evaluation %d/%d: %w", in.InstanceID, in.IndicatorID, err)
	}

	// MySQL 的 ON DUPLICATE KEY UPDATE 不回填已有行的 ID，重新查询
	var saved model.Evaluation
	err = r.DB.WithContext(ctx).
		Select("id").
		Where("instance_id = ? AND indicator_id = ?", in.InstanceID, in.IndicatorID).
		Take(&saved).Error
	if err != nil {
		return 0, fmt.Errorf("reload evaluation %d/%d: %w", in.InstanceID, in.IndicatorID, err)
	}
	return saved.ID, nil
}

// Reconcile 删除不再属于当前结构的评价；processed 非空时，未在本次保存中处理的指标也一并删除
func (r *EvaluationRepository) Reconcile(ctx context.Context, instanceID uint, structureIDs, processedIDs []uint) (int64, error) {
	keep := structureIDs
	if len(processedIDs) > 0 {
		keep = intersect(structureIDs, processedIDs)
	}

	q := r.DB.WithContext(ctx).Where("instance_id = ?", instanceID)
	if len(keep) > 0 {
		q = q.Where("indicator_id NOT IN ?", keep)
	}
	res := q.Delete(&model.Evaluation{})
	if res.Error != nil {
		return 0, fmt.Errorf("reconcile instance %d: %w", instanceID, res.Error)
	}
	return res.RowsAffected, nil
}

// Clear 删除给定指标的评价，indicatorIDs 为空时清空整个 instance
func (r *EvaluationRepository) Clear(ctx context.Context, instanceID uint, indicatorIDs []uint) (int64, error) {
	q := r.DB.WithContext(ctx).Where("instance_id = ?", instanceID)
	if len(indicatorIDs) > 0 {
		q = q.Where("indicator_id IN ?", indicatorIDs)
	}
	res := q.Delete(&model.Evaluation{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear instance %d: %w", instanceID, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *EvaluationRepository) CountForInstance(ctx context.Context, instanceID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Evaluation{}).Where("instance_id = ?", instanceID).Count(&count).Error
	return count, err
}

// ScoresForInstance 仅返回有分数的指标
func (r *EvaluationRepository) ScoresForInstance(ctx context.Context, instanceID uint) (map[uint]float64, error) {
	var rows []model.Evaluation
	err := r.DB.WithContext(ctx).
		Select("indicator_id", "score").
		Where("instance_id = ? AND score IS NOT NULL", instanceID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	scores := make(map[uint]float64, len(rows))
	for _, e := range rows {
		scores[e.IndicatorID] = *e.Score
	}
	return scores, nil
}

// StudentForInstance 已有评价记录中的学生 ID，没有记录时返回 0
func (r *EvaluationRepository) StudentForInstance(ctx context.Context, instanceID uint) (uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.Evaluation{}).
		Where("instance_id = ? AND student_id > 0", instanceID).
		Limit(1).
		Pluck("student_id", &ids).Error
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	return ids[0], nil
}

// EvaluationView 评价记录连同本地化的参考数据
type EvaluationView struct {
	ID                          uint      `gorm:"column:id" json:"id"`
	InstanceID                  uint      `gorm:"column:instance_id" json:"instanceid"`
	IndicatorID                 uint      `gorm:"column:indicator_id" json:"indicator_id"`
	StudentOutcomeID            uint      `gorm:"column:student_outcome_id" json:"student_outcome_id"`
	PerformanceLevelID          *uint     `gorm:"column:performance_level_id" json:"performance_level_id"`
	Score                       *float64  `gorm:"column:score" json:"score"`
	Feedback                    string    `gorm:"column:feedback" json:"feedback"`
	StudentID                   uint      `gorm:"column:student_id" json:"studentid"`
	SONumber                    string    `gorm:"column:so_number" json:"so_number"`
	SOTitle                     string    `gorm:"column:so_title" json:"so_title"`
	IndicatorLetter             string    `gorm:"column:indicator_letter" json:"indicator_letter"`
	IndicatorDescription        string    `gorm:"column:indicator_description" json:"indicator_description"`
	PerformanceLevelName        *string   `gorm:"column:performance_level_name" json:"performance_level_name"`
	PerformanceLevelDescription *string   `gorm:"column:performance_level_description" json:"performance_level_description"`
	MinScore                    *float64  `gorm:"column:min_score" json:"minscore"`
	MaxScore                    *float64  `gorm:"column:max_score" json:"maxscore"`
	CreatedAt                   time.Time `gorm:"column:created_at" json:"timecreated"`
	UpdatedAt                   time.Time `gorm:"column:updated_at" json:"timemodified"`
}

// langColumns 只会返回固定列名，可安全拼入 SQL
func langColumns(lang string) (title, description string) {
	if lang == "es" {
		return "title_es", "description_es"
	}
	return "title_en", "description_en"
}

// FetchForInstance 按指标 ID 返回评价；没有记录的指标不出现在结果中
func (r *EvaluationRepository) FetchForInstance(ctx context.Context, instanceID uint, lang string) (map[uint]EvaluationView, error) {
	title, desc := langColumns(lang)

	var rows []EvaluationView
	err := r.DB.WithContext(ctx).
		Table("outcome_evaluations AS e").
		Select(fmt.Sprintf(`e.id, e.instance_id, e.indicator_id, e.student_outcome_id, e.performance_level_id,
			e.score, e.feedback, e.student_id, e.created_at, e.updated_at,
			so.code AS so_number, so.%[1]s AS so_title,
			i.letter AS indicator_letter, i.%[2]s AS indicator_description,
			l.%[1]s AS performance_level_name, l.%[2]s AS performance_level_description,
			l.min_score AS min_score, l.max_score AS max_score`, title, desc)).
		Joins("JOIN student_outcomes so ON so.id = e.student_outcome_id").
		Joins("JOIN outcome_indicators i ON i.id = e.indicator_id").
		Joins("LEFT JOIN performance_levels l ON l.id = e.performance_level_id").
		Where("e.instance_id = ?", instanceID).
		Order("so.sort_order ASC, i.letter ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch evaluations for instance %d: %w", instanceID, err)
	}

	out := make(map[uint]EvaluationView, len(rows))
	for _, row := range rows {
		out[row.IndicatorID] = row
	}
	return out, nil
}

// EvaluationFilter 零值表示不过滤
type EvaluationFilter struct {
	CourseID   uint
	ActivityID uint
	GraderID   uint
	StudentID  uint
}

// EvaluationRecord 报表查询的一行，包含中英双语字段
type EvaluationRecord struct {
	ID                     uint      `gorm:"column:id"`
	InstanceID             uint      `gorm:"column:instance_id"`
	IndicatorID            uint      `gorm:"column:indicator_id"`
	IndicatorLetter        string    `gorm:"column:indicator_letter"`
	IndicatorDescriptionEn string    `gorm:"column:indicator_description_en"`
	IndicatorDescriptionEs string    `gorm:"column:indicator_description_es"`
	StudentOutcomeID       uint      `gorm:"column:student_outcome_id"`
	SONumber               string    `gorm:"column:so_number"`
	SOTitleEn              string    `gorm:"column:so_title_en"`
	SOTitleEs              string    `gorm:"column:so_title_es"`
	PerformanceLevelID     *uint     `gorm:"column:performance_level_id"`
	PerformanceLevelNameEn *string   `gorm:"column:performance_level_name_en"`
	PerformanceLevelNameEs *string   `gorm:"column:performance_level_name_es"`
	MinScore               *float64  `gorm:"column:min_score"`
	MaxScore               *float64  `gorm:"column:max_score"`
	Score                  *float64  `gorm:"column:score"`
	Feedback               string    `gorm:"column:feedback"`
	CourseID               uint      `gorm:"column:course_id"`
	CourseName             *string   `gorm:"column:course_name"`
	ActivityID             uint      `gorm:"column:activity_id"`
	ActivityName           string    `gorm:"column:activity_name"`
	StudentID              uint      `gorm:"column:student_id"`
	StudentName            *string   `gorm:"column:student_name"`
	GraderID               uint      `gorm:"column:grader_id"`
	GraderName             *string   `gorm:"column:grader_name"`
	RubricName             string    `gorm:"column:rubric_name"`
	CreatedAt              time.Time `gorm:"column:created_at"`
	UpdatedAt              time.Time `gorm:"column:updated_at"`
}

func (r *EvaluationRepository) Query(ctx context.Context, f EvaluationFilter) ([]EvaluationRecord, error) {
	q := r.DB.WithContext(ctx).
		Table("outcome_evaluations AS e").
		Select(`e.id, e.instance_id, e.indicator_id, e.student_outcome_id, e.performance_level_id,
			e.score, e.feedback, e.course_id, e.activity_id, e.activity_name, e.student_id,
			e.created_at, e.updated_at,
			i.letter AS indicator_letter, i.description_en AS indicator_description_en, i.description_es AS indicator_description_es,
			so.code AS so_number, so.title_en AS so_title_en, so.title_es AS so_title_es,
			l.title_en AS performance_level_name_en, l.title_es AS performance_level_name_es,
			l.min_score AS min_score, l.max_score AS max_score,
			c.full_name AS course_name,
			st.name AS student_name,
			gi.rater_id AS grader_id, gr.name AS grader_name,
			gd.name AS rubric_name`).
		Joins("JOIN student_outcomes so ON so.id = e.student_outcome_id").
		Joins("JOIN outcome_indicators i ON i.id = e.indicator_id").
		Joins("LEFT JOIN performance_levels l ON l.id = e.performance_level_id").
		Joins("JOIN grading_instances gi ON gi.id = e.instance_id").
		Joins("JOIN grading_definitions gd ON gd.id = gi.definition_id").
		Joins("LEFT JOIN courses c ON c.id = e.course_id").
		Joins("LEFT JOIN users st ON st.id = e.student_id").
		Joins("LEFT JOIN users gr ON gr.id = gi.rater_id")

	if f.CourseID > 0 {
		q = q.Where("e.course_id = ?", f.CourseID)
	}
	if f.ActivityID > 0 {
		q = q.Where("e.activity_id = ?", f.ActivityID)
	}
	if f.GraderID > 0 {
		q = q.Where("gi.rater_id = ?", f.GraderID)
	}
	if f.StudentID > 0 {
		q = q.Where("e.student_id = ?", f.StudentID)
	}

	var rows []EvaluationRecord
	err := q.Order("e.updated_at DESC, so.sort_order ASC, i.letter ASC, e.id ASC").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	return rows, nil
}

func intersect(a, b []uint) []uint {
	set := make(map[uint]struct{}, len(b))
	for _, id := range b {
		set[id] = struct{}{}
	}
	var out []uint
	for _, id := range a {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
