package model

import "time"

// Evaluation 每个 (instance, indicator) 至多一条
// swagger:model Evaluation
type Evaluation struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	InstanceID         uint      `gorm:"uniqueIndex:idx_eval_instance_indicator;not null" json:"instanceId"`
	IndicatorID        uint      `gorm:"uniqueIndex:idx_eval_instance_indicator;index;not null" json:"indicatorId"`
	StudentOutcomeID   uint      `gorm:"index;not null" json:"studentOutcomeId"`
	PerformanceLevelID *uint     `json:"performanceLevelId"`
	Score              *float64  `json:"score"`
	Feedback           string    `gorm:"type:text" json:"feedback"`
	StudentID          uint      `gorm:"index;not null" json:"studentId"`
	CourseID           uint      `gorm:"index;not null" json:"courseId"`
	ActivityID         uint      `gorm:"index;not null" json:"activityId"`
	ActivityName       string    `gorm:"size:255;not null" json:"activityName"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (Evaluation) TableName() string {
	return "outcome_evaluations"
}
