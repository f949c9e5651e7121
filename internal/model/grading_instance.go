package model

import "time"

type InstanceStatus string

const (
	InstanceIncomplete InstanceStatus = "incomplete"
	InstanceActive     InstanceStatus = "active"
	InstanceArchived   InstanceStatus = "archived"
)

// GradingInstance 一位教师对一份提交的一次评分
// swagger:model GradingInstance
type GradingInstance struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	DefinitionID uint           `gorm:"index:idx_instance_lookup;not null" json:"definitionId"`
	RaterID      uint           `gorm:"index:idx_instance_lookup;not null" json:"raterId"`
	ItemID       uint           `gorm:"index:idx_instance_lookup;not null" json:"itemId"`
	StudentID    uint           `gorm:"index" json:"studentId"`
	Status       InstanceStatus `gorm:"size:20;default:'incomplete'" json:"status"`
	RawGrade     *float64       `json:"rawGrade,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func (GradingInstance) TableName() string {
	return "grading_instances"
}
