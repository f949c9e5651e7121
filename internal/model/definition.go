package model

import (
	"time"

	"rubrics_backend/internal/grading"

	"gorm.io/datatypes"
)

// DefinitionOptions 显示选项，以 JSON 存储
type DefinitionOptions struct {
	ShowScoreTeacher     bool `json:"showscoreteacher"`
	ShowScoreStudent     bool `json:"showscorestudent"`
	AlwaysShowDefinition bool `json:"alwaysshowdefinition"`
}

func DefaultDefinitionOptions() DefinitionOptions {
	return DefinitionOptions{
		ShowScoreTeacher:     true,
		ShowScoreStudent:     true,
		AlwaysShowDefinition: true,
	}
}

// Definition 将一个 Student Outcome 评分表绑定到一个评分区域
// swagger:model Definition
type Definition struct {
	ID            uint                                 `gorm:"primaryKey;autoIncrement" json:"id"`
	AreaID        uint                                 `gorm:"uniqueIndex;not null" json:"areaId"`
	Name          string                               `gorm:"size:255" json:"name"`
	Description   string                               `gorm:"type:text" json:"description"`
	Keyname       string                               `gorm:"size:20;index" json:"keyname"` // so1 ... so7，空表示尚未选择
	Options       datatypes.JSONType[DefinitionOptions] `json:"options"`
	GradeMin      float64                              `gorm:"default:0" json:"gradeMin"`
	GradeMax      float64                              `gorm:"default:100" json:"gradeMax"`
	AllowDecimals bool                                 `gorm:"default:false" json:"allowDecimals"`
	CreatedBy     uint                                 `gorm:"index" json:"createdBy"`
	CreatedAt     time.Time                            `json:"createdAt"`
	UpdatedAt     time.Time                            `json:"updatedAt"`
}

func (Definition) TableName() string {
	return "grading_definitions"
}

func (d Definition) GradeRange() grading.GradeRange {
	return grading.GradeRange{
		Min:           d.GradeMin,
		Max:           d.GradeMax,
		AllowDecimals: d.AllowDecimals,
	}
}
