package model

// Student Outcome 参考数据：首次启动时写入，之后只读

// swagger:model StudentOutcome
type StudentOutcome struct {
	ID            uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Code          string      `gorm:"size:10;uniqueIndex;not null" json:"code"` // SO1 ... SO7
	TitleEn       string      `gorm:"size:255;not null" json:"titleEn"`
	TitleEs       string      `gorm:"size:255;not null" json:"titleEs"`
	DescriptionEn string      `gorm:"type:text" json:"descriptionEn"`
	DescriptionEs string      `gorm:"type:text" json:"descriptionEs"`
	SortOrder     int         `gorm:"default:0" json:"sortOrder"`
	Indicators    []Indicator `gorm:"foreignKey:StudentOutcomeID" json:"indicators,omitempty"`
}

func (StudentOutcome) TableName() string {
	return "student_outcomes"
}

// swagger:model Indicator
type Indicator struct {
	ID               uint               `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentOutcomeID uint               `gorm:"uniqueIndex:idx_indicator_outcome_letter;not null" json:"studentOutcomeId"`
	Letter           string             `gorm:"size:1;uniqueIndex:idx_indicator_outcome_letter;not null" json:"letter"`
	DescriptionEn    string             `gorm:"type:text" json:"descriptionEn"`
	DescriptionEs    string             `gorm:"type:text" json:"descriptionEs"`
	Levels           []PerformanceLevel `gorm:"foreignKey:IndicatorID" json:"levels,omitempty"`
}

func (Indicator) TableName() string {
	return "outcome_indicators"
}

// PerformanceLevel 分数区间为闭区间 [MinScore, MaxScore]
// swagger:model PerformanceLevel
type PerformanceLevel struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	IndicatorID   uint    `gorm:"index;not null" json:"indicatorId"`
	TitleEn       string  `gorm:"size:100;not null" json:"titleEn"`
	TitleEs       string  `gorm:"size:100;not null" json:"titleEs"`
	DescriptionEn string  `gorm:"type:text" json:"descriptionEn"`
	DescriptionEs string  `gorm:"type:text" json:"descriptionEs"`
	MinScore      float64 `gorm:"not null" json:"minScore"`
	MaxScore      float64 `gorm:"not null" json:"maxScore"`
	SortOrder     int     `gorm:"default:0" json:"sortOrder"` // 1 = Inadequate ... 4 = Excellent
}

func (PerformanceLevel) TableName() string {
	return "performance_levels"
}
