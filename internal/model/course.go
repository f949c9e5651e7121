package model

// swagger:model Course
type Course struct {
	BaseModel
	ShortName string `gorm:"size:100;not null" json:"shortName"`
	FullName  string `gorm:"size:255;not null" json:"fullName"`
}

func (Course) TableName() string {
	return "courses"
}

// GradingArea 对应课程中的一个可评分活动（作业等），一个区域最多绑定一个评分定义
// swagger:model GradingArea
type GradingArea struct {
	BaseModel
	CourseID     uint   `gorm:"index;not null" json:"courseId"`
	ActivityID   uint   `gorm:"index;not null" json:"activityId"`
	ActivityName string `gorm:"size:255;not null" json:"activityName"`
	Course       Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (GradingArea) TableName() string {
	return "grading_areas"
}
