package model

import (
	"time"
)

// WrongQuestion 学生上传的错题，masteryLevel/reviewCount 是对应
// MasteryRecord 的冗余镜像，便于列表筛选时免去联表
type WrongQuestion struct {
	UUIDBase
	UserID           uint          `gorm:"index;not null" json:"userId"`
	QuestionContent  string        `gorm:"type:text;not null" json:"questionContent"`
	QuestionImage    string        `gorm:"size:500" json:"questionImage"`
	StandardAnswer   string        `gorm:"type:text;not null" json:"standardAnswer"`
	UserAnswer       string        `gorm:"type:text" json:"userAnswer"`
	ErrorReason      string        `gorm:"type:text" json:"errorReason"`
	KnowledgePoints  StringArray   `gorm:"type:json" json:"knowledgePoints"`
	ExamPoints       ExamPointList `gorm:"type:json" json:"examPoints"`
	Category         string        `gorm:"size:50;index" json:"category"`
	Difficulty       int           `gorm:"default:3" json:"difficulty"` // 1-5
	UploadDate       time.Time     `json:"uploadDate"`
	MasteryLevel     int           `gorm:"default:0;index" json:"masteryLevel"`
	ReviewCount      int           `gorm:"default:0" json:"reviewCount"`
	LastReviewDate   *time.Time    `json:"lastReviewDate"`
	SimilarQuestions StringArray   `gorm:"type:json" json:"similarQuestions"`
}

func (WrongQuestion) TableName() string {
	return "wrong_questions"
}
