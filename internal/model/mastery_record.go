package model

import (
	"time"
)

// MasteryRecord 每个(用户,错题)一条，masteryLevel 始终是
// (correctCount, attemptCount) 经评分曲线算出的确定值，不单独赋值
type MasteryRecord struct {
	BaseModel
	UserID          uint           `gorm:"uniqueIndex:idx_user_question;not null" json:"userId"`
	QuestionID      string         `gorm:"uniqueIndex:idx_user_question;type:varchar(36);not null" json:"questionId"`
	MasteryLevel    int            `gorm:"default:0" json:"masteryLevel"`
	AttemptCount    int            `gorm:"default:0" json:"attemptCount"`
	CorrectCount    int            `gorm:"default:0" json:"correctCount"`
	LastAttemptDate *time.Time     `json:"lastAttemptDate"`
	History         MasteryHistory `gorm:"type:json" json:"history"`
}

func (MasteryRecord) TableName() string {
	return "mastery_records"
}
