package model

import (
	"time"
)

type ReviewPlanStatus string

const (
	ReviewPending    ReviewPlanStatus = "pending"
	ReviewInProgress ReviewPlanStatus = "in_progress"
	ReviewCompleted  ReviewPlanStatus = "completed"
)

// ValidReviewPlanStatus 校验状态取值
func ValidReviewPlanStatus(s ReviewPlanStatus) bool {
	switch s {
	case ReviewPending, ReviewInProgress, ReviewCompleted:
		return true
	}
	return false
}

// ReviewPlan 一次排期产生的复习计划。Questions 只存错题ID（弱引用），
// 错题被删除后引用悬空，消费方需静默跳过
type ReviewPlan struct {
	UUIDBase
	UserID         uint             `gorm:"index;not null" json:"userId"`
	Questions      StringArray      `gorm:"type:json" json:"questions"`
	NextReviewDate time.Time        `gorm:"index" json:"nextReviewDate"`
	ReviewInterval int              `gorm:"default:1" json:"reviewInterval"` // 天
	Status         ReviewPlanStatus `gorm:"type:enum('pending','in_progress','completed');default:'pending'" json:"status"`
}

func (ReviewPlan) TableName() string {
	return "review_plans"
}
