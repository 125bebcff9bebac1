package service

import (
	"math"
	"time"
	"wrongbook_backend/internal/model"
	"wrongbook_backend/internal/util"
)

// 掌握度历史只保留最近若干条，防止长期使用后记录无限膨胀
const maxHistoryEntries = 100

// WrongQuestionFinder 掌握度更新需要的错题读取能力
type WrongQuestionFinder interface {
	FindByID(id string) (*model.WrongQuestion, error)
}

// MasteryStore 掌握度记录的持久化能力。ApplyAttempt 必须在同一个
// 事务内完成读取、回调重算和落库，并对同一(用户,错题)互斥：并发的
// 两次答题不允许读到同一份旧计数。错题镜像字段也在该事务内更新
type MasteryStore interface {
	FindByUserAndQuestion(userID uint, questionID string) (*model.MasteryRecord, error)
	ListByUser(userID uint) ([]model.MasteryRecord, error)
	ApplyAttempt(userID uint, questionID string, apply func(record *model.MasteryRecord) (*model.WrongQuestion, error)) (*model.MasteryRecord, error)
}

type MasteryUpdateRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	IsCorrect  *bool  `json:"isCorrect" binding:"required"`
	UserAnswer string `json:"userAnswer"`
}

type MasteryBatchItem struct {
	QuestionID string `json:"questionId"`
	IsCorrect  *bool  `json:"isCorrect"`
}

type MasteryBatchRequest struct {
	Updates []MasteryBatchItem `json:"updates" binding:"required,min=1"`
}

// MasteryService 把答题结果流折算成掌握度
type MasteryService struct {
	Records   MasteryStore
	Questions WrongQuestionFinder
}

func NewMasteryService(records MasteryStore, questions WrongQuestionFinder) *MasteryService {
	return &MasteryService{
		Records:   records,
		Questions: questions,
	}
}

// ComputeMasteryLevel 由累计正确率算掌握度。全对档按答题次数分级，
// 避免一次答对就被判定为完全掌握
func ComputeMasteryLevel(correctCount, attemptCount int) int {
	if attemptCount <= 0 {
		return 0
	}

	rate := float64(correctCount) / float64(attemptCount)

	var level float64
	switch {
	case rate == 1:
		switch {
		case attemptCount >= 3:
			level = 100
		case attemptCount == 2:
			level = 90
		default:
			level = 80
		}
	case rate >= 0.7:
		level = 60 + (rate-0.7)*40/0.3
	case rate >= 0.4:
		level = 30 + (rate-0.4)*30/0.3
	default:
		level = rate * 30 / 0.4
	}

	result := int(math.Round(level))
	if result > 100 {
		result = 100
	}
	if result < 0 {
		result = 0
	}
	return result
}

// SuggestedReviewInterval 按艾宾浩斯遗忘曲线的简化档位给出下次复习间隔（天）
func SuggestedReviewInterval(masteryLevel int) int {
	switch {
	case masteryLevel >= 80:
		return 7
	case masteryLevel >= 60:
		return 3
	case masteryLevel >= 40:
		return 2
	default:
		return 1
	}
}

// RecordAttempt 记录一次答题结果并重算掌握度。
// 返回更新后的掌握度记录、错题和建议复习间隔
func (s *MasteryService) RecordAttempt(userID uint, questionID string, isCorrect bool) (*model.MasteryRecord, *model.WrongQuestion, int, error) {
	question, err := s.Questions.FindByID(questionID)
	if err != nil {
		return nil, nil, 0, err
	}
	if question == nil {
		return nil, nil, 0, util.ErrQuestionNotFound
	}
	if question.UserID != userID {
		return nil, nil, 0, util.ErrPermissionDenied
	}

	// 计数的读取和重算整体交给存储层，在行锁保护下执行
	record, err := s.Records.ApplyAttempt(userID, questionID, func(record *model.MasteryRecord) (*model.WrongQuestion, error) {
		record.AttemptCount++
		if isCorrect {
			record.CorrectCount++
		}

		now := time.Now()
		level := ComputeMasteryLevel(record.CorrectCount, record.AttemptCount)

		record.MasteryLevel = level
		record.LastAttemptDate = &now
		record.History = append(record.History, model.MasteryHistoryEntry{
			Date:  now,
			Level: level,
		})
		if len(record.History) > maxHistoryEntries {
			record.History = record.History[len(record.History)-maxHistoryEntries:]
		}

		// 镜像字段由记录推导，重放回调也得到同一结果
		question.MasteryLevel = level
		question.ReviewCount = record.AttemptCount
		question.LastReviewDate = &now
		return question, nil
	})
	if err != nil {
		return nil, nil, 0, err
	}

	return record, question, SuggestedReviewInterval(record.MasteryLevel), nil
}

// MasteryUpdateResult 批量更新中成功应用的一项
type MasteryUpdateResult struct {
	QuestionID   string `json:"questionId"`
	MasteryLevel int    `json:"masteryLevel"`
}

// MasterySkipped 批量更新中被跳过的一项及原因
type MasterySkipped struct {
	QuestionID string `json:"questionId"`
	Reason     string `json:"reason"`
}

// BatchRecordAttempts 逐项独立应用，单项失败只跳过不中断。
// 跳过的项带原因返回，保留可观测性
func (s *MasteryService) BatchRecordAttempts(userID uint, updates []MasteryBatchItem) ([]MasteryUpdateResult, []MasterySkipped) {
	results := make([]MasteryUpdateResult, 0, len(updates))
	var skipped []MasterySkipped

	for _, item := range updates {
		if item.QuestionID == "" || item.IsCorrect == nil {
			skipped = append(skipped, MasterySkipped{
				QuestionID: item.QuestionID,
				Reason:     "missing questionId or isCorrect",
			})
			continue
		}

		record, _, _, err := s.RecordAttempt(userID, item.QuestionID, *item.IsCorrect)
		if err != nil {
			skipped = append(skipped, MasterySkipped{
				QuestionID: item.QuestionID,
				Reason:     err.Error(),
			})
			continue
		}

		results = append(results, MasteryUpdateResult{
			QuestionID:   item.QuestionID,
			MasteryLevel: record.MasteryLevel,
		})
	}

	return results, skipped
}

// GetRecord 查询单条掌握度记录
func (s *MasteryService) GetRecord(userID uint, questionID string) (*model.MasteryRecord, error) {
	record, err := s.Records.FindByUserAndQuestion(userID, questionID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, util.ErrMasteryRecordNotFound
	}
	return record, nil
}

// ListRecords 按掌握度升序返回记录，可按区间筛选。minLevel/maxLevel 传负数表示不限
func (s *MasteryService) ListRecords(userID uint, minLevel, maxLevel, page, limit int) ([]model.MasteryRecord, int, error) {
	records, err := s.Records.ListByUser(userID)
	if err != nil {
		return nil, 0, err
	}

	filtered := make([]model.MasteryRecord, 0, len(records))
	for _, r := range records {
		if minLevel >= 0 && r.MasteryLevel < minLevel {
			continue
		}
		if maxLevel >= 0 && r.MasteryLevel > maxLevel {
			continue
		}
		filtered = append(filtered, r)
	}

	total := len(filtered)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= total {
		return []model.MasteryRecord{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return filtered[start:end], total, nil
}

// MasteryStats 用户整体掌握情况
type MasteryStats struct {
	TotalRecords       int     `json:"totalRecords"`
	MasteredRecords    int     `json:"masteredRecords"`
	InProgressRecords  int     `json:"inProgressRecords"`
	WeakRecords        int     `json:"weakRecords"`
	AverageMastery     int     `json:"averageMastery"`
	OverallCorrectRate float64 `json:"overallCorrectRate"`
}

// Stats 统计掌握度分布，第二个返回值是各区间的题数直方图
func (s *MasteryService) Stats(userID uint) (*MasteryStats, map[string]int, error) {
	records, err := s.Records.ListByUser(userID)
	if err != nil {
		return nil, nil, err
	}

	stats := &MasteryStats{TotalRecords: len(records)}
	distribution := map[string]int{
		"0-20":   0,
		"21-40":  0,
		"41-60":  0,
		"61-80":  0,
		"81-100": 0,
	}

	totalMastery := 0
	totalAttempts := 0
	totalCorrect := 0

	for _, r := range records {
		level := r.MasteryLevel
		totalMastery += level
		totalAttempts += r.AttemptCount
		totalCorrect += r.CorrectCount

		switch {
		case level >= 80:
			stats.MasteredRecords++
		case level >= 40:
			stats.InProgressRecords++
		default:
			stats.WeakRecords++
		}

		switch {
		case level <= 20:
			distribution["0-20"]++
		case level <= 40:
			distribution["21-40"]++
		case level <= 60:
			distribution["41-60"]++
		case level <= 80:
			distribution["61-80"]++
		default:
			distribution["81-100"]++
		}
	}

	if stats.TotalRecords > 0 {
		stats.AverageMastery = int(math.Round(float64(totalMastery) / float64(stats.TotalRecords)))
	}
	if totalAttempts > 0 {
		stats.OverallCorrectRate = math.Round(float64(totalCorrect)/float64(totalAttempts)*100) / 100
	}

	return stats, distribution, nil
}
