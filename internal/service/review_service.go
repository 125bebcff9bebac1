package service

import (
	"math"
	"sort"
	"time"
	"wrongbook_backend/internal/model"
	"wrongbook_backend/internal/util"
)

const (
	// 掌握度达到该值的错题视为已掌握，不再进入复习计划
	masteredThreshold = 80

	// 薄弱/中等/较强三档的分界
	weakThreshold   = 40
	mediumThreshold = 60

	// 单次计划的选题上限：薄弱最多5题，加中等补到10题，加较强补到15题
	weakCap   = 5
	mediumCap = 10
	planCap   = 15

	// 批量排期每天最多10题
	maxDailyQuestions = 10

	// 复习间隔上限30天
	maxReviewInterval = 30
)

// ReviewQuestionSource 排期需要的错题读取能力
type ReviewQuestionSource interface {
	ListByUserByMastery(userID uint) ([]model.WrongQuestion, error)
	ListByUserAndIDs(userID uint, ids []string) ([]model.WrongQuestion, error)
}

// ReviewPlanStore 复习计划的持久化能力
type ReviewPlanStore interface {
	Create(plan *model.ReviewPlan) error
	FindByID(id string) (*model.ReviewPlan, error)
	ListByUser(userID uint) ([]model.ReviewPlan, error)
	ListByUserAndStatus(userID uint, status model.ReviewPlanStatus) ([]model.ReviewPlan, error)
	UpdateStatus(id string, status model.ReviewPlanStatus) error
	Delete(id string) error
}

// ReviewService 把用户错题的掌握度快照转成按优先级排期的复习计划
type ReviewService struct {
	Plans     ReviewPlanStore
	Questions ReviewQuestionSource
}

func NewReviewService(plans ReviewPlanStore, questions ReviewQuestionSource) *ReviewService {
	return &ReviewService{
		Plans:     plans,
		Questions: questions,
	}
}

// Generate 生成一次复习计划。没有错题时返回 ErrNoWrongQuestions；
// 所有错题掌握度达标时返回 (nil, nil)，属正常结果而非错误
func (s *ReviewService) Generate(userID uint) (*model.ReviewPlan, error) {
	questions, err := s.Questions.ListByUserByMastery(userID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrNoWrongQuestions
	}

	// 输入已按掌握度升序，各档内保持这个顺序
	var weak, medium, strong []string
	for _, q := range questions {
		switch {
		case q.MasteryLevel >= masteredThreshold:
			// 已掌握，跳过
		case q.MasteryLevel < weakThreshold:
			weak = append(weak, q.ID)
		case q.MasteryLevel < mediumThreshold:
			medium = append(medium, q.ID)
		default:
			strong = append(strong, q.ID)
		}
	}

	if len(weak)+len(medium)+len(strong) == 0 {
		return nil, nil
	}

	selected := takeUpTo(weak, weakCap)
	if len(selected) < mediumCap {
		selected = append(selected, takeUpTo(medium, mediumCap-len(selected))...)
	}
	if len(selected) < planCap {
		selected = append(selected, takeUpTo(strong, planCap-len(selected))...)
	}

	plan := &model.ReviewPlan{
		UserID:         userID,
		Questions:      selected,
		NextReviewDate: time.Now().AddDate(0, 0, 1),
		ReviewInterval: 1,
		Status:         model.ReviewPending,
	}
	if err := s.Plans.Create(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// GenerateBatch 把全部错题按掌握度升序均摊到接下来 days 天，
// 每天一个计划。题目不够时提前结束，返回的计划数可能少于 days
func (s *ReviewService) GenerateBatch(userID uint, days int) ([]model.ReviewPlan, error) {
	if days <= 0 {
		days = 7
	}

	questions, err := s.Questions.ListByUserByMastery(userID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrNoWrongQuestions
	}

	perDay := int(math.Ceil(float64(len(questions)) / float64(days)))
	if perDay > maxDailyQuestions {
		perDay = maxDailyQuestions
	}

	now := time.Now()
	var plans []model.ReviewPlan
	for day := 0; day < days; day++ {
		start := day * perDay
		if start >= len(questions) {
			break
		}
		end := start + perDay
		if end > len(questions) {
			end = len(questions)
		}

		ids := make(model.StringArray, 0, end-start)
		for _, q := range questions[start:end] {
			ids = append(ids, q.ID)
		}

		plan := model.ReviewPlan{
			UserID:         userID,
			Questions:      ids,
			NextReviewDate: now.AddDate(0, 0, day),
			ReviewInterval: 1,
			Status:         model.ReviewPending,
		}
		if err := s.Plans.Create(&plan); err != nil {
			// 单个计划落库失败不中断其余天的排期
			continue
		}
		plans = append(plans, plan)
	}

	return plans, nil
}

// UpdateStatus 推进复习计划状态，只允许 pending→in_progress→completed
// 单向前进。进入 completed 时按实际掌握情况调整间隔，必要时生成后继计划；
// 第二个返回值是后继计划，没有则为 nil
func (s *ReviewService) UpdateStatus(planID string, userID uint, status model.ReviewPlanStatus) (*model.ReviewPlan, *model.ReviewPlan, error) {
	if !model.ValidReviewPlanStatus(status) {
		return nil, nil, util.ErrInvalidReviewPlanStatus
	}

	plan, err := s.Plans.FindByID(planID)
	if err != nil {
		return nil, nil, err
	}
	if plan == nil {
		return nil, nil, util.ErrPlanNotFound
	}
	if plan.UserID != userID {
		return nil, nil, util.ErrPermissionDenied
	}

	// 重复完成会重复生成后继计划，必须挡掉
	if plan.Status == model.ReviewCompleted {
		return nil, nil, util.ErrPlanAlreadyCompleted
	}
	if statusRank(status) < statusRank(plan.Status) {
		return nil, nil, util.ErrInvalidStatusTransition
	}

	if err := s.Plans.UpdateStatus(plan.ID, status); err != nil {
		return nil, nil, err
	}
	plan.Status = status

	if status != model.ReviewCompleted {
		return plan, nil, nil
	}

	successor, err := s.spawnSuccessor(plan)
	if err != nil {
		return nil, nil, err
	}
	return plan, successor, nil
}

// spawnSuccessor 按计划内错题的实时掌握情况调整复习间隔，
// 仍有未掌握的题时生成携带同一题目集合的后继计划
func (s *ReviewService) spawnSuccessor(plan *model.ReviewPlan) (*model.ReviewPlan, error) {
	// 被删除的错题引用悬空，查不到即自动跳过
	live, err := s.Questions.ListByUserAndIDs(plan.UserID, plan.Questions)
	if err != nil {
		return nil, err
	}

	total := len(live)
	mastered := 0
	for _, q := range live {
		if q.MasteryLevel >= masteredThreshold {
			mastered++
		}
	}

	newInterval := plan.ReviewInterval
	if newInterval < 1 {
		newInterval = 1
	}
	if total > 0 {
		fraction := float64(mastered) / float64(total)
		if fraction >= 0.8 {
			newInterval *= 2
			if newInterval > maxReviewInterval {
				newInterval = maxReviewInterval
			}
		} else if fraction < 0.4 {
			newInterval /= 2
			if newInterval < 1 {
				newInterval = 1
			}
		}
	}

	if total-mastered <= 0 {
		return nil, nil
	}

	successor := &model.ReviewPlan{
		UserID:         plan.UserID,
		Questions:      plan.Questions,
		NextReviewDate: time.Now().AddDate(0, 0, newInterval),
		ReviewInterval: newInterval,
		Status:         model.ReviewPending,
	}
	if err := s.Plans.Create(successor); err != nil {
		return nil, err
	}
	return successor, nil
}

// ListPlans 返回用户的复习计划，可按状态筛选，按创建时间倒序
func (s *ReviewService) ListPlans(userID uint, status model.ReviewPlanStatus) ([]model.ReviewPlan, error) {
	var plans []model.ReviewPlan
	var err error
	if status != "" {
		plans, err = s.Plans.ListByUserAndStatus(userID, status)
	} else {
		plans, err = s.Plans.ListByUser(userID)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(plans, func(i, j int) bool {
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
	return plans, nil
}

// TodayReview 今日需要复习的计划和去重后的错题
type TodayReview struct {
	Plans     []model.ReviewPlan    `json:"reviewPlans"`
	Questions []model.WrongQuestion `json:"reviewQuestions"`
}

// Today 筛选复习日期落在今天、且尚未完成的计划
func (s *ReviewService) Today(userID uint) (*TodayReview, error) {
	plans, err := s.Plans.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	due := make([]model.ReviewPlan, 0)
	seen := make(map[string]bool)
	var ids []string
	for _, p := range plans {
		if p.Status == model.ReviewCompleted {
			continue
		}
		if p.NextReviewDate.Before(today) || !p.NextReviewDate.Before(tomorrow) {
			continue
		}
		due = append(due, p)
		for _, id := range p.Questions {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	questions, err := s.Questions.ListByUserAndIDs(userID, ids)
	if err != nil {
		return nil, err
	}

	return &TodayReview{Plans: due, Questions: questions}, nil
}

// DeletePlan 删除复习计划（校验归属）
func (s *ReviewService) DeletePlan(planID string, userID uint) error {
	plan, err := s.Plans.FindByID(planID)
	if err != nil {
		return err
	}
	if plan == nil {
		return util.ErrPlanNotFound
	}
	if plan.UserID != userID {
		return util.ErrPermissionDenied
	}
	return s.Plans.Delete(planID)
}

// ReviewStats 复习完成情况统计
type ReviewStats struct {
	TotalPlans      int `json:"totalPlans"`
	CompletedPlans  int `json:"completedPlans"`
	PendingPlans    int `json:"pendingPlans"`
	InProgressPlans int `json:"inProgressPlans"`
	CompletionRate  int `json:"completionRate"`
}

// Stats 统计各状态计划数，并返回最近创建的5个计划
func (s *ReviewService) Stats(userID uint) (*ReviewStats, []model.ReviewPlan, error) {
	plans, err := s.Plans.ListByUser(userID)
	if err != nil {
		return nil, nil, err
	}

	stats := &ReviewStats{TotalPlans: len(plans)}
	for _, p := range plans {
		switch p.Status {
		case model.ReviewCompleted:
			stats.CompletedPlans++
		case model.ReviewPending:
			stats.PendingPlans++
		case model.ReviewInProgress:
			stats.InProgressPlans++
		}
	}
	if stats.TotalPlans > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.CompletedPlans) / float64(stats.TotalPlans) * 100))
	}

	sort.Slice(plans, func(i, j int) bool {
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
	recent := plans
	if len(recent) > 5 {
		recent = recent[:5]
	}
	return stats, recent, nil
}

func statusRank(s model.ReviewPlanStatus) int {
	switch s {
	case model.ReviewPending:
		return 0
	case model.ReviewInProgress:
		return 1
	case model.ReviewCompleted:
		return 2
	}
	return -1
}

func takeUpTo(ids []string, n int) model.StringArray {
	if n > len(ids) {
		n = len(ids)
	}
	out := make(model.StringArray, 0, n)
	out = append(out, ids[:n]...)
	return out
}
