package service

import (
	"fmt"
	"sort"
	"testing"
	"time"
	"wrongbook_backend/internal/model"
	"wrongbook_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuestionSource struct {
	questions []model.WrongQuestion
}

func (f *fakeQuestionSource) ListByUserByMastery(userID uint) ([]model.WrongQuestion, error) {
	var out []model.WrongQuestion
	for _, q := range f.questions {
		if q.UserID == userID {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MasteryLevel < out[j].MasteryLevel
	})
	return out, nil
}

func (f *fakeQuestionSource) ListByUserAndIDs(userID uint, ids []string) ([]model.WrongQuestion, error) {
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	var out []model.WrongQuestion
	for _, q := range f.questions {
		if q.UserID == userID && idSet[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakePlanStore struct {
	plans map[string]*model.ReviewPlan
	seq   int
}

func newFakePlanStore() *fakePlanStore {
	return &fakePlanStore{plans: make(map[string]*model.ReviewPlan)}
}

func (f *fakePlanStore) Create(plan *model.ReviewPlan) error {
	f.seq++
	if plan.ID == "" {
		plan.ID = fmt.Sprintf("plan-%d", f.seq)
	}
	plan.CreatedAt = time.Now().Add(time.Duration(f.seq) * time.Millisecond)
	stored := *plan
	f.plans[plan.ID] = &stored
	return nil
}

func (f *fakePlanStore) FindByID(id string) (*model.ReviewPlan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, nil
	}
	copied := *plan
	return &copied, nil
}

func (f *fakePlanStore) ListByUser(userID uint) ([]model.ReviewPlan, error) {
	var out []model.ReviewPlan
	for _, p := range f.plans {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlanStore) ListByUserAndStatus(userID uint, status model.ReviewPlanStatus) ([]model.ReviewPlan, error) {
	var out []model.ReviewPlan
	for _, p := range f.plans {
		if p.UserID == userID && p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlanStore) UpdateStatus(id string, status model.ReviewPlanStatus) error {
	plan, ok := f.plans[id]
	if !ok {
		return util.ErrPlanNotFound
	}
	plan.Status = status
	return nil
}

func (f *fakePlanStore) Delete(id string) error {
	delete(f.plans, id)
	return nil
}

func masteryQuestions(userID uint, levels ...int) []model.WrongQuestion {
	questions := make([]model.WrongQuestion, 0, len(levels))
	for i, level := range levels {
		questions = append(questions, model.WrongQuestion{
			UUIDBase:     model.UUIDBase{ID: fmt.Sprintf("q%d", i)},
			UserID:       userID,
			MasteryLevel: level,
		})
	}
	return questions
}

func newReviewFixture(questions []model.WrongQuestion) (*ReviewService, *fakePlanStore, *fakeQuestionSource) {
	source := &fakeQuestionSource{questions: questions}
	store := newFakePlanStore()
	return NewReviewService(store, source), store, source
}

func TestGenerateNoQuestions(t *testing.T) {
	svc, _, _ := newReviewFixture(nil)

	_, err := svc.Generate(1)
	assert.ErrorIs(t, err, util.ErrNoWrongQuestions)
}

func TestGenerateAllMastered(t *testing.T) {
	svc, store, _ := newReviewFixture(masteryQuestions(1, 80, 90, 100))

	plan, err := svc.Generate(1)
	require.NoError(t, err)
	assert.Nil(t, plan)
	assert.Empty(t, store.plans)
}

func TestGenerateTierCaps(t *testing.T) {
	// 各档20题：薄弱最多5题，中等补到10题，较强补到15题
	levels := make([]int, 0, 60)
	for i := 0; i < 20; i++ {
		levels = append(levels, 10) // 薄弱
	}
	for i := 0; i < 20; i++ {
		levels = append(levels, 50) // 中等
	}
	for i := 0; i < 20; i++ {
		levels = append(levels, 70) // 较强
	}
	questions := masteryQuestions(1, levels...)
	svc, _, source := newReviewFixture(questions)

	plan, err := svc.Generate(1)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Len(t, plan.Questions, 15)

	byID := make(map[string]int)
	for _, q := range questions {
		byID[q.ID] = q.MasteryLevel
	}
	weak, medium, strong := 0, 0, 0
	for _, id := range plan.Questions {
		switch level := byID[id]; {
		case level < 40:
			weak++
		case level < 60:
			medium++
		default:
			strong++
		}
	}
	assert.Equal(t, 5, weak)
	assert.Equal(t, 5, medium)
	assert.Equal(t, 5, strong)

	assert.Equal(t, 1, plan.ReviewInterval)
	assert.Equal(t, model.ReviewPending, plan.Status)
	_ = source
}

func TestGenerateFewQuestions(t *testing.T) {
	svc, _, _ := newReviewFixture(masteryQuestions(1, 10, 50, 90))

	plan, err := svc.Generate(1)
	require.NoError(t, err)
	require.NotNil(t, plan)
	// 已掌握的90分题不入计划
	assert.Len(t, plan.Questions, 2)
}

func TestGenerateBatchSpreadsAcrossDays(t *testing.T) {
	levels := make([]int, 14)
	for i := range levels {
		levels[i] = 10
	}
	svc, _, _ := newReviewFixture(masteryQuestions(1, levels...))

	plans, err := svc.GenerateBatch(1, 7)
	require.NoError(t, err)
	// 14题7天，每天2题
	require.Len(t, plans, 7)

	seen := make(map[string]bool)
	for day, plan := range plans {
		assert.Len(t, plan.Questions, 2)
		for _, id := range plan.Questions {
			assert.False(t, seen[id], "question scheduled twice: %s", id)
			seen[id] = true
		}
		wantDate := time.Now().AddDate(0, 0, day)
		assert.WithinDuration(t, wantDate, plan.NextReviewDate, time.Minute)
	}
	assert.Len(t, seen, 14)
}

func TestGenerateBatchFewerQuestionsThanDays(t *testing.T) {
	svc, _, _ := newReviewFixture(masteryQuestions(1, 10, 20, 30))

	plans, err := svc.GenerateBatch(1, 7)
	require.NoError(t, err)
	// 3题7天，每天1题，提前结束
	assert.Len(t, plans, 3)
}

func TestGenerateBatchDailyCap(t *testing.T) {
	levels := make([]int, 50)
	for i := range levels {
		levels[i] = 10
	}
	svc, _, _ := newReviewFixture(masteryQuestions(1, levels...))

	plans, err := svc.GenerateBatch(1, 2)
	require.NoError(t, err)
	for _, plan := range plans {
		assert.LessOrEqual(t, len(plan.Questions), 10)
	}
}

func TestGenerateBatchDefaultDays(t *testing.T) {
	svc, _, _ := newReviewFixture(masteryQuestions(1, 10))

	plans, err := svc.GenerateBatch(1, 0)
	require.NoError(t, err)
	assert.Len(t, plans, 1)
}

func TestUpdateStatusInvalid(t *testing.T) {
	svc, _, _ := newReviewFixture(nil)

	_, _, err := svc.UpdateStatus("any", 1, "done")
	assert.ErrorIs(t, err, util.ErrInvalidReviewPlanStatus)
}

func TestUpdateStatusOwnership(t *testing.T) {
	svc, store, _ := newReviewFixture(nil)
	plan := &model.ReviewPlan{UserID: 2, Status: model.ReviewPending}
	require.NoError(t, store.Create(plan))

	_, _, err := svc.UpdateStatus(plan.ID, 1, model.ReviewInProgress)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestUpdateStatusBackwardRejected(t *testing.T) {
	svc, store, _ := newReviewFixture(nil)
	plan := &model.ReviewPlan{UserID: 1, Status: model.ReviewInProgress}
	require.NoError(t, store.Create(plan))

	_, _, err := svc.UpdateStatus(plan.ID, 1, model.ReviewPending)
	assert.ErrorIs(t, err, util.ErrInvalidStatusTransition)
}

func TestCompletePlanSpawnsSuccessor(t *testing.T) {
	// 3题都未掌握：完成率0，间隔折半（下限1），生成后继计划
	questions := masteryQuestions(1, 10, 20, 30)
	svc, store, _ := newReviewFixture(questions)

	ids := model.StringArray{"q0", "q1", "q2"}
	plan := &model.ReviewPlan{
		UserID:         1,
		Questions:      ids,
		ReviewInterval: 4,
		Status:         model.ReviewInProgress,
	}
	require.NoError(t, store.Create(plan))

	updated, successor, err := svc.UpdateStatus(plan.ID, 1, model.ReviewCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.ReviewCompleted, updated.Status)

	require.NotNil(t, successor)
	assert.Equal(t, ids, successor.Questions)
	assert.Equal(t, 2, successor.ReviewInterval)
	assert.Equal(t, model.ReviewPending, successor.Status)
}

func TestCompletePlanDoublesIntervalWhenMostlyMastered(t *testing.T) {
	// 5题中4题已掌握：完成率0.8，间隔翻倍
	questions := masteryQuestions(1, 90, 85, 80, 100, 10)
	svc, store, _ := newReviewFixture(questions)

	plan := &model.ReviewPlan{
		UserID:         1,
		Questions:      model.StringArray{"q0", "q1", "q2", "q3", "q4"},
		ReviewInterval: 20,
		Status:         model.ReviewPending,
	}
	require.NoError(t, store.Create(plan))

	_, successor, err := svc.UpdateStatus(plan.ID, 1, model.ReviewCompleted)
	require.NoError(t, err)
	require.NotNil(t, successor)
	// 翻倍后超过上限30则封顶
	assert.Equal(t, 30, successor.ReviewInterval)
}

func TestCompletePlanAllMasteredNoSuccessor(t *testing.T) {
	questions := masteryQuestions(1, 90, 85, 100)
	svc, store, _ := newReviewFixture(questions)

	plan := &model.ReviewPlan{
		UserID:         1,
		Questions:      model.StringArray{"q0", "q1", "q2"},
		ReviewInterval: 2,
		Status:         model.ReviewPending,
	}
	require.NoError(t, store.Create(plan))

	_, successor, err := svc.UpdateStatus(plan.ID, 1, model.ReviewCompleted)
	require.NoError(t, err)
	assert.Nil(t, successor)
}

func TestCompletePlanToleratesDanglingReferences(t *testing.T) {
	// 计划里有已删除的错题ID，静默跳过
	questions := masteryQuestions(1, 10)
	svc, store, _ := newReviewFixture(questions)

	plan := &model.ReviewPlan{
		UserID:         1,
		Questions:      model.StringArray{"q0", "deleted-1", "deleted-2"},
		ReviewInterval: 2,
		Status:         model.ReviewPending,
	}
	require.NoError(t, store.Create(plan))

	_, successor, err := svc.UpdateStatus(plan.ID, 1, model.ReviewCompleted)
	require.NoError(t, err)
	require.NotNil(t, successor)
}

func TestCompletePlanTwiceRejected(t *testing.T) {
	questions := masteryQuestions(1, 10)
	svc, store, _ := newReviewFixture(questions)

	plan := &model.ReviewPlan{
		UserID:         1,
		Questions:      model.StringArray{"q0"},
		ReviewInterval: 1,
		Status:         model.ReviewPending,
	}
	require.NoError(t, store.Create(plan))

	_, _, err := svc.UpdateStatus(plan.ID, 1, model.ReviewCompleted)
	require.NoError(t, err)

	_, _, err = svc.UpdateStatus(plan.ID, 1, model.ReviewCompleted)
	assert.ErrorIs(t, err, util.ErrPlanAlreadyCompleted)
}

func TestListPlansFilterAndOrder(t *testing.T) {
	svc, store, _ := newReviewFixture(nil)
	for i := 0; i < 3; i++ {
		status := model.ReviewPending
		if i == 1 {
			status = model.ReviewCompleted
		}
		require.NoError(t, store.Create(&model.ReviewPlan{UserID: 1, Status: status}))
	}

	plans, err := svc.ListPlans(1, "")
	require.NoError(t, err)
	assert.Len(t, plans, 3)
	for i := 1; i < len(plans); i++ {
		assert.True(t, !plans[i-1].CreatedAt.Before(plans[i].CreatedAt))
	}

	pending, err := svc.ListPlans(1, model.ReviewPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestToday(t *testing.T) {
	questions := masteryQuestions(1, 10, 20)
	svc, store, _ := newReviewFixture(questions)

	now := time.Now()
	// 今天到期，未完成
	require.NoError(t, store.Create(&model.ReviewPlan{
		UserID:         1,
		Questions:      model.StringArray{"q0", "q1"},
		NextReviewDate: now,
		Status:         model.ReviewPending,
	}))
	// 今天到期但已完成
	require.NoError(t, store.Create(&model.ReviewPlan{
		UserID:         1,
		Questions:      model.StringArray{"q0"},
		NextReviewDate: now,
		Status:         model.ReviewCompleted,
	}))
	// 明天到期
	require.NoError(t, store.Create(&model.ReviewPlan{
		UserID:         1,
		Questions:      model.StringArray{"q1"},
		NextReviewDate: now.AddDate(0, 0, 1),
		Status:         model.ReviewPending,
	}))

	today, err := svc.Today(1)
	require.NoError(t, err)
	assert.Len(t, today.Plans, 1)
	assert.Len(t, today.Questions, 2)
}

func TestDeletePlanOwnership(t *testing.T) {
	svc, store, _ := newReviewFixture(nil)
	plan := &model.ReviewPlan{UserID: 2}
	require.NoError(t, store.Create(plan))

	err := svc.DeletePlan(plan.ID, 1)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	require.NoError(t, svc.DeletePlan(plan.ID, 2))
	assert.Empty(t, store.plans)
}

func TestReviewStats(t *testing.T) {
	svc, store, _ := newReviewFixture(nil)
	statuses := []model.ReviewPlanStatus{
		model.ReviewCompleted,
		model.ReviewCompleted,
		model.ReviewPending,
		model.ReviewInProgress,
	}
	for _, status := range statuses {
		require.NoError(t, store.Create(&model.ReviewPlan{UserID: 1, Status: status}))
	}
	for i := 0; i < 6; i++ {
		require.NoError(t, store.Create(&model.ReviewPlan{UserID: 1, Status: model.ReviewPending}))
	}

	stats, recent, err := svc.Stats(1)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalPlans)
	assert.Equal(t, 2, stats.CompletedPlans)
	assert.Equal(t, 7, stats.PendingPlans)
	assert.Equal(t, 1, stats.InProgressPlans)
	assert.Equal(t, 20, stats.CompletionRate)
	assert.Len(t, recent, 5)
}
