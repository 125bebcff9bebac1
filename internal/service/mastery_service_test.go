package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
	"wrongbook_backend/internal/model"
	"wrongbook_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuestionFinder struct {
	questions map[string]*model.WrongQuestion
}

func (f *fakeQuestionFinder) FindByID(id string) (*model.WrongQuestion, error) {
	return f.questions[id], nil
}

type fakeMasteryStore struct {
	mu        sync.Mutex
	records   map[string]*model.MasteryRecord
	applyErr  error
	appliedAt int
}

func newFakeMasteryStore() *fakeMasteryStore {
	return &fakeMasteryStore{records: make(map[string]*model.MasteryRecord)}
}

func (f *fakeMasteryStore) key(userID uint, questionID string) string {
	return fmt.Sprintf("%d:%s", userID, questionID)
}

func (f *fakeMasteryStore) FindByUserAndQuestion(userID uint, questionID string) (*model.MasteryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[f.key(userID, questionID)], nil
}

func (f *fakeMasteryStore) ListByUser(userID uint) ([]model.MasteryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.MasteryRecord
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// ApplyAttempt 仿照真实实现，读取和回调都在临界区内执行
func (f *fakeMasteryStore) ApplyAttempt(userID uint, questionID string, apply func(record *model.MasteryRecord) (*model.WrongQuestion, error)) (*model.MasteryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return nil, f.applyErr
	}

	record := f.records[f.key(userID, questionID)]
	if record == nil {
		record = &model.MasteryRecord{UserID: userID, QuestionID: questionID}
	}
	if _, err := apply(record); err != nil {
		return nil, err
	}
	f.records[f.key(userID, questionID)] = record
	f.appliedAt++
	out := *record
	return &out, nil
}

func newMasteryFixture(questions ...*model.WrongQuestion) (*MasteryService, *fakeMasteryStore, *fakeQuestionFinder) {
	finder := &fakeQuestionFinder{questions: make(map[string]*model.WrongQuestion)}
	for _, q := range questions {
		finder.questions[q.ID] = q
	}
	store := newFakeMasteryStore()
	return NewMasteryService(store, finder), store, finder
}

func wrongQuestion(id string, userID uint) *model.WrongQuestion {
	return &model.WrongQuestion{
		UUIDBase:   model.UUIDBase{ID: id},
		UserID:     userID,
		UploadDate: time.Now(),
	}
}

func TestComputeMasteryLevel(t *testing.T) {
	tests := []struct {
		name         string
		correctCount int
		attemptCount int
		want         int
	}{
		{"no attempts yet", 0, 0, 0},
		{"perfect single attempt", 1, 1, 80},
		{"perfect two attempts", 2, 2, 90},
		{"perfect three attempts", 3, 3, 100},
		{"perfect many attempts", 5, 5, 100},
		{"high rate lower bound", 7, 10, 60},
		{"just below high rate boundary", 69, 100, 59},
		{"high rate interior", 9, 10, 87},
		{"medium rate lower bound", 4, 10, 30},
		{"medium rate interior", 5, 10, 40},
		{"low rate", 2, 10, 15},
		{"all wrong", 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeMasteryLevel(tt.correctCount, tt.attemptCount))
		})
	}
}

func TestComputeMasteryLevelBounds(t *testing.T) {
	for attempts := 1; attempts <= 20; attempts++ {
		for correct := 0; correct <= attempts; correct++ {
			level := ComputeMasteryLevel(correct, attempts)
			assert.GreaterOrEqual(t, level, 0)
			assert.LessOrEqual(t, level, 100)
		}
	}
}

func TestSuggestedReviewInterval(t *testing.T) {
	assert.Equal(t, 7, SuggestedReviewInterval(100))
	assert.Equal(t, 7, SuggestedReviewInterval(80))
	assert.Equal(t, 3, SuggestedReviewInterval(60))
	assert.Equal(t, 2, SuggestedReviewInterval(40))
	assert.Equal(t, 1, SuggestedReviewInterval(39))
	assert.Equal(t, 1, SuggestedReviewInterval(0))
}

func TestRecordAttempt(t *testing.T) {
	q := wrongQuestion("q1", 1)
	svc, store, _ := newMasteryFixture(q)

	record, question, interval, err := svc.RecordAttempt(1, "q1", true)
	require.NoError(t, err)

	assert.Equal(t, 1, record.AttemptCount)
	assert.Equal(t, 1, record.CorrectCount)
	assert.Equal(t, 80, record.MasteryLevel)
	assert.Len(t, record.History, 1)
	assert.Equal(t, 7, interval)

	// 错题上的镜像字段同步更新
	assert.Equal(t, 80, question.MasteryLevel)
	assert.Equal(t, 1, question.ReviewCount)
	require.NotNil(t, question.LastReviewDate)

	assert.Equal(t, 1, store.appliedAt)
}

func TestRecordAttemptAccumulates(t *testing.T) {
	q := wrongQuestion("q1", 1)
	svc, _, _ := newMasteryFixture(q)

	_, _, _, err := svc.RecordAttempt(1, "q1", true)
	require.NoError(t, err)
	record, _, _, err := svc.RecordAttempt(1, "q1", false)
	require.NoError(t, err)

	assert.Equal(t, 2, record.AttemptCount)
	assert.Equal(t, 1, record.CorrectCount)
	assert.Equal(t, ComputeMasteryLevel(1, 2), record.MasteryLevel)
	assert.Len(t, record.History, 2)
}

func TestRecordAttemptQuestionNotFound(t *testing.T) {
	svc, _, _ := newMasteryFixture()

	_, _, _, err := svc.RecordAttempt(1, "missing", true)
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}

func TestRecordAttemptPermissionDenied(t *testing.T) {
	q := wrongQuestion("q1", 2)
	svc, _, _ := newMasteryFixture(q)

	_, _, _, err := svc.RecordAttempt(1, "q1", true)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestRecordAttemptStoreFailure(t *testing.T) {
	q := wrongQuestion("q1", 1)
	svc, store, _ := newMasteryFixture(q)
	store.applyErr = errors.New("db down")

	_, _, _, err := svc.RecordAttempt(1, "q1", true)
	assert.Error(t, err)
}

func TestRecordAttemptConcurrentNoLostUpdate(t *testing.T) {
	// 同一(用户,错题)的并发答题必须串行化：两次答对后
	// 计数是2/2、掌握度90，不允许丢失其中一次
	q := wrongQuestion("q1", 1)
	svc, _, _ := newMasteryFixture(q)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _, err := svc.RecordAttempt(1, "q1", true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	record, err := svc.GetRecord(1, "q1")
	require.NoError(t, err)
	assert.Equal(t, 2, record.AttemptCount)
	assert.Equal(t, 2, record.CorrectCount)
	assert.Equal(t, 90, record.MasteryLevel)
	assert.Len(t, record.History, 2)
}

func TestRecordAttemptHistoryCap(t *testing.T) {
	q := wrongQuestion("q1", 1)
	svc, store, _ := newMasteryFixture(q)

	for i := 0; i < maxHistoryEntries+20; i++ {
		_, _, _, err := svc.RecordAttempt(1, "q1", i%2 == 0)
		require.NoError(t, err)
	}

	record := store.records[store.key(1, "q1")]
	assert.Len(t, record.History, maxHistoryEntries)
	// 保留的是最近的条目
	assert.Equal(t, record.MasteryLevel, record.History[len(record.History)-1].Level)
}

func TestBatchRecordAttempts(t *testing.T) {
	q1 := wrongQuestion("q1", 1)
	q2 := wrongQuestion("q2", 1)
	other := wrongQuestion("q3", 2)
	svc, _, _ := newMasteryFixture(q1, q2, other)

	yes := true
	results, skipped := svc.BatchRecordAttempts(1, []MasteryBatchItem{
		{QuestionID: "q1", IsCorrect: &yes},
		{QuestionID: "q2", IsCorrect: &yes},
		{QuestionID: "q3", IsCorrect: &yes},    // 别人的错题
		{QuestionID: "", IsCorrect: &yes},      // 缺题目ID
		{QuestionID: "q1", IsCorrect: nil},     // 缺答题结果
		{QuestionID: "missing", IsCorrect: &yes},
	})

	assert.Len(t, results, 2)
	assert.Len(t, skipped, 4)
	for _, s := range skipped {
		assert.NotEmpty(t, s.Reason)
	}
}

func TestListRecordsFilterAndPaginate(t *testing.T) {
	svc, store, finder := newMasteryFixture()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("q%d", i)
		finder.questions[id] = wrongQuestion(id, 1)
		store.records[store.key(1, id)] = &model.MasteryRecord{
			UserID:       1,
			QuestionID:   id,
			MasteryLevel: i * 20, // 0, 20, 40, 60, 80
		}
	}

	records, total, err := svc.ListRecords(1, 40, 80, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, records, 3)

	// 负数表示不限
	_, total, err = svc.ListRecords(1, -1, -1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	// 越界页返回空列表
	records, total, err = svc.ListRecords(1, -1, -1, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, records)
}

func TestMasteryStats(t *testing.T) {
	svc, store, _ := newMasteryFixture()
	levels := []int{10, 30, 50, 70, 90}
	for i, level := range levels {
		id := fmt.Sprintf("q%d", i)
		store.records[store.key(1, id)] = &model.MasteryRecord{
			UserID:       1,
			QuestionID:   id,
			MasteryLevel: level,
			AttemptCount: 4,
			CorrectCount: 2,
		}
	}

	stats, distribution, err := svc.Stats(1)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.TotalRecords)
	assert.Equal(t, 1, stats.MasteredRecords)
	assert.Equal(t, 2, stats.InProgressRecords)
	assert.Equal(t, 2, stats.WeakRecords)
	assert.Equal(t, 50, stats.AverageMastery)
	assert.InDelta(t, 0.5, stats.OverallCorrectRate, 0.001)

	assert.Equal(t, 1, distribution["0-20"])
	assert.Equal(t, 1, distribution["21-40"])
	assert.Equal(t, 1, distribution["41-60"])
	assert.Equal(t, 1, distribution["61-80"])
	assert.Equal(t, 1, distribution["81-100"])
}

func TestGetRecordNotFound(t *testing.T) {
	svc, _, _ := newMasteryFixture()

	_, err := svc.GetRecord(1, "missing")
	assert.ErrorIs(t, err, util.ErrMasteryRecordNotFound)
}
