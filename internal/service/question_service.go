package service

import (
	"fmt"
	"math"
	"strings"
	"wrongbook_backend/internal/model"
	"wrongbook_backend/internal/repository"
	"wrongbook_backend/internal/util"
)

type GenerateSimilarRequest struct {
	WrongQuestionID string `json:"wrongQuestionId" binding:"required"`
	Count           int    `json:"count"`
}

type BatchGenerateSimilarRequest struct {
	WrongQuestionIDs []string `json:"wrongQuestionIds" binding:"required,min=1"`
	Count            int      `json:"count"`
}

type VerifyAnswerRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	UserAnswer string `json:"userAnswer" binding:"required"`
}

type VerifyAnswerResult struct {
	IsCorrect     bool   `json:"isCorrect"`
	Score         int    `json:"score"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

type BatchSimilarResult struct {
	WrongQuestionID  string           `json:"wrongQuestionId"`
	SimilarQuestions []model.Question `json:"similarQuestions"`
}

// QuestionService 生成和管理错题的变式练习题
type QuestionService struct {
	Repo          *repository.QuestionRepository
	WrongQuestion *repository.WrongQuestionRepository
}

func NewQuestionService(repo *repository.QuestionRepository, wrongQuestion *repository.WrongQuestionRepository) *QuestionService {
	return &QuestionService{
		Repo:          repo,
		WrongQuestion: wrongQuestion,
	}
}

// GenerateSimilar 基于错题生成变式题并回写关联。
// 目前是模板生成，后续可接AI出题
func (s *QuestionService) GenerateSimilar(userID uint, wrongQuestionID string, count int) ([]model.Question, error) {
	if count <= 0 {
		count = 3
	}

	wrongQuestion, err := s.WrongQuestion.FindByID(wrongQuestionID)
	if err != nil {
		return nil, err
	}
	if wrongQuestion == nil {
		return nil, util.ErrQuestionNotFound
	}
	if wrongQuestion.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	questions := make([]model.Question, 0, count)
	ids := make(model.StringArray, 0, count)
	base := strings.TrimRight(wrongQuestion.QuestionContent, "？?")

	examPoints := make(model.StringArray, 0, len(wrongQuestion.ExamPoints))
	for _, ep := range wrongQuestion.ExamPoints {
		examPoints = append(examPoints, ep.Point)
	}

	for i := 0; i < count; i++ {
		question := model.Question{
			Content:         fmt.Sprintf("类似题目 %d: %s（变式%d）", i+1, base, i+1),
			Answer:          fmt.Sprintf("类似题目 %d 的答案：%s", i+1, wrongQuestion.StandardAnswer),
			Explanation:     fmt.Sprintf("本题是基于原错题的变式练习，考察相同的知识点：%s", strings.Join(wrongQuestion.KnowledgePoints, "、")),
			KnowledgePoints: wrongQuestion.KnowledgePoints,
			ExamPoints:      examPoints,
			Difficulty:      wrongQuestion.Difficulty,
			Type:            model.QuestionSimilar,
		}
		if err := s.Repo.Create(&question); err != nil {
			return nil, err
		}
		questions = append(questions, question)
		ids = append(ids, question.ID)
	}

	wrongQuestion.SimilarQuestions = ids
	if err := s.WrongQuestion.Update(wrongQuestion); err != nil {
		return nil, err
	}

	return questions, nil
}

// BatchGenerateSimilar 为多道错题生成变式题，单项失败跳过
func (s *QuestionService) BatchGenerateSimilar(userID uint, wrongQuestionIDs []string, count int) []BatchSimilarResult {
	if count <= 0 {
		count = 2
	}

	results := make([]BatchSimilarResult, 0, len(wrongQuestionIDs))
	for _, id := range wrongQuestionIDs {
		questions, err := s.GenerateSimilar(userID, id, count)
		if err != nil {
			continue
		}
		results = append(results, BatchSimilarResult{
			WrongQuestionID:  id,
			SimilarQuestions: questions,
		})
	}
	return results
}

// GetSimilar 查询错题已关联的变式题
func (s *QuestionService) GetSimilar(userID uint, wrongQuestionID string) ([]model.Question, error) {
	wrongQuestion, err := s.WrongQuestion.FindByID(wrongQuestionID)
	if err != nil {
		return nil, err
	}
	if wrongQuestion == nil {
		return nil, util.ErrQuestionNotFound
	}
	if wrongQuestion.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	return s.Repo.FindByIDs(wrongQuestion.SimilarQuestions)
}

// Get 查询题目详情
func (s *QuestionService) Get(id string) (*model.Question, error) {
	question, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, util.ErrSimilarQuestionNotFound
	}
	return question, nil
}

// Delete 删除题目
func (s *QuestionService) Delete(id string) error {
	question, err := s.Repo.FindByID(id)
	if err != nil {
		return err
	}
	if question == nil {
		return util.ErrSimilarQuestionNotFound
	}
	return s.Repo.Delete(id)
}

// VerifyAnswer 校验用户答案。完全一致得满分，否则按编辑距离相似度给分
func (s *QuestionService) VerifyAnswer(questionID, userAnswer string) (*VerifyAnswerResult, error) {
	question, err := s.Get(questionID)
	if err != nil {
		return nil, err
	}

	isCorrect := strings.TrimSpace(userAnswer) == strings.TrimSpace(question.Answer)

	score := 100
	if !isCorrect {
		similarity := util.Similarity(strings.ToLower(userAnswer), strings.ToLower(question.Answer))
		score = int(math.Round(similarity * 100))
	}

	return &VerifyAnswerResult{
		IsCorrect:     isCorrect,
		Score:         score,
		CorrectAnswer: question.Answer,
		Explanation:   question.Explanation,
	}, nil
}
