package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"
	"wrongbook_backend/internal/model"
	"wrongbook_backend/internal/repository"
	"wrongbook_backend/internal/util"
)

type UploadWrongQuestionRequest struct {
	QuestionContent string              `form:"questionContent" binding:"required"`
	StandardAnswer  string              `form:"standardAnswer" binding:"required"`
	UserAnswer      string              `form:"userAnswer"`
	ErrorReason     string              `form:"errorReason"`
	Category        string              `form:"category"`
	Difficulty      int                 `form:"difficulty"`
	KnowledgePoints model.StringArray   `form:"knowledgePoints"`
	ExamPoints      model.ExamPointList `form:"-"`
}

type UpdateWrongQuestionRequest struct {
	QuestionContent string              `json:"questionContent"`
	StandardAnswer  string              `json:"standardAnswer"`
	UserAnswer      string              `json:"userAnswer"`
	ErrorReason     string              `json:"errorReason"`
	Category        string              `json:"category"`
	Difficulty      int                 `json:"difficulty"`
	KnowledgePoints model.StringArray   `json:"knowledgePoints"`
	ExamPoints      model.ExamPointList `json:"examPoints"`
}

type BatchUploadItem struct {
	QuestionContent string              `json:"questionContent"`
	StandardAnswer  string              `json:"standardAnswer"`
	UserAnswer      string              `json:"userAnswer"`
	ErrorReason     string              `json:"errorReason"`
	Category        string              `json:"category"`
	Difficulty      int                 `json:"difficulty"`
	KnowledgePoints model.StringArray   `json:"knowledgePoints"`
	ExamPoints      model.ExamPointList `json:"examPoints"`
}

type BatchUploadRequest struct {
	Questions []BatchUploadItem `json:"questions" binding:"required,min=1"`
}

type WrongQuestionService struct {
	Repo    *repository.WrongQuestionRepository
	Storage *StorageService
}

func NewWrongQuestionService(repo *repository.WrongQuestionRepository, storage *StorageService) *WrongQuestionService {
	return &WrongQuestionService{
		Repo:    repo,
		Storage: storage,
	}
}

// Upload 创建错题，图片可选
func (s *WrongQuestionService) Upload(ctx context.Context, userID uint, req UploadWrongQuestionRequest, image *multipart.FileHeader) (*model.WrongQuestion, error) {
	difficulty := req.Difficulty
	if difficulty < 1 || difficulty > 5 {
		difficulty = 3
	}

	question := &model.WrongQuestion{
		UserID:           userID,
		QuestionContent:  req.QuestionContent,
		StandardAnswer:   req.StandardAnswer,
		UserAnswer:       req.UserAnswer,
		ErrorReason:      req.ErrorReason,
		Category:         req.Category,
		Difficulty:       difficulty,
		KnowledgePoints:  req.KnowledgePoints,
		ExamPoints:       req.ExamPoints,
		UploadDate:       time.Now(),
		SimilarQuestions: model.StringArray{},
	}

	if image != nil {
		url, err := s.saveImage(ctx, image)
		if err != nil {
			return nil, err
		}
		question.QuestionImage = url
	}

	if err := s.Repo.Create(question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *WrongQuestionService) saveImage(ctx context.Context, image *multipart.FileHeader) (string, error) {
	src, err := image.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	filename := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(image.Filename))
	return s.Storage.Upload(ctx, filename, src, image.Size, image.Header.Get("Content-Type"))
}

// List 分页查询错题，可按分类和难度筛选
func (s *WrongQuestionService) List(userID uint, category string, difficulty, page, limit int) ([]model.WrongQuestion, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.Repo.ListByUserFiltered(userID, category, difficulty, page, limit)
}

// Get 查询错题详情（校验归属）
func (s *WrongQuestionService) Get(id string, userID uint) (*model.WrongQuestion, error) {
	question, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, util.ErrQuestionNotFound
	}
	if question.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return question, nil
}

// Update 更新错题内容，空字段不覆盖
func (s *WrongQuestionService) Update(ctx context.Context, id string, userID uint, req UpdateWrongQuestionRequest, image *multipart.FileHeader) (*model.WrongQuestion, error) {
	question, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}

	if req.QuestionContent != "" {
		question.QuestionContent = req.QuestionContent
	}
	if req.StandardAnswer != "" {
		question.StandardAnswer = req.StandardAnswer
	}
	if req.UserAnswer != "" {
		question.UserAnswer = req.UserAnswer
	}
	if req.ErrorReason != "" {
		question.ErrorReason = req.ErrorReason
	}
	if req.Category != "" {
		question.Category = req.Category
	}
	if req.Difficulty >= 1 && req.Difficulty <= 5 {
		question.Difficulty = req.Difficulty
	}
	if req.KnowledgePoints != nil {
		question.KnowledgePoints = req.KnowledgePoints
	}
	if req.ExamPoints != nil {
		question.ExamPoints = req.ExamPoints
	}

	if image != nil {
		url, err := s.saveImage(ctx, image)
		if err != nil {
			return nil, err
		}
		question.QuestionImage = url
	}

	if err := s.Repo.Update(question); err != nil {
		return nil, err
	}
	return question, nil
}

// Delete 删除错题并级联删除掌握度记录。复习计划里的引用
// 不在这里清理，消费方会静默跳过悬空ID
func (s *WrongQuestionService) Delete(id string, userID uint) error {
	question, err := s.Get(id, userID)
	if err != nil {
		return err
	}
	return s.Repo.DeleteWithMasteryRecord(question)
}

// BatchUpload 批量创建错题，单项失败跳过不中断
func (s *WrongQuestionService) BatchUpload(userID uint, items []BatchUploadItem) []model.WrongQuestion {
	created := make([]model.WrongQuestion, 0, len(items))
	for _, item := range items {
		if item.QuestionContent == "" || item.StandardAnswer == "" {
			continue
		}

		difficulty := item.Difficulty
		if difficulty < 1 || difficulty > 5 {
			difficulty = 3
		}

		question := model.WrongQuestion{
			UserID:           userID,
			QuestionContent:  item.QuestionContent,
			StandardAnswer:   item.StandardAnswer,
			UserAnswer:       item.UserAnswer,
			ErrorReason:      item.ErrorReason,
			Category:         item.Category,
			Difficulty:       difficulty,
			KnowledgePoints:  item.KnowledgePoints,
			ExamPoints:       item.ExamPoints,
			UploadDate:       time.Now(),
			SimilarQuestions: model.StringArray{},
		}
		if err := s.Repo.Create(&question); err != nil {
			continue
		}
		created = append(created, question)
	}
	return created
}
