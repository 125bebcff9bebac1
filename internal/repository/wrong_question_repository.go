package repository

import (
	"errors"
	"wrongbook_backend/internal/model"

	"gorm.io/gorm"
)

type WrongQuestionRepository struct {
	DB *gorm.DB
}

func NewWrongQuestionRepository(db *gorm.DB) *WrongQuestionRepository {
	return &WrongQuestionRepository{DB: db}
}

func (r *WrongQuestionRepository) Create(q *model.WrongQuestion) error {
	return r.DB.Create(q).Error
}

// FindByID 未找到时返回 (nil, nil)
func (r *WrongQuestionRepository) FindByID(id string) (*model.WrongQuestion, error) {
	var q model.WrongQuestion
	err := r.DB.First(&q, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *WrongQuestionRepository) ListByUser(userID uint) ([]model.WrongQuestion, error) {
	var questions []model.WrongQuestion
	err := r.DB.Where("user_id = ?", userID).
		Order("upload_date desc").Find(&questions).Error
	return questions, err
}

// ListByUserByMastery 按掌握度升序，复习排期的输入顺序
func (r *WrongQuestionRepository) ListByUserByMastery(userID uint) ([]model.WrongQuestion, error) {
	var questions []model.WrongQuestion
	err := r.DB.Where("user_id = ?", userID).
		Order("mastery_level asc, upload_date asc").Find(&questions).Error
	return questions, err
}

func (r *WrongQuestionRepository) ListByUserAndIDs(userID uint, ids []string) ([]model.WrongQuestion, error) {
	var questions []model.WrongQuestion
	if len(ids) == 0 {
		return questions, nil
	}
	err := r.DB.Where("user_id = ? AND id IN ?", userID, ids).Find(&questions).Error
	return questions, err
}

func (r *WrongQuestionRepository) ListByUserFiltered(userID uint, category string, difficulty, page, limit int) ([]model.WrongQuestion, int64, error) {
	query := r.DB.Model(&model.WrongQuestion{}).Where("user_id = ?", userID)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if difficulty > 0 {
		query = query.Where("difficulty = ?", difficulty)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []model.WrongQuestion
	err := query.Order("upload_date desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&questions).Error
	return questions, total, err
}

func (r *WrongQuestionRepository) Update(q *model.WrongQuestion) error {
	return r.DB.Save(q).Error
}

// DeleteWithMasteryRecord 删除错题并级联删除对应掌握度记录
func (r *WrongQuestionRepository) DeleteWithMasteryRecord(q *model.WrongQuestion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND question_id = ?", q.UserID, q.ID).
			Delete(&model.MasteryRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(q).Error
	})
}
