package repository

import (
	"errors"
	"wrongbook_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MasteryRecordRepository struct {
	DB *gorm.DB
}

func NewMasteryRecordRepository(db *gorm.DB) *MasteryRecordRepository {
	return &MasteryRecordRepository{DB: db}
}

// FindByUserAndQuestion 未找到时返回 (nil, nil)，首次答题属正常情况
func (r *MasteryRecordRepository) FindByUserAndQuestion(userID uint, questionID string) (*model.MasteryRecord, error) {
	var record model.MasteryRecord
	err := r.DB.Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *MasteryRecordRepository) ListByUser(userID uint) ([]model.MasteryRecord, error) {
	var records []model.MasteryRecord
	err := r.DB.Where("user_id = ?", userID).
		Order("mastery_level asc").Find(&records).Error
	return records, err
}

func (r *MasteryRecordRepository) ListByUserAndQuestions(userID uint, questionIDs []string) ([]model.MasteryRecord, error) {
	var records []model.MasteryRecord
	if len(questionIDs) == 0 {
		return records, nil
	}
	err := r.DB.Where("user_id = ? AND question_id IN ?", userID, questionIDs).
		Find(&records).Error
	return records, err
}

// ApplyAttempt 在同一事务内读取并重算掌握度记录，再落错题上的镜像字段。
// 读取带行锁，同一(用户,错题)的并发答题在这里串行化，两边必须观察到
// 同一个 masteryLevel
func (r *MasteryRecordRepository) ApplyAttempt(userID uint, questionID string, apply func(record *model.MasteryRecord) (*model.WrongQuestion, error)) (*model.MasteryRecord, error) {
	var record model.MasteryRecord
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		// 先占位插入，保证并发首答时行已存在，随后的行锁能挡住对方
		placeholder := model.MasteryRecord{UserID: userID, QuestionID: questionID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&placeholder).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND question_id = ?", userID, questionID).
			First(&record).Error; err != nil {
			return err
		}

		question, err := apply(&record)
		if err != nil {
			return err
		}

		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		return tx.Model(&model.WrongQuestion{}).
			Where("id = ?", question.ID).
			Updates(map[string]interface{}{
				"mastery_level":    question.MasteryLevel,
				"review_count":     question.ReviewCount,
				"last_review_date": question.LastReviewDate,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}
