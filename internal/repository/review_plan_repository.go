package repository

import (
	"errors"
	"wrongbook_backend/internal/model"

	"gorm.io/gorm"
)

type ReviewPlanRepository struct {
	DB *gorm.DB
}

func NewReviewPlanRepository(db *gorm.DB) *ReviewPlanRepository {
	return &ReviewPlanRepository{DB: db}
}

func (r *ReviewPlanRepository) Create(plan *model.ReviewPlan) error {
	return r.DB.Create(plan).Error
}

// FindByID 未找到时返回 (nil, nil)
func (r *ReviewPlanRepository) FindByID(id string) (*model.ReviewPlan, error) {
	var plan model.ReviewPlan
	err := r.DB.First(&plan, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *ReviewPlanRepository) ListByUser(userID uint) ([]model.ReviewPlan, error) {
	var plans []model.ReviewPlan
	err := r.DB.Where("user_id = ?", userID).
		Order("next_review_date asc").Find(&plans).Error
	return plans, err
}

func (r *ReviewPlanRepository) ListByUserAndStatus(userID uint, status model.ReviewPlanStatus) ([]model.ReviewPlan, error) {
	var plans []model.ReviewPlan
	err := r.DB.Where("user_id = ? AND status = ?", userID, status).
		Order("next_review_date asc").Find(&plans).Error
	return plans, err
}

func (r *ReviewPlanRepository) UpdateStatus(id string, status model.ReviewPlanStatus) error {
	return r.DB.Model(&model.ReviewPlan{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *ReviewPlanRepository) Delete(id string) error {
	return r.DB.Delete(&model.ReviewPlan{}, "id = ?", id).Error
}
