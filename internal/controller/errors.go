package controller

import (
	"errors"
	"net/http"
	"wrongbook_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondServiceError 把服务层的哨兵错误映射到HTTP状态码，
// 其余一律按存储错误处理（记录日志后返回500）
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrMasteryRecordNotFound),
		errors.Is(err, util.ErrPlanNotFound),
		errors.Is(err, util.ErrSimilarQuestionNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrNoWrongQuestions),
		errors.Is(err, util.ErrPlanAlreadyCompleted),
		errors.Is(err, util.ErrInvalidStatusTransition),
		errors.Is(err, util.ErrInvalidReviewPlanStatus),
		errors.Is(err, util.ErrEmailRegistered):
		util.Error(ctx, http.StatusBadRequest, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
