package controller

import (
	"wrongbook_backend/internal/service"
	"wrongbook_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalysisController struct {
	Service *service.AnalysisService
}

func NewAnalysisController(svc *service.AnalysisService) *AnalysisController {
	return &AnalysisController{Service: svc}
}

// @Summary 按分类统计错题
// @Tags 分析
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/analysis/category-stats [get]
func (c *AnalysisController) CategoryStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.Service.CategoryStats(ctx.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"categoryStats": stats})
}

// @Summary 按考点统计错题
// @Tags 分析
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/analysis/exam-points [get]
func (c *AnalysisController) ExamPointStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.Service.ExamPointStats(ctx.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"examPointStats": stats})
}

// @Summary 薄弱知识点分析
// @Description 从掌握度最低的错题中统计出最薄弱的知识点
// @Tags 分析
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/analysis/weakness [get]
func (c *AnalysisController) Weakness(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.Weakness(ctx.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 考点重要程度分析
// @Tags 分析
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/analysis/exam-importance [get]
func (c *AnalysisController) ExamImportance(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.ExamImportance(ctx.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"subjects": result})
}
