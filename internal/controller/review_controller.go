package controller

import (
	"fmt"
	"wrongbook_backend/internal/model"
	"wrongbook_backend/internal/service"
	"wrongbook_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GenerateBatchPlanRequest struct {
	Days int `json:"days"`
}

type UpdatePlanStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ReviewController struct {
	Service *service.ReviewService
}

func NewReviewController(svc *service.ReviewService) *ReviewController {
	return &ReviewController{Service: svc}
}

// @Summary 生成复习计划
// @Description 按掌握度分档选题生成一次复习计划。所有错题均已掌握时返回空计划
// @Tags 复习
// @Produce json
// @Security ApiKeyAuth
// @Success 201 {object} util.Response
// @Router /api/review/generate [post]
func (c *ReviewController) Generate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	plan, err := c.Service.Generate(claims.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if plan == nil {
		util.SuccessWithMessage(ctx, "所有错题掌握度已达标，无需复习", gin.H{"reviewPlan": nil})
		return
	}

	util.CreatedWithMessage(ctx, "复习计划生成成功", gin.H{"reviewPlan": plan})
}

// @Summary 批量生成复习计划
// @Description 把全部错题均摊到接下来若干天，每天一个计划
// @Tags 复习
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body GenerateBatchPlanRequest true "排期天数，默认7天"
// @Success 201 {object} util.Response
// @Router /api/review/batch-generate [post]
func (c *ReviewController) GenerateBatch(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	// days 可省略，请求体允许为空
	var req GenerateBatchPlanRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	plans, err := c.Service.GenerateBatch(claims.UserID, req.Days)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.CreatedWithMessage(ctx, fmt.Sprintf("成功生成 %d 个复习计划", len(plans)), gin.H{
		"reviewPlans": plans,
	})
}

// @Summary 获取复习计划列表
// @Tags 复习
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "状态筛选 pending/in_progress/completed"
// @Success 200 {object} util.Response
// @Router /api/review/plans [get]
func (c *ReviewController) ListPlans(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	status := model.ReviewPlanStatus(ctx.Query("status"))
	if status != "" && !model.ValidReviewPlanStatus(status) {
		util.BadRequest(ctx, "无效的计划状态")
		return
	}

	plans, err := c.Service.ListPlans(claims.UserID, status)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"reviewPlans": plans})
}

// @Summary 获取今日复习内容
// @Description 返回复习日期为今天且未完成的计划及去重后的错题
// @Tags 复习
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/review/today [get]
func (c *ReviewController) Today(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	today, err := c.Service.Today(claims.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, today)
}

// @Summary 更新复习计划状态
// @Description 状态只能单向推进。完成计划时按掌握情况调整间隔并可能生成后继计划
// @Tags 复习
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "计划ID"
// @Param body body UpdatePlanStatusRequest true "目标状态"
// @Success 200 {object} util.Response
// @Router /api/review/plan/{id}/status [put]
func (c *ReviewController) UpdateStatus(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdatePlanStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "请提供目标状态")
		return
	}

	plan, successor, err := c.Service.UpdateStatus(ctx.Param("id"), claims.UserID, model.ReviewPlanStatus(req.Status))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.SuccessWithMessage(ctx, "计划状态更新成功", gin.H{
		"reviewPlan": plan,
		"nextPlan":   successor,
	})
}

// @Summary 删除复习计划
// @Tags 复习
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "计划ID"
// @Success 200 {object} util.Response
// @Router /api/review/plan/{id} [delete]
func (c *ReviewController) DeletePlan(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Service.DeletePlan(ctx.Param("id"), claims.UserID); err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.SuccessWithMessage(ctx, "复习计划删除成功", nil)
}

// @Summary 获取复习统计
// @Tags 复习
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/review/stats [get]
func (c *ReviewController) Stats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, recent, err := c.Service.Stats(claims.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"stats":       stats,
		"recentPlans": recent,
	})
}
