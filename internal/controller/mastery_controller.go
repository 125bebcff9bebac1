package controller

import (
	"fmt"
	"strconv"
	"wrongbook_backend/internal/service"
	"wrongbook_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MasteryController struct {
	Service *service.MasteryService
}

func NewMasteryController(svc *service.MasteryService) *MasteryController {
	return &MasteryController{Service: svc}
}

// @Summary 更新掌握度
// @Description 记录一次答题结果并重算该错题的掌握度
// @Tags 掌握度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.MasteryUpdateRequest true "答题结果"
// @Success 200 {object} util.Response
// @Router /api/mastery/update [post]
func (c *MasteryController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.MasteryUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "题目ID和答题结果为必填项")
		return
	}

	record, question, interval, err := c.Service.RecordAttempt(claims.UserID, req.QuestionID, *req.IsCorrect)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.SuccessWithMessage(ctx, "掌握度更新成功", gin.H{
		"masteryRecord":  record,
		"wrongQuestion":  question,
		"reviewInterval": interval,
	})
}

// @Summary 批量更新掌握度
// @Tags 掌握度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.MasteryBatchRequest true "答题结果列表"
// @Success 200 {object} util.Response
// @Router /api/mastery/batch-update [post]
func (c *MasteryController) BatchUpdate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.MasteryBatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "请提供有效的更新列表")
		return
	}

	results, skipped := c.Service.BatchRecordAttempts(claims.UserID, req.Updates)

	util.SuccessWithMessage(ctx, fmt.Sprintf("成功更新 %d 条掌握度记录", len(results)), gin.H{
		"results": results,
		"skipped": skipped,
	})
}

// @Summary 获取单条掌握度记录
// @Tags 掌握度
// @Produce json
// @Security ApiKeyAuth
// @Param questionId path string true "错题ID"
// @Success 200 {object} util.Response
// @Router /api/mastery/record/{questionId} [get]
func (c *MasteryController) GetRecord(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	record, err := c.Service.GetRecord(claims.UserID, ctx.Param("questionId"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"masteryRecord": record})
}

// @Summary 获取掌握度记录列表
// @Tags 掌握度
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Param minLevel query int false "掌握度下限"
// @Param maxLevel query int false "掌握度上限"
// @Success 200 {object} util.Response
// @Router /api/mastery/records [get]
func (c *MasteryController) ListRecords(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	minLevel := queryIntDefault(ctx, "minLevel", -1)
	maxLevel := queryIntDefault(ctx, "maxLevel", -1)

	records, total, err := c.Service.ListRecords(claims.UserID, minLevel, maxLevel, page, limit)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	util.Success(ctx, gin.H{
		"masteryRecords": records,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
			"pages": pages,
		},
	})
}

// @Summary 获取掌握度统计
// @Tags 掌握度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/mastery/stats [get]
func (c *MasteryController) Stats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, distribution, err := c.Service.Stats(claims.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"stats":               stats,
		"masteryDistribution": distribution,
	})
}

func queryIntDefault(ctx *gin.Context, key string, def int) int {
	raw, ok := ctx.GetQuery(key)
	if !ok {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
