package controller

import (
	"encoding/json"
	"fmt"
	"strconv"
	"wrongbook_backend/internal/service"
	"wrongbook_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type WrongQuestionController struct {
	Service *service.WrongQuestionService
}

func NewWrongQuestionController(svc *service.WrongQuestionService) *WrongQuestionController {
	return &WrongQuestionController{Service: svc}
}

// @Summary 上传错题
// @Description 创建错题记录，支持附带题目图片
// @Tags 错题
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param questionContent formData string true "题目内容"
// @Param standardAnswer formData string true "标准答案"
// @Param image formData file false "题目图片"
// @Success 201 {object} util.Response
// @Router /api/wrong-questions/upload [post]
func (c *WrongQuestionController) Upload(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UploadWrongQuestionRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, "题目内容和标准答案为必填项")
		return
	}

	// 考点以JSON字符串随表单提交
	if raw := ctx.PostForm("examPoints"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.ExamPoints); err != nil {
			util.BadRequest(ctx, "考点格式不正确")
			return
		}
	}

	image, _ := ctx.FormFile("image")

	question, err := c.Service.Upload(ctx.Request.Context(), claims.UserID, req, image)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.CreatedWithMessage(ctx, "错题上传成功", gin.H{"wrongQuestion": question})
}

// @Summary 批量上传错题
// @Tags 错题
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.BatchUploadRequest true "错题列表"
// @Success 201 {object} util.Response
// @Router /api/wrong-questions/batch-upload [post]
func (c *WrongQuestionController) BatchUpload(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.BatchUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "请提供有效的错题列表")
		return
	}

	created := c.Service.BatchUpload(claims.UserID, req.Questions)

	util.CreatedWithMessage(ctx, fmt.Sprintf("成功上传 %d 道错题", len(created)), gin.H{
		"wrongQuestions": created,
	})
}

// @Summary 获取错题列表
// @Tags 错题
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Param category query string false "分类"
// @Param difficulty query int false "难度 1-5"
// @Success 200 {object} util.Response
// @Router /api/wrong-questions/list [get]
func (c *WrongQuestionController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	category := ctx.Query("category")
	difficulty, _ := strconv.Atoi(ctx.Query("difficulty"))

	questions, total, err := c.Service.List(claims.UserID, category, difficulty, page, limit)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	util.Success(ctx, gin.H{
		"wrongQuestions": questions,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
			"pages": pages,
		},
	})
}

// @Summary 获取错题详情
// @Tags 错题
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "错题ID"
// @Success 200 {object} util.Response
// @Router /api/wrong-questions/{id} [get]
func (c *WrongQuestionController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	question, err := c.Service.Get(ctx.Param("id"), claims.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"wrongQuestion": question})
}

// @Summary 更新错题
// @Tags 错题
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "错题ID"
// @Param body body service.UpdateWrongQuestionRequest true "更新内容"
// @Success 200 {object} util.Response
// @Router /api/wrong-questions/{id} [put]
func (c *WrongQuestionController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdateWrongQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.Service.Update(ctx.Request.Context(), ctx.Param("id"), claims.UserID, req, nil)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.SuccessWithMessage(ctx, "错题更新成功", gin.H{"wrongQuestion": question})
}

// @Summary 删除错题
// @Description 删除错题并同时清除其掌握度记录
// @Tags 错题
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "错题ID"
// @Success 200 {object} util.Response
// @Router /api/wrong-questions/{id} [delete]
func (c *WrongQuestionController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Service.Delete(ctx.Param("id"), claims.UserID); err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.SuccessWithMessage(ctx, "错题删除成功", nil)
}
