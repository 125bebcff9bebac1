package controller

import (
	"fmt"
	"wrongbook_backend/internal/service"
	"wrongbook_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	Service *service.QuestionService
}

func NewQuestionController(svc *service.QuestionService) *QuestionController {
	return &QuestionController{Service: svc}
}

// @Summary 生成类似题目
// @Description 基于错题生成变式练习题并关联到原错题
// @Tags 题目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.GenerateSimilarRequest true "错题ID和生成数量"
// @Success 201 {object} util.Response
// @Router /api/questions/generate-similar [post]
func (c *QuestionController) GenerateSimilar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.GenerateSimilarRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "请提供错题ID")
		return
	}

	questions, err := c.Service.GenerateSimilar(claims.UserID, req.WrongQuestionID, req.Count)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.CreatedWithMessage(ctx, fmt.Sprintf("成功生成 %d 道类似题目", len(questions)), gin.H{
		"similarQuestions": questions,
	})
}

// @Summary 批量生成类似题目
// @Tags 题目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.BatchGenerateSimilarRequest true "错题ID列表和单题生成数量"
// @Success 201 {object} util.Response
// @Router /api/questions/batch-generate-similar [post]
func (c *QuestionController) BatchGenerateSimilar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.BatchGenerateSimilarRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "请提供错题ID列表")
		return
	}

	results := c.Service.BatchGenerateSimilar(claims.UserID, req.WrongQuestionIDs, req.Count)

	util.CreatedWithMessage(ctx, fmt.Sprintf("成功为 %d 道错题生成类似题目", len(results)), gin.H{
		"results": results,
	})
}

// @Summary 获取错题的类似题目
// @Tags 题目
// @Produce json
// @Security ApiKeyAuth
// @Param wrongQuestionId path string true "错题ID"
// @Success 200 {object} util.Response
// @Router /api/questions/similar/{wrongQuestionId} [get]
func (c *QuestionController) GetSimilar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	questions, err := c.Service.GetSimilar(claims.UserID, ctx.Param("wrongQuestionId"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"similarQuestions": questions})
}

// @Summary 获取题目详情
// @Tags 题目
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [get]
func (c *QuestionController) Get(ctx *gin.Context) {
	question, err := c.Service.Get(ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"question": question})
}

// @Summary 删除题目
// @Tags 题目
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *QuestionController) Delete(ctx *gin.Context) {
	if err := c.Service.Delete(ctx.Param("id")); err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.SuccessWithMessage(ctx, "题目删除成功", nil)
}

// @Summary 验证答案
// @Description 完全一致得满分，否则按编辑距离相似度给分
// @Tags 题目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.VerifyAnswerRequest true "题目ID和用户答案"
// @Success 200 {object} util.Response
// @Router /api/questions/verify-answer [post]
func (c *QuestionController) VerifyAnswer(ctx *gin.Context) {
	var req service.VerifyAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "请提供题目ID和答案")
		return
	}

	result, err := c.Service.VerifyAnswer(req.QuestionID, req.UserAnswer)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
