package util

import "errors"

var (
	ErrUserNotFound            = errors.New("用户不存在")
	ErrEmailRegistered         = errors.New("该邮箱已被注册")
	ErrPermissionDenied        = errors.New("permission denied")
	ErrQuestionNotFound        = errors.New("错题不存在")
	ErrMasteryRecordNotFound   = errors.New("掌握度记录不存在")
	ErrPlanNotFound            = errors.New("复习计划不存在")
	ErrNoWrongQuestions        = errors.New("没有错题可生成复习计划")
	ErrPlanAlreadyCompleted    = errors.New("复习计划已完成")
	ErrInvalidStatusTransition = errors.New("复习计划状态不可回退")
	ErrInvalidReviewPlanStatus = errors.New("请提供有效的状态")
	ErrSimilarQuestionNotFound = errors.New("题目不存在")
)
