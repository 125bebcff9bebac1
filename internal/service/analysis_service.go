package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"wrongbook_backend/internal/model"
	"wrongbook_backend/internal/repository"

	"github.com/go-redis/redis/v8"
)

// 分析结果只读且计算量随错题数增长，缓存5分钟
const analysisCacheTTL = 5 * time.Minute

// examImportanceTable 中考考点重要程度（1-5），内置静态数据
var examImportanceTable = map[string]map[string]int{
	"数学": {
		"代数运算": 5, "几何证明": 4, "函数应用": 5, "概率统计": 3,
		"三角函数": 4, "方程求解": 5, "不等式": 3, "立体几何": 4,
	},
	"语文": {
		"古诗文阅读": 5, "现代文阅读": 5, "作文": 5, "基础知识": 3, "语言运用": 4,
	},
	"英语": {
		"听力": 4, "阅读理解": 5, "完形填空": 4, "语法": 3, "作文": 4, "词汇": 4,
	},
	"物理": {
		"力学": 5, "电学": 5, "热学": 3, "光学": 3, "声学": 2, "电磁学": 4,
	},
	"化学": {
		"化学方程式": 5, "元素周期表": 4, "酸碱盐": 5, "化学实验": 4, "有机化学": 3,
	},
}

type CategoryStat struct {
	Count             int     `json:"count"`
	AverageDifficulty float64 `json:"averageDifficulty"`
	AverageMastery    float64 `json:"averageMastery"`
}

type ExamPointStat struct {
	Point             string   `json:"point"`
	Count             int      `json:"count"`
	AverageImportance float64  `json:"averageImportance"`
	AverageMastery    float64  `json:"averageMastery"`
	Questions         []string `json:"questions"`
}

type KnowledgePointStat struct {
	Point          string   `json:"point"`
	Count          int      `json:"count"`
	AverageMastery float64  `json:"averageMastery"`
	Questions      []string `json:"questions"`
}

type WeaknessAnalysis struct {
	WeakPoints    []KnowledgePointStat  `json:"weakPoints"`
	WeakQuestions []model.WrongQuestion `json:"weakQuestions"`
}

type SubjectImportance struct {
	TotalQuestions           int                      `json:"totalQuestions"`
	HighImportanceQuestions  int                      `json:"highImportanceQuestions"`
	MediumImportanceQuestion int                      `json:"mediumImportanceQuestions"`
	LowImportanceQuestions   int                      `json:"lowImportanceQuestions"`
	Points                   map[string]*PointSummary `json:"points"`
}

type PointSummary struct {
	Count      int `json:"count"`
	Importance int `json:"importance"`
}

// AnalysisService 错题维度的统计分析，结果经Redis短缓存
type AnalysisService struct {
	WrongQuestion *repository.WrongQuestionRepository
	Redis         *redis.Client
}

func NewAnalysisService(wrongQuestion *repository.WrongQuestionRepository, rdb *redis.Client) *AnalysisService {
	return &AnalysisService{
		WrongQuestion: wrongQuestion,
		Redis:         rdb,
	}
}

// CategoryStats 按分类统计错题数、平均难度、平均掌握度
func (s *AnalysisService) CategoryStats(ctx context.Context, userID uint) (map[string]*CategoryStat, error) {
	cacheKey := fmt.Sprintf("analysis:category:%d", userID)
	var cached map[string]*CategoryStat
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	questions, err := s.WrongQuestion.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]*CategoryStat)
	totals := make(map[string]int)
	for _, q := range questions {
		category := q.Category
		if category == "" {
			category = "未分类"
		}
		st, ok := stats[category]
		if !ok {
			st = &CategoryStat{}
			stats[category] = st
		}
		st.Count++
		totals[category] += q.Difficulty
		st.AverageMastery += float64(q.MasteryLevel)
	}
	for category, st := range stats {
		st.AverageDifficulty = float64(totals[category]) / float64(st.Count)
		st.AverageMastery = st.AverageMastery / float64(st.Count)
	}

	s.cacheSet(ctx, cacheKey, stats)
	return stats, nil
}

// ExamPointStats 按考点聚合，重要程度降序
func (s *AnalysisService) ExamPointStats(ctx context.Context, userID uint) ([]ExamPointStat, error) {
	cacheKey := fmt.Sprintf("analysis:exampoints:%d", userID)
	var cached []ExamPointStat
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	questions, err := s.WrongQuestion.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	byPoint := make(map[string]*ExamPointStat)
	importanceTotals := make(map[string]int)
	masteryTotals := make(map[string]int)
	for _, q := range questions {
		for _, ep := range q.ExamPoints {
			st, ok := byPoint[ep.Point]
			if !ok {
				st = &ExamPointStat{Point: ep.Point}
				byPoint[ep.Point] = st
			}
			st.Count++
			importanceTotals[ep.Point] += ep.Importance
			masteryTotals[ep.Point] += q.MasteryLevel
			st.Questions = append(st.Questions, q.ID)
		}
	}

	stats := make([]ExamPointStat, 0, len(byPoint))
	for point, st := range byPoint {
		st.AverageImportance = float64(importanceTotals[point]) / float64(st.Count)
		st.AverageMastery = float64(masteryTotals[point]) / float64(st.Count)
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].AverageImportance > stats[j].AverageImportance
	})

	s.cacheSet(ctx, cacheKey, stats)
	return stats, nil
}

// Weakness 取掌握度最低的20道错题，统计出最薄弱的10个知识点
func (s *AnalysisService) Weakness(ctx context.Context, userID uint) (*WeaknessAnalysis, error) {
	cacheKey := fmt.Sprintf("analysis:weakness:%d", userID)
	var cached WeaknessAnalysis
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	questions, err := s.WrongQuestion.ListByUserByMastery(userID)
	if err != nil {
		return nil, err
	}
	if len(questions) > 20 {
		questions = questions[:20]
	}

	byPoint := make(map[string]*KnowledgePointStat)
	masteryTotals := make(map[string]int)
	for _, q := range questions {
		for _, point := range q.KnowledgePoints {
			st, ok := byPoint[point]
			if !ok {
				st = &KnowledgePointStat{Point: point}
				byPoint[point] = st
			}
			st.Count++
			masteryTotals[point] += q.MasteryLevel
			st.Questions = append(st.Questions, q.ID)
		}
	}

	weakPoints := make([]KnowledgePointStat, 0, len(byPoint))
	for point, st := range byPoint {
		st.AverageMastery = float64(masteryTotals[point]) / float64(st.Count)
		weakPoints = append(weakPoints, *st)
	}
	sort.Slice(weakPoints, func(i, j int) bool {
		return weakPoints[i].AverageMastery < weakPoints[j].AverageMastery
	})
	if len(weakPoints) > 10 {
		weakPoints = weakPoints[:10]
	}

	result := &WeaknessAnalysis{
		WeakPoints:    weakPoints,
		WeakQuestions: questions,
	}
	s.cacheSet(ctx, cacheKey, result)
	return result, nil
}

// ExamImportance 按内置重要程度表评估用户错题的考点分布
func (s *AnalysisService) ExamImportance(ctx context.Context, userID uint) (map[string]*SubjectImportance, error) {
	cacheKey := fmt.Sprintf("analysis:importance:%d", userID)
	var cached map[string]*SubjectImportance
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	questions, err := s.WrongQuestion.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*SubjectImportance)
	for _, q := range questions {
		for _, ep := range q.ExamPoints {
			subject := "其他"
			for name := range examImportanceTable {
				if strings.Contains(ep.Point, name) {
					subject = name
					break
				}
			}

			si, ok := result[subject]
			if !ok {
				si = &SubjectImportance{Points: make(map[string]*PointSummary)}
				result[subject] = si
			}
			si.TotalQuestions++

			importance := 3
			for key, level := range examImportanceTable[subject] {
				if strings.Contains(ep.Point, key) {
					importance = level
					break
				}
			}

			switch {
			case importance >= 4:
				si.HighImportanceQuestions++
			case importance == 3:
				si.MediumImportanceQuestion++
			default:
				si.LowImportanceQuestions++
			}

			summary, ok := si.Points[ep.Point]
			if !ok {
				summary = &PointSummary{Importance: importance}
				si.Points[ep.Point] = summary
			}
			summary.Count++
		}
	}

	s.cacheSet(ctx, cacheKey, result)
	return result, nil
}

func (s *AnalysisService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.Redis == nil {
		return false
	}
	val, err := s.Redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

func (s *AnalysisService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.Redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	// 缓存失败不影响主流程
	_ = s.Redis.Set(ctx, key, data, analysisCacheTTL).Err()
}
