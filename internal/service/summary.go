package service

import (
	"context"
	"fmt"
	"math"

	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
)

// SummaryService 每日汇总聚合器
// 对一个日期的全部排期实例做纯归约，结果可写入缓存表；
// 缓存是派生数据，scheduled_tasks 才是事实来源。
type SummaryService struct {
	scheduleRepo ScheduleRepository
	summaryRepo  SummaryRepository
	points       PointsPolicy
}

// NewSummaryService 创建汇总服务
func NewSummaryService(scheduleRepo ScheduleRepository, summaryRepo SummaryRepository, points PointsPolicy) *SummaryService {
	return &SummaryService{
		scheduleRepo: scheduleRepo,
		summaryRepo:  summaryRepo,
		points:       points,
	}
}

// Aggregate 归约一个日期的实例集合（纯函数）
// abandoned 不算完成也不算 pending，但计入总数且惩罚照算。
// completion_rate = completed/total，total=0 时为 0 而不是 NaN。
func Aggregate(date string, rows []repository.TaskRow, points PointsPolicy) schema.DailySummary {
	s := schema.DailySummary{Date: date}

	loadCompleted := map[string]int{}

	for _, row := range rows {
		s.TotalTasks++
		s.EstimatedTime += row.TimeEstimate
		s.PenaltyPoints += row.PenaltyPoints

		switch row.Status {
		case schema.StatusCompleted:
			s.CompletedTasks++
			s.PointsEarned += points.TaskPoints(row.Complexity, row.CognitiveLoad, row.TimeEstimate, row.SubtaskCount > 0)
			if row.ActualTime != nil {
				s.ActualTime += *row.ActualTime
			}
			loadCompleted[row.CognitiveLoad]++
		case schema.StatusPending, schema.StatusInProgress:
			s.PendingTasks++
		}
	}

	s.NetPoints = s.PointsEarned - s.PenaltyPoints
	if s.TotalTasks > 0 {
		s.CompletionRate = round1(float64(s.CompletedTasks) / float64(s.TotalTasks) * 100)
	}
	s.DeepWorkCompleted = loadCompleted[schema.LoadDeepWork]
	s.ActiveWorkCompleted = loadCompleted[schema.LoadActiveWork]
	s.AdminCompleted = loadCompleted[schema.LoadAdmin]
	s.LearningCompleted = loadCompleted[schema.LoadLearning]

	return s
}

// GetDaily 计算某日汇总并刷新缓存
func (s *SummaryService) GetDaily(ctx context.Context, date string) (*schema.DailySummary, error) {
	rows, err := s.scheduleRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("读取日程失败: %w", err)
	}

	summary := Aggregate(date, rows, s.points)

	if err := s.summaryRepo.Upsert(ctx, &summary); err != nil {
		// 缓存写失败不影响返回结果
		return &summary, nil
	}
	return &summary, nil
}

// GetWindow 取窗口内逐日汇总（最旧在前），直接从实例重算，不读缓存
func (s *SummaryService) GetWindow(ctx context.Context, endDate string, days int) ([]schema.DailySummary, error) {
	startDate, err := repository.WindowStart(endDate, days)
	if err != nil {
		return nil, err
	}

	rows, err := s.scheduleRepo.GetByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("读取日程区间失败: %w", err)
	}

	byDate := map[string][]repository.TaskRow{}
	var order []string
	for _, row := range rows {
		if _, seen := byDate[row.ScheduledDate]; !seen {
			order = append(order, row.ScheduledDate)
		}
		byDate[row.ScheduledDate] = append(byDate[row.ScheduledDate], row)
	}

	summaries := make([]schema.DailySummary, 0, len(order))
	for _, date := range order {
		summaries = append(summaries, Aggregate(date, byDate[date], s.points))
	}
	return summaries, nil
}

// Recent 读缓存表里最近 N 天的汇总（最旧在前）
// 只反映已经刷新过缓存的日期，适合展示层快速读取。
func (s *SummaryService) Recent(ctx context.Context, days int) ([]schema.DailySummary, error) {
	if days < 1 {
		days = 1
	}
	return s.summaryRepo.GetRecent(ctx, days)
}

// round1 保留一位小数
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
