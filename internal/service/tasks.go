package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gautriv/productivity/internal/repository"
	"github.com/gautriv/productivity/internal/schema"
	"gorm.io/gorm"
)

// TaskService 任务生命周期服务
// 创建、排期、完成是分析数据的三个入口；
// 层级限定两层，子任务不可再挂子任务。
type TaskService struct {
	db *gorm.DB
}

// NewTaskService 创建任务服务
func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

// CreateTaskInput 创建任务参数
type CreateTaskInput struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Complexity    int    `json:"complexity"`
	CognitiveLoad string `json:"cognitive_load"`
	TimeEstimate  int    `json:"time_estimate"`
	ParentID      *int64 `json:"parent_id"`
}

// Create 创建任务
func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*schema.Task, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("任务标题不能为空")
	}
	if !schema.IsValidLoad(in.CognitiveLoad) {
		return nil, fmt.Errorf("无效认知负荷: %q", in.CognitiveLoad)
	}
	if in.Complexity < 1 {
		in.Complexity = 1
	}
	if in.Complexity > 5 {
		in.Complexity = 5
	}
	if in.TimeEstimate <= 0 {
		in.TimeEstimate = 30
	}

	repo := repository.NewTaskRepository(s.db)

	if in.ParentID != nil {
		parent, err := repo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("父任务不存在: %d", *in.ParentID)
		}
		if parent.ParentID != nil {
			return nil, fmt.Errorf("子任务不能再有子任务")
		}
	}

	task := &schema.Task{
		Title:         in.Title,
		Description:   in.Description,
		Complexity:    in.Complexity,
		CognitiveLoad: in.CognitiveLoad,
		TimeEstimate:  in.TimeEstimate,
		ParentID:      in.ParentID,
	}
	if err := repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List 未归档的顶层任务
func (s *TaskService) List(ctx context.Context) ([]schema.Task, error) {
	return repository.NewTaskRepository(s.db).ListActive(ctx)
}

// Subtasks 某任务的子任务
func (s *TaskService) Subtasks(ctx context.Context, parentID int64) ([]schema.Task, error) {
	return repository.NewTaskRepository(s.db).ListSubtasks(ctx, parentID)
}

// Archive 归档任务（删除语义，历史保留）
// 还挂着未归档子任务的父任务不能归档，先处理子任务。
func (s *TaskService) Archive(ctx context.Context, id int64) error {
	repo := repository.NewTaskRepository(s.db)
	task, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("任务不存在: %d", id)
	}
	children, err := repo.CountSubtasks(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("任务 %d 还有 %d 个子任务，先归档子任务", id, children)
	}
	return repo.Archive(ctx, id)
}

// Schedule 把任务排到某个日期
// 同一任务同一天只允许一个实例。
func (s *TaskService) Schedule(ctx context.Context, taskID int64, date string) (*schema.ScheduledTask, error) {
	if _, err := repository.ParseDate(date); err != nil {
		return nil, err
	}

	taskRepo := repository.NewTaskRepository(s.db)
	scheduleRepo := repository.NewScheduleRepository(s.db)

	task, err := taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("任务不存在: %d", taskID)
	}

	exists, err := scheduleRepo.ExistsForTaskDate(ctx, taskID, date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("任务 %d 在 %s 已有排期", taskID, date)
	}

	st := &schema.ScheduledTask{
		TaskID:        taskID,
		ScheduledDate: date,
		Status:        schema.StatusPending,
	}
	if err := scheduleRepo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Complete 完成一个排期实例，记录实际耗时与完成时间
func (s *TaskService) Complete(ctx context.Context, scheduledID int64, actualTime *int, at time.Time) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st schema.ScheduledTask
		if err := tx.First(&st, scheduledID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("排期不存在: %d", scheduledID)
			}
			return err
		}
		if st.Status == schema.StatusCompleted {
			return nil // 重复完成不报错也不重复记账
		}
		return repository.NewScheduleRepository(tx).
			UpdateStatus(ctx, scheduledID, schema.StatusCompleted, actualTime, &at)
	})
	if err != nil {
		return fmt.Errorf("完成任务失败: %w", err)
	}
	return nil
}

// Start 把排期实例标记为进行中
func (s *TaskService) Start(ctx context.Context, scheduledID int64) error {
	return repository.NewScheduleRepository(s.db).
		UpdateStatus(ctx, scheduledID, schema.StatusInProgress, nil, nil)
}
