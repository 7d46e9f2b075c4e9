package repository

import (
	"context"
	"fmt"

	"github.com/gautriv/productivity/internal/schema"
	"gorm.io/gorm"
)

// TaskRepository 任务主档仓储
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建仓储
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create 创建任务
func (r *TaskRepository) Create(ctx context.Context, task *schema.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("创建任务失败: %w", err)
	}
	return nil
}

// GetByID 按 ID 查询（含已归档）
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*schema.Task, error) {
	var task schema.Task
	err := r.db.WithContext(ctx).First(&task, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("查询任务失败: %w", err)
	}
	return &task, nil
}

// ListActive 列出未归档的顶层任务
func (r *TaskRepository) ListActive(ctx context.Context) ([]schema.Task, error) {
	var tasks []schema.Task
	err := r.db.WithContext(ctx).
		Where("archived = ? AND parent_id IS NULL", false).
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("查询任务列表失败: %w", err)
	}
	return tasks, nil
}

// ListSubtasks 列出某任务的子任务
func (r *TaskRepository) ListSubtasks(ctx context.Context, parentID int64) ([]schema.Task, error) {
	var tasks []schema.Task
	err := r.db.WithContext(ctx).
		Where("parent_id = ? AND archived = ?", parentID, false).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("查询子任务失败: %w", err)
	}
	return tasks, nil
}

// CountSubtasks 统计子任务数量（派生的 has_subtasks 来源）
func (r *TaskRepository) CountSubtasks(ctx context.Context, parentID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&schema.Task{}).
		Where("parent_id = ? AND archived = ?", parentID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计子任务失败: %w", err)
	}
	return count, nil
}

// Archive 归档任务（删除语义，保留分析历史）
func (r *TaskRepository) Archive(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).
		Model(&schema.Task{}).
		Where("id = ?", id).
		Update("archived", true).Error
	if err != nil {
		return fmt.Errorf("归档任务失败: %w", err)
	}
	return nil
}
