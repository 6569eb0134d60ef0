// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// TaskRecord 任务分配存档
// 一个月份对应一份任务分配，重复保存时整体覆盖
type TaskRecord struct {
	ID          uuid.UUID             `json:"id"`
	Month       string                `json:"month"` // YYYY-MM
	Columns     []model.TaskColumn    `json:"columns"`
	Assignments model.TaskAssignments `json:"assignments"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TaskRepository 任务分配仓储
type TaskRepository struct {
	db DB
}

// NewTaskRepository 创建任务分配仓储
func NewTaskRepository(db DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Save 保存某月的任务分配，存在则覆盖
func (r *TaskRepository) Save(ctx context.Context, rec *TaskRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := time.Now()
	rec.UpdatedAt = now

	columnsJSON, err := json.Marshal(rec.Columns)
	if err != nil {
		return fmt.Errorf("序列化任务列失败: %w", err)
	}
	assignmentsJSON, err := json.Marshal(rec.Assignments)
	if err != nil {
		return fmt.Errorf("序列化任务分配失败: %w", err)
	}

	query := `
		INSERT INTO task_assignments (id, month, columns, assignments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (month) DO UPDATE SET
			columns = EXCLUDED.columns,
			assignments = EXCLUDED.assignments,
			updated_at = EXCLUDED.updated_at
	`
	_, err = r.db.ExecContext(ctx, query, rec.ID, rec.Month, columnsJSON, assignmentsJSON, now)
	if err != nil {
		return fmt.Errorf("保存任务分配失败: %w", err)
	}
	return nil
}

// GetByMonth 获取某月的任务分配
func (r *TaskRepository) GetByMonth(ctx context.Context, month string) (*TaskRecord, error) {
	query := `
		SELECT id, month, columns, assignments, created_at, updated_at
		FROM task_assignments
		WHERE month = $1
	`
	rec := &TaskRecord{}
	var columnsJSON, assignmentsJSON []byte

	err := r.db.QueryRowContext(ctx, query, month).Scan(
		&rec.ID, &rec.Month, &columnsJSON, &assignmentsJSON, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询任务分配失败: %w", err)
	}

	if err := json.Unmarshal(columnsJSON, &rec.Columns); err != nil {
		return nil, fmt.Errorf("解析任务列失败: %w", err)
	}
	if err := json.Unmarshal(assignmentsJSON, &rec.Assignments); err != nil {
		return nil, fmt.Errorf("解析任务分配失败: %w", err)
	}
	return rec, nil
}

// Delete 删除某月的任务分配
func (r *TaskRepository) Delete(ctx context.Context, month string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM task_assignments WHERE month = $1", month)
	if err != nil {
		return fmt.Errorf("删除任务分配失败: %w", err)
	}
	return nil
}
