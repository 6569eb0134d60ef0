// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// ScheduleRecord 值班表存档
// 同一月份可以有多个版本，version 递增，最新版本即当前生效的值班表
type ScheduleRecord struct {
	ID          uuid.UUID       `json:"id"`
	Month       string          `json:"month"` // YYYY-MM
	Version     int             `json:"version"`
	Status      string          `json:"status"` // draft/published/archived
	Schedule    *model.Schedule `json:"schedule"`
	Constraints json.RawMessage `json:"constraints,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ScheduleRepository 值班表仓储
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository 创建值班表仓储
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create 存档一个新版本，版本号取当月最大版本加一
func (r *ScheduleRepository) Create(ctx context.Context, rec *ScheduleRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Status == "" {
		rec.Status = "draft"
	}
	rec.CreatedAt = time.Now()

	scheduleJSON, err := json.Marshal(rec.Schedule)
	if err != nil {
		return fmt.Errorf("序列化值班表失败: %w", err)
	}

	query := `
		INSERT INTO schedules (
			id, month, version, status, schedule, constraints, generated_at, created_at
		) VALUES (
			$1, $2,
			COALESCE((SELECT MAX(version) FROM schedules WHERE month = $2), 0) + 1,
			$3, $4, $5, $6, $7
		)
		RETURNING version
	`
	err = r.db.QueryRowContext(ctx, query,
		rec.ID, rec.Month, rec.Status, scheduleJSON, []byte(rec.Constraints),
		rec.GeneratedAt, rec.CreatedAt,
	).Scan(&rec.Version)
	if err != nil {
		return fmt.Errorf("存档值班表失败: %w", err)
	}
	return nil
}

// GetByID 根据ID获取存档
func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*ScheduleRecord, error) {
	query := `
		SELECT id, month, version, status, schedule, constraints, generated_at, created_at
		FROM schedules
		WHERE id = $1
	`
	rec, err := scanScheduleRecord(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// GetLatest 获取某月最新版本
func (r *ScheduleRepository) GetLatest(ctx context.Context, month string) (*ScheduleRecord, error) {
	query := `
		SELECT id, month, version, status, schedule, constraints, generated_at, created_at
		FROM schedules
		WHERE month = $1
		ORDER BY version DESC
		LIMIT 1
	`
	rec, err := scanScheduleRecord(r.db.QueryRowContext(ctx, query, month))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// List 列出存档
func (r *ScheduleRepository) List(ctx context.Context, filter ListFilter) ([]*ScheduleRecord, int, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.Month != "" {
		conditions = append(conditions, fmt.Sprintf("month = $%d", argNum))
		args = append(args, filter.Month)
		argNum++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, filter.Status)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM schedules %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计值班表数量失败: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, month, version, status, schedule, constraints, generated_at, created_at
		FROM schedules %s
		ORDER BY month DESC, version DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询值班表列表失败: %w", err)
	}
	defer rows.Close()

	var records []*ScheduleRecord
	for rows.Next() {
		rec, err := scanScheduleRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

// UpdateStatus 更新存档状态
func (r *ScheduleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE schedules SET status = $2 WHERE id = $1", id, status)
	if err != nil {
		return fmt.Errorf("更新值班表状态失败: %w", err)
	}
	return nil
}

// Delete 删除存档
func (r *ScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("删除值班表失败: %w", err)
	}
	return nil
}

// PruneHistory 只保留某月最近 keep 个版本
func (r *ScheduleRepository) PruneHistory(ctx context.Context, month string, keep int) error {
	if keep <= 0 {
		return nil
	}
	query := `
		DELETE FROM schedules
		WHERE month = $1 AND version <= (
			SELECT COALESCE(MAX(version), 0) FROM schedules WHERE month = $1
		) - $2
	`
	_, err := r.db.ExecContext(ctx, query, month, keep)
	if err != nil {
		return fmt.Errorf("清理历史版本失败: %w", err)
	}
	return nil
}

// scanScheduleRecord 扫描单行存档
func scanScheduleRecord(s Scanner) (*ScheduleRecord, error) {
	rec := &ScheduleRecord{}
	var scheduleJSON, constraintsJSON []byte

	err := s.Scan(
		&rec.ID, &rec.Month, &rec.Version, &rec.Status,
		&scheduleJSON, &constraintsJSON, &rec.GeneratedAt, &rec.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("扫描值班表存档失败: %w", err)
	}

	if len(scheduleJSON) > 0 {
		if err := json.Unmarshal(scheduleJSON, &rec.Schedule); err != nil {
			return nil, fmt.Errorf("解析值班表失败: %w", err)
		}
	}
	rec.Constraints = json.RawMessage(constraintsJSON)
	return rec, nil
}
