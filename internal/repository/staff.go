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

// StaffRepository 人员仓储
// 三类日期集合以JSON数组存入JSONB列，读写都经过 model.DateSet 的序列化
type StaffRepository struct {
	db DB
}

// NewStaffRepository 创建人员仓储
func NewStaffRepository(db DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create 创建人员
func (r *StaffRepository) Create(ctx context.Context, st *model.Staff) error {
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	if err := st.Validate(); err != nil {
		return err
	}

	unavail, leave, required, err := marshalDateSets(st)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO staff (
			id, name, seniority, unavailability, leave_days, required_days,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`
	_, err = r.db.ExecContext(ctx, query,
		st.ID, st.Name, st.Seniority, unavail, leave, required, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("创建人员失败: %w", err)
	}
	return nil
}

// GetByID 根据ID获取人员
func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	query := `
		SELECT id, name, seniority, unavailability, leave_days, required_days
		FROM staff
		WHERE id = $1
	`
	st, err := scanStaff(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return st, err
}

// Update 更新人员
func (r *StaffRepository) Update(ctx context.Context, st *model.Staff) error {
	if err := st.Validate(); err != nil {
		return err
	}

	unavail, leave, required, err := marshalDateSets(st)
	if err != nil {
		return err
	}

	query := `
		UPDATE staff SET
			name = $2, seniority = $3, unavailability = $4,
			leave_days = $5, required_days = $6, updated_at = $7
		WHERE id = $1
	`
	_, err = r.db.ExecContext(ctx, query,
		st.ID, st.Name, st.Seniority, unavail, leave, required, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("更新人员失败: %w", err)
	}
	return nil
}

// Delete 删除人员
func (r *StaffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM staff WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("删除人员失败: %w", err)
	}
	return nil
}

// List 按资历升序列出全部人员
func (r *StaffRepository) List(ctx context.Context) ([]*model.Staff, error) {
	query := `
		SELECT id, name, seniority, unavailability, leave_days, required_days
		FROM staff
		ORDER BY seniority, name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询人员列表失败: %w", err)
	}
	defer rows.Close()

	var staffList []*model.Staff
	for rows.Next() {
		st, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staffList = append(staffList, st)
	}
	return staffList, rows.Err()
}

// marshalDateSets 序列化人员的三类日期集合
func marshalDateSets(st *model.Staff) (unavail, leave, required []byte, err error) {
	if unavail, err = json.Marshal(st.Unavailability); err != nil {
		return nil, nil, nil, fmt.Errorf("序列化意愿日期失败: %w", err)
	}
	if leave, err = json.Marshal(st.LeaveDays); err != nil {
		return nil, nil, nil, fmt.Errorf("序列化休假日期失败: %w", err)
	}
	if required, err = json.Marshal(st.RequiredDays); err != nil {
		return nil, nil, nil, fmt.Errorf("序列化指定值班日失败: %w", err)
	}
	return unavail, leave, required, nil
}

// scanStaff 扫描单行人员
func scanStaff(s Scanner) (*model.Staff, error) {
	st := &model.Staff{}
	var unavail, leave, required []byte

	err := s.Scan(&st.ID, &st.Name, &st.Seniority, &unavail, &leave, &required)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("扫描人员记录失败: %w", err)
	}

	if err := json.Unmarshal(unavail, &st.Unavailability); err != nil {
		return nil, fmt.Errorf("解析意愿日期失败: %w", err)
	}
	if err := json.Unmarshal(leave, &st.LeaveDays); err != nil {
		return nil, fmt.Errorf("解析休假日期失败: %w", err)
	}
	if err := json.Unmarshal(required, &st.RequiredDays); err != nil {
		return nil, fmt.Errorf("解析指定值班日失败: %w", err)
	}
	return st, nil
}
