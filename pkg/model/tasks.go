// Package model 定义值班排班引擎的核心数据模型
package model

import (
	"fmt"

	"github.com/google/uuid"
)

// TaskColumn 任务列配置：值班表之外的具名辅助任务（如手术、门诊）
type TaskColumn struct {
	Name string `json:"name"`

	// 准入规则：显式人员名单与资历白名单二选一，名单优先
	EligibleStaffIDs    []uuid.UUID `json:"eligible_staff_ids,omitempty"`
	EligibleSeniorities []int       `json:"eligible_seniorities,omitempty"`

	// 目标星期（0=周日 ... 6=周六），为空表示全部
	TargetWeekdays []int `json:"target_weekdays,omitempty"`

	// 每日席位数
	MaxPerDay int `json:"max_per_day"`

	// 期望的资历组合（按顺序优先匹配，可选）
	PreferredSeniorityMix []int `json:"preferred_seniority_mix,omitempty"`
}

// Validate 校验任务列配置
func (c *TaskColumn) Validate() error {
	if c.MaxPerDay < 1 {
		return fmt.Errorf("每日席位数必须大于0: %d", c.MaxPerDay)
	}
	for _, wd := range c.TargetWeekdays {
		if wd < 0 || wd > 6 {
			return fmt.Errorf("目标星期超出范围 [0, 6]: %d", wd)
		}
	}
	for _, s := range c.EligibleSeniorities {
		if s < MinSeniority || s > MaxSeniority {
			return fmt.Errorf("准入资历超出范围 [%d, %d]: %d", MinSeniority, MaxSeniority, s)
		}
	}
	return nil
}

// MatchesWeekday 检查星期几（0=周日）是否在目标星期内
func (c *TaskColumn) MatchesWeekday(weekday int) bool {
	if len(c.TargetWeekdays) == 0 {
		return true
	}
	for _, wd := range c.TargetWeekdays {
		if wd == weekday {
			return true
		}
	}
	return false
}

// TaskAssignments 任务分配表：日期 -> 任务列下标 -> 当日该列的人员（有序）
type TaskAssignments map[string]map[int][]uuid.UUID

// Clone 深拷贝（分配器在副本上合并，不改动调用方数据）
func (t TaskAssignments) Clone() TaskAssignments {
	out := make(TaskAssignments, len(t))
	for date, columns := range t {
		cols := make(map[int][]uuid.UUID, len(columns))
		for idx, ids := range columns {
			cols[idx] = append([]uuid.UUID(nil), ids...)
		}
		out[date] = cols
	}
	return out
}

// Get 返回某日某列的分配
func (t TaskAssignments) Get(date string, column int) []uuid.UUID {
	if columns, ok := t[date]; ok {
		return columns[column]
	}
	return nil
}

// Set 写入某日某列的分配
func (t TaskAssignments) Set(date string, column int, ids []uuid.UUID) {
	columns, ok := t[date]
	if !ok {
		columns = make(map[int][]uuid.UUID)
		t[date] = columns
	}
	columns[column] = ids
}

// Delete 清除某日某列的分配
func (t TaskAssignments) Delete(date string, column int) {
	if columns, ok := t[date]; ok {
		delete(columns, column)
	}
}

// AssignedElsewhere 检查人员当日是否已被分到其他任务列
func (t TaskAssignments) AssignedElsewhere(date string, column int, id uuid.UUID) bool {
	columns, ok := t[date]
	if !ok {
		return false
	}
	for idx, ids := range columns {
		if idx == column {
			continue
		}
		for _, assigned := range ids {
			if assigned == id {
				return true
			}
		}
	}
	return false
}
