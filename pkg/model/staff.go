// Package model 定义值班排班引擎的核心数据模型
package model

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// 资历范围（1=最资浅，值班最多；10=最资深，值班最少）
const (
	MinSeniority = 1
	MaxSeniority = 10
)

// DateSet 日期集合（YYYY-MM-DD）
// 持久化时序列化为有序数组，便于前端和数据库以纯数据形式存取
type DateSet map[string]struct{}

// NewDateSet 创建日期集合
func NewDateSet(dates ...string) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// Contains 检查日期是否在集合内
func (s DateSet) Contains(date string) bool {
	_, ok := s[date]
	return ok
}

// Add 添加日期
func (s DateSet) Add(date string) {
	s[date] = struct{}{}
}

// Len 返回集合大小
func (s DateSet) Len() int {
	return len(s)
}

// Sorted 返回按字典序排序的日期列表（ISO日期字典序即时间序）
func (s DateSet) Sorted() []string {
	dates := make([]string, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// MarshalJSON 序列化为有序数组
func (s DateSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON 从数组反序列化
func (s *DateSet) UnmarshalJSON(data []byte) error {
	var dates []string
	if err := json.Unmarshal(data, &dates); err != nil {
		return err
	}
	*s = NewDateSet(dates...)
	return nil
}

// Staff 值班人员
type Staff struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Seniority int       `json:"seniority"` // 1-10

	// 意愿性不可值班日（不参与排班，但不降低公平目标）
	Unavailability DateSet `json:"unavailability,omitempty"`

	// 实际休假日（不参与排班，达到阈值后按比例降低公平目标）
	LeaveDays DateSet `json:"leave_days,omitempty"`

	// 指定必须值班日（第一轮全局锁定）
	RequiredDays DateSet `json:"required_days,omitempty"`
}

// Validate 校验人员输入
func (s *Staff) Validate() error {
	if s.ID == uuid.Nil {
		return fmt.Errorf("人员ID不能为空")
	}
	if s.Name == "" {
		return fmt.Errorf("人员姓名不能为空")
	}
	if s.Seniority < MinSeniority || s.Seniority > MaxSeniority {
		return fmt.Errorf("人员 %s 资历 %d 超出范围 [%d, %d]", s.Name, s.Seniority, MinSeniority, MaxSeniority)
	}
	return nil
}

// SeniorityWeight 资历权重：资浅权重高（值班多），资深权重低（值班少）
// 资历1 -> 权重10，资历10 -> 权重1
func SeniorityWeight(seniority int) int {
	return MaxSeniority + 1 - seniority
}

// SeniorityGroup 返回资历分组标签（用于统计展示）
func SeniorityGroup(seniority int) string {
	switch {
	case seniority <= 2:
		return "最多值班 (资历1-2)"
	case seniority <= 4:
		return "较多值班 (资历3-4)"
	case seniority <= 6:
		return "中等值班 (资历5-6)"
	case seniority <= 8:
		return "较少值班 (资历7-8)"
	default:
		return "最少值班 (资历9-10)"
	}
}
