// Package model 定义值班排班引擎的核心数据模型
package model

import (
	"fmt"
	"time"
)

// Weekdays 星期名称（周一起始，与每周需求配置顺序一致）
var Weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// 缺省值（与前端默认配置保持一致）
const (
	DefaultDailyNeed           = 2
	DefaultMaxShiftsPerMonth   = 20
	DefaultMinRestHours        = 11
	DefaultBeneficialThreshold = 4
)

// LeaveReductionThreshold 月内休假天数达到该阈值后，公平目标按可用天数比例缩减；
// 低于阈值的短假不影响目标
const LeaveReductionThreshold = 7

// SlotSystem 席位制配置：限定每日第1/第2席位可由哪些资历等级担任
type SlotSystem struct {
	Enabled          bool  `json:"enabled"`
	Slot1Seniorities []int `json:"slot1_seniorities"`
	Slot2Seniorities []int `json:"slot2_seniorities"`
}

// AllowedFor 返回指定席位的资历白名单；超出前两个席位的额外席位不限资历（返回nil）
func (s *SlotSystem) AllowedFor(slot int) []int {
	switch slot {
	case 0:
		return s.Slot1Seniorities
	case 1:
		return s.Slot2Seniorities
	default:
		return nil
	}
}

// Constraints 排班约束（单次生成的不可变输入）
type Constraints struct {
	// 每个星期几需要的值班人数
	DailyNeeds map[string]int `json:"daily_needs"`

	// 班次时长（小时，仅作信息记录）
	ShiftDuration int `json:"shift_duration"`

	// 每人每月最少/最多班次（最少为信息性字段，最多为硬上限）
	MinShiftsPerMonth int `json:"min_shifts_per_month"`
	MaxShiftsPerMonth int `json:"max_shifts_per_month"`

	// 两次值班之间的最小休息小时数，决定休息日间隔
	MinRestHours int `json:"min_rest_hours"`

	// 目标月份（YYYY-MM）
	SelectedMonth string `json:"selected_month"`

	// 优待日：指定星期几对达到资历门槛的人员加分
	BeneficialDays          []string `json:"beneficial_days,omitempty"`
	BeneficialDaysThreshold int      `json:"beneficial_days_threshold"`

	// 席位制（可选）
	SlotSystem *SlotSystem `json:"slot_system,omitempty"`

	// 任务列配置（任务分配器使用，与值班表相互独立）
	TaskColumns []TaskColumn `json:"task_columns,omitempty"`
}

// DefaultConstraints 返回默认约束
func DefaultConstraints() *Constraints {
	needs := make(map[string]int, len(Weekdays))
	for _, day := range Weekdays {
		needs[day] = DefaultDailyNeed
	}
	return &Constraints{
		DailyNeeds:              needs,
		ShiftDuration:           8,
		MaxShiftsPerMonth:       DefaultMaxShiftsPerMonth,
		MinRestHours:            DefaultMinRestHours,
		SelectedMonth:           time.Now().Format("2006-01"),
		BeneficialDaysThreshold: DefaultBeneficialThreshold,
		SlotSystem: &SlotSystem{
			Enabled:          false,
			Slot1Seniorities: []int{6, 5, 4},
			Slot2Seniorities: []int{3, 2, 1},
		},
	}
}

// Normalize 补齐缺失字段（缺失的星期需求按默认值处理）
func (c *Constraints) Normalize() {
	if c.DailyNeeds == nil {
		c.DailyNeeds = make(map[string]int, len(Weekdays))
	}
	for _, day := range Weekdays {
		if _, ok := c.DailyNeeds[day]; !ok {
			c.DailyNeeds[day] = DefaultDailyNeed
		}
	}
	if c.MaxShiftsPerMonth <= 0 {
		c.MaxShiftsPerMonth = DefaultMaxShiftsPerMonth
	}
}

// Validate 校验约束输入
func (c *Constraints) Validate() error {
	if _, err := c.Month(); err != nil {
		return fmt.Errorf("目标月份格式无效: %s", c.SelectedMonth)
	}
	for day, need := range c.DailyNeeds {
		if need < 0 {
			return fmt.Errorf("%s 的值班需求不能为负数: %d", day, need)
		}
	}
	if c.MinRestHours < 0 {
		return fmt.Errorf("最小休息小时数不能为负数: %d", c.MinRestHours)
	}
	for i := range c.TaskColumns {
		if err := c.TaskColumns[i].Validate(); err != nil {
			return fmt.Errorf("任务列 %d: %w", i, err)
		}
	}
	return nil
}

// Month 解析目标月份
func (c *Constraints) Month() (time.Time, error) {
	return time.Parse("2006-01", c.SelectedMonth)
}

// NeedFor 返回指定星期几的值班需求
func (c *Constraints) NeedFor(weekday string) int {
	if need, ok := c.DailyNeeds[weekday]; ok {
		return need
	}
	return DefaultDailyNeed
}

// RequiredDayGap 同一人两次值班之间必须间隔的天数
// 例：最小休息24小时 -> 间隔2天（不允许连续两天值班）
func (c *Constraints) RequiredDayGap() int {
	gap := 1 + (c.MinRestHours+23)/24
	if gap < 1 {
		gap = 1
	}
	return gap
}

// IsBeneficialDay 检查星期几是否为优待日
func (c *Constraints) IsBeneficialDay(weekday string) bool {
	for _, d := range c.BeneficialDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// IsWeekendDate 检查ISO日期是否为周末
func IsWeekendDate(date string) bool {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}
