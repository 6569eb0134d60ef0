// Package model 定义值班排班引擎的核心数据模型
package model

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// LogLevel 排班日志级别
type LogLevel string

const (
	LogInfo    LogLevel = "info"
	LogSuccess LogLevel = "success"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
)

// LogEntry 排班决策日志（按时间顺序追加，业务规则冲突只记日志不中断）
type LogEntry struct {
	Level   LogLevel `json:"level"`
	Date    string   `json:"date,omitempty"`
	Message string   `json:"message"`
}

// StaffStats 单人统计
type StaffStats struct {
	ShiftCount     int            `json:"shift_count"`
	WeekendShifts  int            `json:"weekend_shifts"`
	WeekdayShifts  int            `json:"weekday_shifts"`
	TargetShifts   int            `json:"target_shifts"`
	LastShiftDate  string         `json:"last_shift_date,omitempty"`
	DaysAssigned   map[string]int `json:"days_assigned"` // 星期几 -> 次数
	SeniorityGroup string         `json:"seniority_group"`
}

// NewStaffStats 创建初始统计
func NewStaffStats(target int, seniority int) *StaffStats {
	days := make(map[string]int, len(Weekdays))
	for _, day := range Weekdays {
		days[day] = 0
	}
	return &StaffStats{
		TargetShifts:   target,
		DaysAssigned:   days,
		SeniorityGroup: SeniorityGroup(seniority),
	}
}

// TargetDetail 目标计算明细（用于统计展示与问题追溯）
type TargetDetail struct {
	Weight            int     `json:"weight"`             // 资历权重
	AdjustedWeight    float64 `json:"adjusted_weight"`    // 休假调整后权重
	RawTarget         float64 `json:"raw_target"`         // 取整前目标
	AvailabilityRatio float64 `json:"availability_ratio"` // 可用天数比例（未触发阈值时为1）
	TargetReduced     bool    `json:"target_reduced"`
	LeaveDays         int     `json:"leave_days"`
}

// Schedule 月度值班表
// 覆盖目标月份的每一天（无人值班的日期为长度0的列表）
// 生成完成后算法不再改动；界面侧的手工调整不在引擎一致性保证范围内
type Schedule struct {
	Month string                 `json:"month"` // YYYY-MM
	Days  map[string][]uuid.UUID `json:"days"`  // 日期 -> 当日人员（有序）

	// 附带的诊断数据（统计展示与历史存档读取，不回流进算法）
	StaffStats     map[uuid.UUID]*StaffStats   `json:"staff_stats"`
	Logs           []LogEntry                  `json:"logs"`
	TargetDetails  map[uuid.UUID]*TargetDetail `json:"target_details"`
	TotalDemand    int                         `json:"total_demand"`
	LeaveThreshold int                         `json:"leave_threshold"`
}

// NewSchedule 创建空值班表
func NewSchedule(month string) *Schedule {
	return &Schedule{
		Month:          month,
		Days:           make(map[string][]uuid.UUID),
		StaffStats:     make(map[uuid.UUID]*StaffStats),
		TargetDetails:  make(map[uuid.UUID]*TargetDetail),
		LeaveThreshold: LeaveReductionThreshold,
	}
}

// AssignedOn 检查人员是否已被安排在某日
func (s *Schedule) AssignedOn(date string, id uuid.UUID) bool {
	for _, assigned := range s.Days[date] {
		if assigned == id {
			return true
		}
	}
	return false
}

// Assign 将人员追加到某日值班列表
func (s *Schedule) Assign(date string, id uuid.UUID) {
	s.Days[date] = append(s.Days[date], id)
}

// DatesFor 返回人员的全部值班日期（升序）
func (s *Schedule) DatesFor(id uuid.UUID) []string {
	var dates []string
	for date, ids := range s.Days {
		for _, assigned := range ids {
			if assigned == id {
				dates = append(dates, date)
				break
			}
		}
	}
	sort.Strings(dates)
	return dates
}

// Log 追加日志
func (s *Schedule) Log(level LogLevel, date, message string) {
	s.Logs = append(s.Logs, LogEntry{Level: level, Date: date, Message: message})
}

// Logf 追加格式化日志
func (s *Schedule) Logf(level LogLevel, date, format string, args ...interface{}) {
	s.Log(level, date, fmt.Sprintf(format, args...))
}

// LogsByLevel 按级别过滤日志
func (s *Schedule) LogsByLevel(level LogLevel) []LogEntry {
	var out []LogEntry
	for _, entry := range s.Logs {
		if entry.Level == level {
			out = append(out, entry)
		}
	}
	return out
}
