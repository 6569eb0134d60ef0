// Package validator 对值班表做事后校验，找出违反约束的分配
//
// 生成器本身不会产出违规的值班表，校验器主要用于手工调整
// 或导入的外部值班表
package validator

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictDoubleBooking ConflictType = "double_booking" // 同日重复分配
	ConflictRestGap       ConflictType = "rest_gap"       // 休息间隔不足
	ConflictMonthlyCap    ConflictType = "monthly_cap"    // 超过月上限
	ConflictLeave         ConflictType = "leave"          // 休假日被排班
	ConflictUnavailable   ConflictType = "unavailable"    // 不可用日被排班
	ConflictSlotSeniority ConflictType = "slot_seniority" // 席位资历不符
	ConflictShortfall     ConflictType = "shortfall"      // 需求未满足
	ConflictUnknownStaff  ConflictType = "unknown_staff"  // 名单外人员
)

// Conflict 单条冲突记录
type Conflict struct {
	Type     ConflictType `json:"type"`
	Severity string       `json:"severity"` // error/warning
	StaffID  uuid.UUID    `json:"staff_id,omitempty"`
	Date     string       `json:"date,omitempty"`
	Message  string       `json:"message"`
}

// ConflictDetector 值班表冲突检测器
type ConflictDetector struct {
	cons *model.Constraints
}

// NewConflictDetector 创建冲突检测器
func NewConflictDetector(cons *model.Constraints) *ConflictDetector {
	cons.Normalize()
	return &ConflictDetector{cons: cons}
}

// DetectAll 检测值班表的全部冲突
func (d *ConflictDetector) DetectAll(sched *model.Schedule, staffList []*model.Staff) []Conflict {
	var conflicts []Conflict
	if sched == nil {
		return conflicts
	}

	byID := make(map[uuid.UUID]*model.Staff, len(staffList))
	for _, st := range staffList {
		byID[st.ID] = st
	}

	conflicts = append(conflicts, d.detectDayConflicts(sched, byID)...)
	for _, st := range staffList {
		conflicts = append(conflicts, d.detectStaffConflicts(sched, st)...)
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].Date < conflicts[j].Date
	})
	return conflicts
}

// detectDayConflicts 逐日检查：重复分配、席位资历、需求缺口、名单外人员
func (d *ConflictDetector) detectDayConflicts(sched *model.Schedule, byID map[uuid.UUID]*model.Staff) []Conflict {
	var conflicts []Conflict

	slotted := d.cons.SlotSystem != nil && d.cons.SlotSystem.Enabled

	for date, ids := range sched.Days {
		seen := make(map[uuid.UUID]bool, len(ids))
		for slot, id := range ids {
			st, known := byID[id]
			if !known {
				conflicts = append(conflicts, Conflict{
					Type:     ConflictUnknownStaff,
					Severity: "error",
					StaffID:  id,
					Date:     date,
					Message:  fmt.Sprintf("%s 出现名单外人员 %s", date, id),
				})
				continue
			}
			if seen[id] {
				conflicts = append(conflicts, Conflict{
					Type:     ConflictDoubleBooking,
					Severity: "error",
					StaffID:  id,
					Date:     date,
					Message:  fmt.Sprintf("%s 在 %s 被重复分配", st.Name, date),
				})
			}
			seen[id] = true

			if slotted {
				if allowed := d.cons.SlotSystem.AllowedFor(slot); allowed != nil && !containsInt(allowed, st.Seniority) {
					conflicts = append(conflicts, Conflict{
						Type:     ConflictSlotSeniority,
						Severity: "error",
						StaffID:  id,
						Date:     date,
						Message:  fmt.Sprintf("%s（资历%d）不符合 %s 第%d席位的资历要求", st.Name, st.Seniority, date, slot+1),
					})
				}
			}
		}

		if t, err := time.Parse("2006-01-02", date); err == nil {
			need := d.cons.NeedFor(t.Weekday().String())
			if len(ids) < need {
				conflicts = append(conflicts, Conflict{
					Type:     ConflictShortfall,
					Severity: "warning",
					Date:     date,
					Message:  fmt.Sprintf("%s 需求 %d 人，实际 %d 人", date, need, len(ids)),
				})
			}
		}
	}

	return conflicts
}

// detectStaffConflicts 逐人检查：休息间隔、月上限、休假与不可用日
func (d *ConflictDetector) detectStaffConflicts(sched *model.Schedule, st *model.Staff) []Conflict {
	var conflicts []Conflict

	dates := sched.DatesFor(st.ID)
	gap := d.cons.RequiredDayGap()

	for i, date := range dates {
		if st.LeaveDays.Contains(date) {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictLeave,
				Severity: "error",
				StaffID:  st.ID,
				Date:     date,
				Message:  fmt.Sprintf("%s 在休假日 %s 被排班", st.Name, date),
			})
		}
		if st.Unavailability.Contains(date) {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictUnavailable,
				Severity: "error",
				StaffID:  st.ID,
				Date:     date,
				Message:  fmt.Sprintf("%s 在不可用日 %s 被排班", st.Name, date),
			})
		}

		if i > 0 {
			if diff := daysBetween(dates[i-1], date); diff > 0 && diff < gap {
				conflicts = append(conflicts, Conflict{
					Type:     ConflictRestGap,
					Severity: "error",
					StaffID:  st.ID,
					Date:     date,
					Message:  fmt.Sprintf("%s 在 %s 与 %s 之间休息不足（要求间隔%d天）", st.Name, dates[i-1], date, gap),
				})
			}
		}
	}

	if len(dates) > d.cons.MaxShiftsPerMonth {
		conflicts = append(conflicts, Conflict{
			Type:     ConflictMonthlyCap,
			Severity: "error",
			StaffID:  st.ID,
			Message:  fmt.Sprintf("%s 共 %d 班，超过月上限 %d", st.Name, len(dates), d.cons.MaxShiftsPerMonth),
		})
	}

	return conflicts
}

// HasErrors 冲突列表中是否存在error级冲突
func HasErrors(conflicts []Conflict) bool {
	for _, c := range conflicts {
		if c.Severity == "error" {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// daysBetween 两个ISO日期相差的天数，解析失败返回-1
func daysBetween(from, to string) int {
	t1, err1 := time.Parse("2006-01-02", from)
	t2, err2 := time.Parse("2006-01-02", to)
	if err1 != nil || err2 != nil {
		return -1
	}
	return int(t2.Sub(t1).Hours() / 24)
}
