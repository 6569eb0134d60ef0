// Package scheduler 实现按资历公平目标的月度值班生成算法
package scheduler

import (
	"fmt"

	"github.com/zhiban/zhiban/pkg/model"
)

// availableOn 可用性过滤：判断人员当日是否可被安排，并给出排除原因
//
// 对当前排班快照的纯判定，无副作用。各规则独立生效：
//  1. 当日在意愿排除名单内
//  2. 当日休假
//  3. 已达月班次上限
//  4. 休息间隔不足（双向检查——第一轮可能已锁定未来日期的值班，
//     后续分配不得与之冲突，反之亦然）
func (r *run) availableOn(st *model.Staff, day dayInfo) (bool, string) {
	if st.Unavailability.Contains(day.date) {
		return false, "当日意愿不可值班"
	}
	if st.LeaveDays.Contains(day.date) {
		return false, "当日休假"
	}
	if r.sched.StaffStats[st.ID].ShiftCount >= r.cons.MaxShiftsPerMonth {
		return false, fmt.Sprintf("已达月班次上限 %d", r.cons.MaxShiftsPerMonth)
	}
	if reason := r.restConflict(st, day); reason != "" {
		return false, reason
	}
	return true, ""
}

// restConflict 休息间隔检查：目标日前后 gap-1 天内存在同一人的值班即冲突
// 返回空字符串表示无冲突
func (r *run) restConflict(st *model.Staff, day dayInfo) string {
	for k := 1; k < r.gap; k++ {
		before := day.time.AddDate(0, 0, -k).Format("2006-01-02")
		if r.sched.AssignedOn(before, st.ID) {
			return fmt.Sprintf("与 %s 的值班间隔不足 %d 天", before, r.gap)
		}
		after := day.time.AddDate(0, 0, k).Format("2006-01-02")
		if r.sched.AssignedOn(after, st.ID) {
			return fmt.Sprintf("与 %s 的值班间隔不足 %d 天", after, r.gap)
		}
	}
	return ""
}
