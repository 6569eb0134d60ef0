// Package scheduler 实现按资历公平目标的月度值班生成算法
package scheduler

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// ComputeTargets 按资历权重计算每人的月度公平目标
//
// 权重 = 11 - 资历（资浅权重高，承担更多值班）。月内休假天数达到阈值的人员，
// 权重再乘以可用天数比例；短假不缩减目标。目标 = round(总需求 × 调整后权重 / 权重和)。
// 各人目标取整后之和允许与总需求有少量偏差，不做回配。
func ComputeTargets(staffList []*model.Staff, totalDemand int, month string, daysInMonth int) (map[uuid.UUID]int, map[uuid.UUID]*model.TargetDetail) {
	targets := make(map[uuid.UUID]int, len(staffList))
	details := make(map[uuid.UUID]*model.TargetDetail, len(staffList))
	if len(staffList) == 0 {
		return targets, details
	}

	totalAdjusted := 0.0
	for _, st := range staffList {
		weight := model.SeniorityWeight(st.Seniority)
		leaveDays := leaveDaysInMonth(st, month)

		ratio := 1.0
		reduced := false
		if leaveDays >= model.LeaveReductionThreshold && daysInMonth > 0 {
			ratio = float64(daysInMonth-leaveDays) / float64(daysInMonth)
			if ratio < 0 {
				ratio = 0
			}
			reduced = true
		}

		adjusted := float64(weight) * ratio
		totalAdjusted += adjusted

		details[st.ID] = &model.TargetDetail{
			Weight:            weight,
			AdjustedWeight:    adjusted,
			AvailabilityRatio: ratio,
			TargetReduced:     reduced,
			LeaveDays:         leaveDays,
		}
	}

	if totalAdjusted <= 0 {
		return targets, details
	}

	for _, st := range staffList {
		detail := details[st.ID]
		raw := float64(totalDemand) * detail.AdjustedWeight / totalAdjusted
		detail.RawTarget = raw
		targets[st.ID] = int(math.Round(raw))
	}

	return targets, details
}

// leaveDaysInMonth 统计目标月份内的休假天数
func leaveDaysInMonth(st *model.Staff, month string) int {
	prefix := month + "-"
	count := 0
	for date := range st.LeaveDays {
		if strings.HasPrefix(date, prefix) {
			count++
		}
	}
	return count
}
