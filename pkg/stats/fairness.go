// Package stats 提供值班表的统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// StaffSummary 单人汇总
type StaffSummary struct {
	StaffID       uuid.UUID `json:"staff_id"`
	StaffName     string    `json:"staff_name"`
	Seniority     int       `json:"seniority"`
	ShiftCount    int       `json:"shift_count"`
	WeekendShifts int       `json:"weekend_shifts"`
	WeekdayShifts int       `json:"weekday_shifts"`
	TargetShifts  int       `json:"target_shifts"`
	Deviation     float64   `json:"deviation"` // 与公平目标的偏差百分比
}

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	ShiftGini   float64 `json:"shift_gini"`   // 总班次基尼系数 (0=完全公平)
	WeekendGini float64 `json:"weekend_gini"` // 周末班次基尼系数

	AvgShifts float64 `json:"avg_shifts"`
	MaxShifts int     `json:"max_shifts"`
	MinShifts int     `json:"min_shifts"`

	// 层级违反对数：资浅者总班次或周末班次少于资深者的人员对
	HierarchyViolations int `json:"hierarchy_violations"`

	StaffSummaries []StaffSummary `json:"staff_summaries"`

	// 综合公平性评分 (0-100)
	OverallFairnessScore float64 `json:"overall_fairness_score"`
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 分析值班表的公平性
func (f *FairnessAnalyzer) Analyze(sched *model.Schedule, staffList []*model.Staff) *FairnessMetrics {
	if sched == nil || len(staffList) == 0 {
		return &FairnessMetrics{OverallFairnessScore: 100}
	}

	summaries := make([]StaffSummary, 0, len(staffList))
	shifts := make([]float64, 0, len(staffList))
	weekends := make([]float64, 0, len(staffList))

	for _, st := range staffList {
		stat := sched.StaffStats[st.ID]
		if stat == nil {
			stat = model.NewStaffStats(0, st.Seniority)
		}
		summary := StaffSummary{
			StaffID:       st.ID,
			StaffName:     st.Name,
			Seniority:     st.Seniority,
			ShiftCount:    stat.ShiftCount,
			WeekendShifts: stat.WeekendShifts,
			WeekdayShifts: stat.WeekdayShifts,
			TargetShifts:  stat.TargetShifts,
		}
		if stat.TargetShifts > 0 {
			summary.Deviation = float64(stat.ShiftCount-stat.TargetShifts) / float64(stat.TargetShifts) * 100
		}
		summaries = append(summaries, summary)
		shifts = append(shifts, float64(stat.ShiftCount))
		weekends = append(weekends, float64(stat.WeekendShifts))
	}

	// 按总班次降序展示
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ShiftCount > summaries[j].ShiftCount
	})

	avg := mean(shifts)
	maxShifts, minShifts := 0, 0
	if len(summaries) > 0 {
		maxShifts = summaries[0].ShiftCount
		minShifts = summaries[len(summaries)-1].ShiftCount
	}

	shiftGini := gini(shifts)
	weekendGini := gini(weekends)
	violations := f.countHierarchyViolations(sched, staffList)

	return &FairnessMetrics{
		ShiftGini:            shiftGini,
		WeekendGini:          weekendGini,
		AvgShifts:            avg,
		MaxShifts:            maxShifts,
		MinShifts:            minShifts,
		HierarchyViolations:  violations,
		StaffSummaries:       summaries,
		OverallFairnessScore: f.overallScore(shiftGini, weekendGini, violations, len(staffList)),
	}
}

// countHierarchyViolations 统计层级违反对数
// 不变量：资浅者的总班次与周末班次都不应少于资深者
func (f *FairnessAnalyzer) countHierarchyViolations(sched *model.Schedule, staffList []*model.Staff) int {
	count := 0
	for _, junior := range staffList {
		for _, senior := range staffList {
			if junior.Seniority >= senior.Seniority {
				continue
			}
			js, ss := sched.StaffStats[junior.ID], sched.StaffStats[senior.ID]
			if js == nil || ss == nil {
				continue
			}
			if js.ShiftCount < ss.ShiftCount || js.WeekendShifts < ss.WeekendShifts {
				count++
			}
		}
	}
	return count
}

// overallScore 综合公平性评分
func (f *FairnessAnalyzer) overallScore(shiftGini, weekendGini float64, violations, staffCount int) float64 {
	const (
		shiftWeight     = 0.45
		weekendWeight   = 0.35
		hierarchyWeight = 0.2
	)

	shiftScore := (1 - shiftGini) * 100
	weekendScore := (1 - weekendGini) * 100

	// 层级评分：违反对数占全部人员对的比例
	hierarchyScore := 100.0
	pairs := staffCount * (staffCount - 1) / 2
	if pairs > 0 {
		hierarchyScore = math.Max(0, 100-float64(violations)/float64(pairs)*100)
	}

	score := shiftWeight*shiftScore + weekendWeight*weekendScore + hierarchyWeight*hierarchyScore
	return math.Max(0, math.Min(100, score))
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}
