// Package stats 提供值班表的统计分析功能
package stats

import (
	"sort"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
)

// DayShortfall 单日缺口
type DayShortfall struct {
	Date     string `json:"date"`
	Weekday  string `json:"weekday"`
	Need     int    `json:"need"`
	Assigned int    `json:"assigned"`
}

// CoverageReport 覆盖率报告
type CoverageReport struct {
	TotalDemand   int            `json:"total_demand"`
	TotalAssigned int            `json:"total_assigned"`
	FillRate      float64        `json:"fill_rate"` // 百分比
	FilledDays    int            `json:"filled_days"`
	TotalDays     int            `json:"total_days"`
	ShortfallDays []DayShortfall `json:"shortfall_days,omitempty"`

	// 周末/工作日分别的覆盖率
	WeekendFillRate float64 `json:"weekend_fill_rate"`
	WeekdayFillRate float64 `json:"weekday_fill_rate"`
}

// AnalyzeCoverage 按约束需求逐日核对值班表覆盖情况
func AnalyzeCoverage(sched *model.Schedule, cons *model.Constraints) *CoverageReport {
	report := &CoverageReport{}
	if sched == nil || cons == nil {
		return report
	}

	dates := make([]string, 0, len(sched.Days))
	for date := range sched.Days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var weekendDemand, weekendAssigned, weekdayDemand, weekdayAssigned int

	for _, date := range dates {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		weekday := t.Weekday().String()
		need := cons.NeedFor(weekday)
		assigned := len(sched.Days[date])
		if assigned > need {
			assigned = need // 指定值班日可能超出需求，覆盖率按需求封顶
		}

		report.TotalDays++
		report.TotalDemand += need
		report.TotalAssigned += assigned

		if model.IsWeekendDate(date) {
			weekendDemand += need
			weekendAssigned += assigned
		} else {
			weekdayDemand += need
			weekdayAssigned += assigned
		}

		if assigned >= need {
			report.FilledDays++
		} else {
			report.ShortfallDays = append(report.ShortfallDays, DayShortfall{
				Date:     date,
				Weekday:  weekday,
				Need:     need,
				Assigned: assigned,
			})
		}
	}

	if report.TotalDemand > 0 {
		report.FillRate = float64(report.TotalAssigned) / float64(report.TotalDemand) * 100
	}
	if weekendDemand > 0 {
		report.WeekendFillRate = float64(weekendAssigned) / float64(weekendDemand) * 100
	}
	if weekdayDemand > 0 {
		report.WeekdayFillRate = float64(weekdayAssigned) / float64(weekdayDemand) * 100
	}

	return report
}
