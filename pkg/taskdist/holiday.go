// Package taskdist 实现任务列的逐日贪心分配
package taskdist

import "time"

// 固定法定假日（每年相同的月-日）
var fixedHolidays = map[string]struct{}{
	"01-01": {},
	"04-23": {},
	"05-01": {},
	"05-19": {},
	"07-15": {},
	"08-30": {},
	"10-29": {},
}

// dateRange 闭区间日期段（YYYY-MM-DD）
type dateRange struct {
	start string
	end   string
}

// 浮动宗教假日，日期逐年不同，按年份配置区间
// 未配置的年份没有宗教假日数据，只有固定假日生效（已知的数据覆盖缺口）
var religiousHolidays = map[int][]dateRange{
	2024: {
		{"2024-04-10", "2024-04-12"},
		{"2024-06-16", "2024-06-19"},
	},
	2025: {
		{"2025-03-30", "2025-04-01"},
		{"2025-06-06", "2025-06-09"},
	},
	2026: {
		{"2026-03-20", "2026-03-22"},
		{"2026-05-27", "2026-05-30"},
	},
}

// IsPublicHoliday 检查日期是否为公共假日（固定假日或当年的宗教假日区间）
func IsPublicHoliday(t time.Time) bool {
	if _, ok := fixedHolidays[t.Format("01-02")]; ok {
		return true
	}
	date := t.Format("2006-01-02")
	for _, r := range religiousHolidays[t.Year()] {
		if date >= r.start && date <= r.end {
			return true
		}
	}
	return false
}
