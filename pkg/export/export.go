// Package export 将值班表与任务分配导出为CSV和表格文本
//
// 导出只读取值班表与人员名单，不参与算法，也不回写任何数据
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/zhiban/zhiban/pkg/model"
)

// nameIndex 人员ID -> 姓名
func nameIndex(staffList []*model.Staff) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(staffList))
	for _, st := range staffList {
		names[st.ID] = st.Name
	}
	return names
}

// sortedDates 值班表日期升序
func sortedDates(sched *model.Schedule) []string {
	dates := make([]string, 0, len(sched.Days))
	for date := range sched.Days {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// weekdayOf 日期对应的星期名
func weekdayOf(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}

// ScheduleCSV 导出值班表为CSV（日期、星期、当日人员）
func ScheduleCSV(w io.Writer, sched *model.Schedule, staffList []*model.Staff) error {
	names := nameIndex(staffList)
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"date", "weekday", "staff"}); err != nil {
		return err
	}
	for _, date := range sortedDates(sched) {
		assigned := make([]string, 0, len(sched.Days[date]))
		for _, id := range sched.Days[date] {
			assigned = append(assigned, names[id])
		}
		if err := cw.Write([]string{date, weekdayOf(date), strings.Join(assigned, "; ")}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ScheduleTable 渲染值班表为对齐的文本表格
func ScheduleTable(sched *model.Schedule, staffList []*model.Staff) string {
	names := nameIndex(staffList)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"日期", "星期", "值班人员"})
	for _, date := range sortedDates(sched) {
		assigned := make([]string, 0, len(sched.Days[date]))
		for _, id := range sched.Days[date] {
			assigned = append(assigned, names[id])
		}
		t.AppendRow(table.Row{date, weekdayOf(date), strings.Join(assigned, "、")})
	}
	return t.Render()
}

// SummaryTable 渲染每人统计汇总表
func SummaryTable(sched *model.Schedule, staffList []*model.Staff) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"姓名", "资历", "班次", "目标", "周末班", "工作日班"})

	ordered := append([]*model.Staff(nil), staffList...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Seniority < ordered[j].Seniority
	})

	for _, st := range ordered {
		stat := sched.StaffStats[st.ID]
		if stat == nil {
			continue
		}
		t.AppendRow(table.Row{
			st.Name, st.Seniority,
			stat.ShiftCount, stat.TargetShifts,
			stat.WeekendShifts, stat.WeekdayShifts,
		})
	}
	return t.Render()
}

// TasksCSV 导出任务分配为CSV（日期 + 每个任务列一列）
func TasksCSV(w io.Writer, tasks model.TaskAssignments, columns []model.TaskColumn, staffList []*model.Staff) error {
	names := nameIndex(staffList)
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(columns)+1)
	header = append(header, "date")
	for i, col := range columns {
		name := col.Name
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		header = append(header, name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	dates := make([]string, 0, len(tasks))
	for date := range tasks {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		row := make([]string, 0, len(columns)+1)
		row = append(row, date)
		for i := range columns {
			assigned := make([]string, 0)
			for _, id := range tasks.Get(date, i) {
				assigned = append(assigned, names[id])
			}
			row = append(row, strings.Join(assigned, "; "))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
