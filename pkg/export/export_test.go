package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

func TestScheduleCSV(t *testing.T) {
	a := &model.Staff{ID: uuid.New(), Name: "甲", Seniority: 3}
	b := &model.Staff{ID: uuid.New(), Name: "乙", Seniority: 7}

	sched := model.NewSchedule("2026-03")
	sched.Assign("2026-03-02", a.ID)
	sched.Assign("2026-03-02", b.ID)
	sched.Assign("2026-03-01", a.ID)

	var buf bytes.Buffer
	if err := ScheduleCSV(&buf, sched, []*model.Staff{a, b}); err != nil {
		t.Fatalf("ScheduleCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "date,weekday,staff" {
		t.Errorf("Header = %q", lines[0])
	}
	// 日期升序
	if !strings.HasPrefix(lines[1], "2026-03-01,Sunday,甲") {
		t.Errorf("Row 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "2026-03-02,Monday,甲; 乙") {
		t.Errorf("Row 2 = %q", lines[2])
	}
}

func TestScheduleTable(t *testing.T) {
	a := &model.Staff{ID: uuid.New(), Name: "甲", Seniority: 3}
	sched := model.NewSchedule("2026-03")
	sched.Assign("2026-03-02", a.ID)

	out := ScheduleTable(sched, []*model.Staff{a})
	for _, want := range []string{"日期", "星期", "值班人员", "2026-03-02", "甲"} {
		if !strings.Contains(out, want) {
			t.Errorf("Table output missing %q", want)
		}
	}
}

func TestSummaryTable(t *testing.T) {
	senior := &model.Staff{ID: uuid.New(), Name: "资深", Seniority: 9}
	junior := &model.Staff{ID: uuid.New(), Name: "资浅", Seniority: 2}

	sched := model.NewSchedule("2026-03")
	sched.StaffStats[senior.ID] = model.NewStaffStats(3, 9)
	sched.StaffStats[junior.ID] = model.NewStaffStats(8, 2)
	sched.StaffStats[junior.ID].ShiftCount = 8

	out := SummaryTable(sched, []*model.Staff{senior, junior})
	// 按资历升序，资浅在前
	if strings.Index(out, "资浅") > strings.Index(out, "资深") {
		t.Error("Summary should list junior staff first")
	}
	if !strings.Contains(out, "8") {
		t.Error("Summary missing shift count")
	}
}

func TestTasksCSV(t *testing.T) {
	a := &model.Staff{ID: uuid.New(), Name: "甲", Seniority: 3}
	b := &model.Staff{ID: uuid.New(), Name: "乙", Seniority: 7}

	columns := []model.TaskColumn{
		{Name: "门诊"},
		{Name: ""}, // 未命名列使用占位名
	}
	tasks := model.TaskAssignments{}
	tasks.Set("2026-03-02", 0, []uuid.UUID{a.ID})
	tasks.Set("2026-03-02", 1, []uuid.UUID{b.ID, a.ID})
	tasks.Set("2026-03-01", 0, []uuid.UUID{b.ID})

	var buf bytes.Buffer
	if err := TasksCSV(&buf, tasks, columns, []*model.Staff{a, b}); err != nil {
		t.Fatalf("TasksCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "date,门诊,column_2" {
		t.Errorf("Header = %q", lines[0])
	}
	if lines[1] != "2026-03-01,乙," {
		t.Errorf("Row 1 = %q", lines[1])
	}
	if lines[2] != "2026-03-02,甲,乙; 甲" {
		t.Errorf("Row 2 = %q", lines[2])
	}
}
