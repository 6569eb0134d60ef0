package taskdist

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

func marchDays() []time.Time {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	days := make([]time.Time, 31)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

func distStaff(name string, seniority int) *model.Staff {
	return &model.Staff{ID: uuid.New(), Name: name, Seniority: seniority}
}

func seededDistributor(seed int64) *Distributor {
	return NewDistributor(WithRand(rand.New(rand.NewSource(seed))))
}

func TestDistribute_WeekdayAndHolidayFilter(t *testing.T) {
	staffList := []*model.Staff{
		distStaff("甲", 3), distStaff("乙", 4), distStaff("丙", 5),
	}
	column := model.TaskColumn{
		Name:                "门诊",
		EligibleSeniorities: []int{3, 4, 5},
		TargetWeekdays:      []int{1, 2, 3, 4, 5}, // 仅工作日
		MaxPerDay:           1,
	}

	out := seededDistributor(1).Distribute(Params{
		Days:      marchDays(),
		StaffList: staffList,
		Column:    column,
	})

	for date := range out {
		day, _ := time.Parse("2006-01-02", date)
		wd := int(day.Weekday())
		if wd == 0 || wd == 6 {
			t.Errorf("Weekend date assigned: %s", date)
		}
		if IsPublicHoliday(day) {
			t.Errorf("Holiday assigned: %s", date)
		}
	}

	// 2026-03-20（周五）是宗教假日，必须跳过
	if out.Get("2026-03-20", 0) != nil {
		t.Error("Religious holiday 2026-03-20 should be excluded")
	}
	// 普通周一应有分配
	if got := out.Get("2026-03-09", 0); len(got) != 1 {
		t.Errorf("Regular Monday got %d assignments", len(got))
	}
}

func TestDistribute_EligibilityRules(t *testing.T) {
	a, b, c := distStaff("甲", 3), distStaff("乙", 5), distStaff("丙", 7)
	staffList := []*model.Staff{a, b, c}

	// 显式名单优先于资历白名单
	column := model.TaskColumn{
		Name:                "手术",
		EligibleStaffIDs:    []uuid.UUID{a.ID},
		EligibleSeniorities: []int{5, 7},
		MaxPerDay:           1,
	}

	out := seededDistributor(2).Distribute(Params{
		Days:      marchDays(),
		StaffList: staffList,
		Column:    column,
	})

	for date, columns := range out {
		for _, ids := range columns {
			for _, id := range ids {
				if id != a.ID {
					t.Errorf("Non-listed staff assigned on %s", date)
				}
			}
		}
	}
}

func TestDistribute_NoEligibleStaff(t *testing.T) {
	staffList := []*model.Staff{distStaff("甲", 3)}
	column := model.TaskColumn{
		Name:                "专家号",
		EligibleSeniorities: []int{9, 10},
		MaxPerDay:           1,
	}

	out := seededDistributor(3).Distribute(Params{
		Days:      marchDays(),
		StaffList: staffList,
		Column:    column,
	})

	if len(out) != 0 {
		t.Errorf("No eligible staff should yield empty assignments, got %d days", len(out))
	}
}

func TestDistribute_LeaveAndPrevDayShift(t *testing.T) {
	a, b := distStaff("甲", 5), distStaff("乙", 5)
	a.LeaveDays = model.NewDateSet("2026-03-09")

	// 乙在3月8日值班，9日应被排除；甲9日休假 -> 当日留空
	sched := model.NewSchedule("2026-03")
	sched.Assign("2026-03-08", b.ID)

	column := model.TaskColumn{
		Name:                "查房",
		EligibleSeniorities: []int{5},
		TargetWeekdays:      []int{1}, // 仅周一
		MaxPerDay:           1,
	}

	out := seededDistributor(4).Distribute(Params{
		Days:      marchDays(),
		StaffList: []*model.Staff{a, b},
		Schedule:  sched,
		Column:    column,
	})

	if got := out.Get("2026-03-09", 0); got != nil {
		t.Errorf("2026-03-09 should stay empty, got %v", got)
	}
	// 其他周一正常分配
	if got := out.Get("2026-03-16", 0); len(got) != 1 {
		t.Errorf("2026-03-16 got %d assignments", len(got))
	}
}

func TestDistribute_NoSameDayOverlap(t *testing.T) {
	a, b := distStaff("甲", 5), distStaff("乙", 5)
	staffList := []*model.Staff{a, b}

	current := model.TaskAssignments{}
	// 甲已被第0列占用每个周一
	for _, day := range marchDays() {
		if day.Weekday() == time.Monday {
			current.Set(day.Format("2006-01-02"), 0, []uuid.UUID{a.ID})
		}
	}

	column := model.TaskColumn{
		Name:                "门诊",
		EligibleSeniorities: []int{5},
		TargetWeekdays:      []int{1},
		MaxPerDay:           1,
	}

	out := seededDistributor(5).Distribute(Params{
		Days:        marchDays(),
		StaffList:   staffList,
		Current:     current,
		Column:      column,
		ColumnIndex: 1,
	})

	for _, day := range marchDays() {
		if day.Weekday() != time.Monday || IsPublicHoliday(day) {
			continue
		}
		date := day.Format("2006-01-02")
		for _, id := range out.Get(date, 1) {
			if id == a.ID {
				t.Errorf("Staff double-booked across columns on %s", date)
			}
		}
		// 第0列原样保留
		if got := out.Get(date, 0); len(got) != 1 || got[0] != a.ID {
			t.Errorf("Existing column 0 assignment lost on %s", date)
		}
	}
}

func TestDistribute_FillEmptyOnly(t *testing.T) {
	a, b := distStaff("甲", 5), distStaff("乙", 5)
	staffList := []*model.Staff{a, b}

	current := model.TaskAssignments{}
	current.Set("2026-03-09", 0, []uuid.UUID{a.ID})

	column := model.TaskColumn{
		Name:                "门诊",
		EligibleSeniorities: []int{5},
		TargetWeekdays:      []int{1},
		MaxPerDay:           1,
	}

	out := seededDistributor(6).Distribute(Params{
		Days:          marchDays(),
		StaffList:     staffList,
		Current:       current,
		Column:        column,
		FillEmptyOnly: true,
	})

	// 已有分配保持不变
	if got := out.Get("2026-03-09", 0); len(got) != 1 || got[0] != a.ID {
		t.Errorf("Existing assignment replaced: %v", got)
	}
	// 空缺的周一被补齐
	if got := out.Get("2026-03-16", 0); len(got) != 1 {
		t.Errorf("Empty Monday not filled: %v", got)
	}
}

func TestDistribute_FairSpread(t *testing.T) {
	var staffList []*model.Staff
	for i := 0; i < 4; i++ {
		staffList = append(staffList, distStaff("人员", 5))
	}

	column := model.TaskColumn{
		Name:                "值日",
		EligibleSeniorities: []int{5},
		MaxPerDay:           1,
	}

	out := seededDistributor(7).Distribute(Params{
		Days:      marchDays(),
		StaffList: staffList,
		Column:    column,
	})

	counts := make(map[uuid.UUID]int)
	total := 0
	for _, columns := range out {
		for _, ids := range columns {
			for _, id := range ids {
				counts[id]++
				total++
			}
		}
	}

	// 资历相同时均摊：最多与最少相差不应超过2
	min, max := total, 0
	for _, st := range staffList {
		c := counts[st.ID]
		if c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}
	if max-min > 2 {
		t.Errorf("Uneven spread: min=%d max=%d", min, max)
	}
}

func TestDistribute_PreferredSeniorityMix(t *testing.T) {
	staffList := []*model.Staff{
		distStaff("高", 8), distStaff("高2", 8),
		distStaff("低", 2), distStaff("低2", 2),
	}
	column := model.TaskColumn{
		Name:                  "手术",
		EligibleSeniorities:   []int{8, 2},
		TargetWeekdays:        []int{2}, // 仅周二
		MaxPerDay:             2,
		PreferredSeniorityMix: []int{8, 2},
	}

	out := seededDistributor(8).Distribute(Params{
		Days:      marchDays(),
		StaffList: staffList,
		Column:    column,
	})

	byID := make(map[uuid.UUID]int)
	for _, st := range staffList {
		byID[st.ID] = st.Seniority
	}

	// 每个周二应是高/低搭配
	checked := 0
	for date, columns := range out {
		for _, ids := range columns {
			if len(ids) != 2 {
				t.Errorf("Day %s got %d assignments, expected 2", date, len(ids))
				continue
			}
			if byID[ids[0]] == byID[ids[1]] {
				t.Errorf("Day %s lacks seniority mix: %d/%d", date, byID[ids[0]], byID[ids[1]])
			}
			checked++
		}
	}
	if checked == 0 {
		t.Fatal("No Tuesdays were assigned")
	}
}
