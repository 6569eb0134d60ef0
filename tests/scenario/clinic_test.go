package scenario

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
	"github.com/zhiban/zhiban/pkg/stats"
)

// TestClinicSmallTeam 小诊所场景：5人轮值，每日1人，休息24小时
func TestClinicSmallTeam(t *testing.T) {
	staffList := []*model.Staff{
		{ID: uuid.New(), Name: "院长", Seniority: 8},
		{ID: uuid.New(), Name: "医师甲", Seniority: 6},
		{ID: uuid.New(), Name: "医师乙", Seniority: 4},
		{ID: uuid.New(), Name: "医师丙", Seniority: 3},
		{ID: uuid.New(), Name: "助理", Seniority: 1},
	}

	cons := model.DefaultConstraints()
	cons.SelectedMonth = "2026-03"
	cons.MinRestHours = 24 // 不允许连续两天
	cons.MaxShiftsPerMonth = 10
	for _, day := range model.Weekdays {
		cons.DailyNeeds[day] = 1
	}

	gen := scheduler.NewGenerator(scheduler.WithRand(rand.New(rand.NewSource(99))))
	sched, err := gen.Generate(staffList, cons)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if sched.TotalDemand != 31 {
		t.Errorf("TotalDemand = %d, expected 31", sched.TotalDemand)
	}

	coverage := stats.AnalyzeCoverage(sched, cons)
	if coverage.FillRate != 100 {
		t.Errorf("FillRate = %f, shortfalls: %v", coverage.FillRate, coverage.ShortfallDays)
	}

	// 间隔2天：任何人不得连续两天值班
	gap := cons.RequiredDayGap()
	if gap != 2 {
		t.Fatalf("RequiredDayGap = %d, expected 2", gap)
	}
	for _, st := range staffList {
		dates := sched.DatesFor(st.ID)
		for i := 1; i < len(dates); i++ {
			if prevDate(dates[i]) == dates[i-1] {
				t.Errorf("%s assigned consecutive days %s/%s", st.Name, dates[i-1], dates[i])
			}
		}
		if c := sched.StaffStats[st.ID].ShiftCount; c > cons.MaxShiftsPerMonth {
			t.Errorf("%s exceeds cap: %d", st.Name, c)
		}
	}

	// 资历低者承担不少于资历高者
	assistant := sched.StaffStats[staffList[4].ID].ShiftCount
	director := sched.StaffStats[staffList[0].ID].ShiftCount
	if assistant < director {
		t.Errorf("Assistant (%d) below director (%d)", assistant, director)
	}
}

// TestClinicOverloadedMonth 容量不足场景：需求超过可排能力时缺口要有记录
func TestClinicOverloadedMonth(t *testing.T) {
	staffList := []*model.Staff{
		{ID: uuid.New(), Name: "医师甲", Seniority: 5},
		{ID: uuid.New(), Name: "医师乙", Seniority: 5},
	}

	cons := model.DefaultConstraints()
	cons.SelectedMonth = "2026-03"
	cons.MaxShiftsPerMonth = 8
	for _, day := range model.Weekdays {
		cons.DailyNeeds[day] = 2
	}

	gen := scheduler.NewGenerator(scheduler.WithRand(rand.New(rand.NewSource(3))))
	sched, err := gen.Generate(staffList, cons)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// 需求62远超16的容量，生成本身不报错，缺口以日志与覆盖率呈现
	coverage := stats.AnalyzeCoverage(sched, cons)
	if coverage.FillRate >= 100 {
		t.Errorf("Overloaded month should not reach full coverage: %f", coverage.FillRate)
	}
	if len(coverage.ShortfallDays) == 0 {
		t.Error("Expected shortfall days")
	}
	if len(sched.LogsByLevel(model.LogError)) == 0 {
		t.Error("Shortfall should produce error logs")
	}
}
