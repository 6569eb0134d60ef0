package scheduler

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// newRun 构造一个只含评分所需状态的最小run
func newRun(staffList []*model.Staff, cons *model.Constraints) *run {
	cons.Normalize()
	monthStart, _ := cons.Month()
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()

	days := make([]dayInfo, daysInMonth)
	index := make(map[string]int, daysInMonth)
	for i := 0; i < daysInMonth; i++ {
		t := monthStart.AddDate(0, 0, i)
		days[i] = dayInfo{
			date:    t.Format("2006-01-02"),
			weekday: t.Weekday().String(),
			weekend: t.Weekday() == time.Saturday || t.Weekday() == time.Sunday,
			time:    t,
		}
		index[days[i].date] = i
	}

	sched := model.NewSchedule(cons.SelectedMonth)
	byID := make(map[uuid.UUID]*model.Staff)
	for _, st := range staffList {
		sched.StaffStats[st.ID] = model.NewStaffStats(5, st.Seniority)
		byID[st.ID] = st
	}

	return &run{
		gen:   NewGenerator(WithRand(rand.New(rand.NewSource(1)))),
		cons:  cons,
		staff: staffList,
		byID:  byID,
		days:  days,
		index: index,
		sched: sched,
		gap:   cons.RequiredDayGap(),
	}
}

func TestScore_RequiredDayDominates(t *testing.T) {
	required := makeStaff("指定", 5)
	required.RequiredDays = model.NewDateSet("2026-03-10")
	plain := makeStaff("普通", 5)

	r := newRun([]*model.Staff{required, plain}, testConstraints())
	day := r.days[r.index["2026-03-10"]]

	if r.score(required, day) <= r.score(plain, day) {
		t.Error("Required day bonus should dominate")
	}
}

func TestScore_OverTargetPenalized(t *testing.T) {
	over := makeStaff("超额", 5)
	under := makeStaff("欠额", 5)
	r := newRun([]*model.Staff{over, under}, testConstraints())

	r.sched.StaffStats[over.ID].ShiftCount = 7  // 目标5，超2
	r.sched.StaffStats[under.ID].ShiftCount = 3 // 目标5，欠2

	day := r.days[r.index["2026-03-10"]]
	if r.score(over, day) >= r.score(under, day) {
		t.Error("Over-target staff should score below under-target staff")
	}
}

func TestScore_WeekendHierarchy(t *testing.T) {
	junior := makeStaff("资浅", 2)
	senior := makeStaff("资深", 9)
	r := newRun([]*model.Staff{junior, senior}, testConstraints())

	// 周末班数相同时，资深者在周末应被强力压低
	day := r.days[r.index["2026-03-07"]] // 周六
	if !day.weekend {
		t.Fatal("2026-03-07 should be a weekend")
	}
	if r.score(senior, day) >= r.score(junior, day) {
		t.Error("Senior staff should score below junior on weekends")
	}
}

func TestScore_VarietyPenalty(t *testing.T) {
	habitual := makeStaff("惯性", 5)
	fresh := makeStaff("新手", 5)
	r := newRun([]*model.Staff{habitual, fresh}, testConstraints())

	day := r.days[r.index["2026-03-09"]] // 周一
	r.sched.StaffStats[habitual.ID].DaysAssigned[day.weekday] = 3
	// 消除间隔分散差异
	r.sched.StaffStats[habitual.ID].LastShiftDate = "2026-03-02"
	r.sched.StaffStats[fresh.ID].LastShiftDate = "2026-03-02"

	if r.score(habitual, day) >= r.score(fresh, day) {
		t.Error("Repeated weekday should lower the score")
	}
}

func TestPairingAdjust(t *testing.T) {
	a := makeStaff("甲", 2)
	b := makeStaff("乙", 2)
	c := makeStaff("丙", 8)

	if got := pairingAdjust(a, b); got != -pairSameSeniorityPenalty {
		t.Errorf("Same seniority adjust = %f", got)
	}
	if got := pairingAdjust(c, a); got != 6*pairGapBonus {
		t.Errorf("Gap 6 adjust = %f", got)
	}
	// 方向无关
	if pairingAdjust(a, c) != pairingAdjust(c, a) {
		t.Error("Pairing adjust should be symmetric")
	}
}

func TestRemainingAssignableDays(t *testing.T) {
	st := makeStaff("人员", 5)
	st.LeaveDays = model.NewDateSet("2026-03-30", "2026-03-31")
	r := newRun([]*model.Staff{st}, testConstraints())

	// 3月29日之后还有30、31两天，均在休假 -> 0
	day := r.days[r.index["2026-03-29"]]
	if got := r.remainingAssignableDays(st, day); got != 0 {
		t.Errorf("remainingAssignableDays = %d, expected 0", got)
	}

	// 3月27日之后有28、29可用
	day = r.days[r.index["2026-03-27"]]
	if got := r.remainingAssignableDays(st, day); got != 2 {
		t.Errorf("remainingAssignableDays = %d, expected 2", got)
	}
}

func TestAvailableOn(t *testing.T) {
	st := makeStaff("人员", 5)
	st.Unavailability = model.NewDateSet("2026-03-10")
	st.LeaveDays = model.NewDateSet("2026-03-11")

	r := newRun([]*model.Staff{st}, testConstraints())

	if ok, _ := r.availableOn(st, r.days[r.index["2026-03-10"]]); ok {
		t.Error("Unavailable day should be excluded")
	}
	if ok, _ := r.availableOn(st, r.days[r.index["2026-03-11"]]); ok {
		t.Error("Leave day should be excluded")
	}
	if ok, _ := r.availableOn(st, r.days[r.index["2026-03-12"]]); !ok {
		t.Error("Free day should be available")
	}

	// 双向休息间隔：已锁定14日后，13日与15日都不可用
	r.sched.Assign("2026-03-14", st.ID)
	if ok, _ := r.availableOn(st, r.days[r.index["2026-03-13"]]); ok {
		t.Error("Day before a locked shift should conflict")
	}
	if ok, _ := r.availableOn(st, r.days[r.index["2026-03-15"]]); ok {
		t.Error("Day after a locked shift should conflict")
	}
	if ok, _ := r.availableOn(st, r.days[r.index["2026-03-16"]]); !ok {
		t.Error("Two days after a shift should be fine")
	}

	// 月上限
	r.sched.StaffStats[st.ID].ShiftCount = r.cons.MaxShiftsPerMonth
	if ok, reason := r.availableOn(st, r.days[r.index["2026-03-20"]]); ok || reason == "" {
		t.Error("Monthly cap should exclude with a reason")
	}
}
