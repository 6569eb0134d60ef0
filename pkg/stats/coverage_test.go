package stats

import (
	"testing"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

func TestAnalyzeCoverage_FullCoverage(t *testing.T) {
	cons := model.DefaultConstraints()
	cons.SelectedMonth = "2026-03"
	cons.Normalize()

	sched := model.NewSchedule("2026-03")
	// 3月2日(周一)与3月7日(周六)各排满2人
	for _, date := range []string{"2026-03-02", "2026-03-07"} {
		sched.Assign(date, uuid.New())
		sched.Assign(date, uuid.New())
	}

	report := AnalyzeCoverage(sched, cons)
	if report.TotalDays != 2 || report.FilledDays != 2 {
		t.Errorf("TotalDays/FilledDays = %d/%d", report.TotalDays, report.FilledDays)
	}
	if report.FillRate != 100 {
		t.Errorf("FillRate = %f, expected 100", report.FillRate)
	}
	if report.WeekendFillRate != 100 || report.WeekdayFillRate != 100 {
		t.Errorf("Weekend/Weekday fill = %f/%f", report.WeekendFillRate, report.WeekdayFillRate)
	}
	if len(report.ShortfallDays) != 0 {
		t.Errorf("Unexpected shortfall days: %v", report.ShortfallDays)
	}
}

func TestAnalyzeCoverage_Shortfall(t *testing.T) {
	cons := model.DefaultConstraints()
	cons.SelectedMonth = "2026-03"
	cons.Normalize()

	sched := model.NewSchedule("2026-03")
	sched.Assign("2026-03-02", uuid.New()) // 周一缺1人
	sched.Assign("2026-03-08", uuid.New()) // 周日缺1人
	sched.Assign("2026-03-08", uuid.New())
	sched.Assign("2026-03-08", uuid.New()) // 超出需求，按需求封顶

	report := AnalyzeCoverage(sched, cons)
	if report.TotalDemand != 4 {
		t.Errorf("TotalDemand = %d, expected 4", report.TotalDemand)
	}
	if report.TotalAssigned != 3 {
		t.Errorf("TotalAssigned = %d, expected 3 (capped at need)", report.TotalAssigned)
	}
	if report.FillRate != 75 {
		t.Errorf("FillRate = %f, expected 75", report.FillRate)
	}
	if len(report.ShortfallDays) != 1 {
		t.Fatalf("Expected 1 shortfall day, got %d", len(report.ShortfallDays))
	}
	sf := report.ShortfallDays[0]
	if sf.Date != "2026-03-02" || sf.Need != 2 || sf.Assigned != 1 {
		t.Errorf("Shortfall = %+v", sf)
	}
	// 周末已满，工作日缺口
	if report.WeekendFillRate != 100 {
		t.Errorf("WeekendFillRate = %f", report.WeekendFillRate)
	}
	if report.WeekdayFillRate != 50 {
		t.Errorf("WeekdayFillRate = %f, expected 50", report.WeekdayFillRate)
	}
}

func TestAnalyzeCoverage_NilInput(t *testing.T) {
	report := AnalyzeCoverage(nil, nil)
	if report.TotalDays != 0 || report.FillRate != 0 {
		t.Errorf("Nil input should yield empty report: %+v", report)
	}
}
