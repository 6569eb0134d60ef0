// Package integration 针对HTTP处理器的集成测试（不依赖数据库）
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/internal/handler"
	"github.com/zhiban/zhiban/pkg/model"
)

func testStaff(count int) []*model.Staff {
	staffList := make([]*model.Staff, 0, count)
	for i := 0; i < count; i++ {
		staffList = append(staffList, &model.Staff{
			ID:        uuid.New(),
			Name:      "人员",
			Seniority: i%10 + 1,
		})
	}
	return staffList
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestScheduleGenerate(t *testing.T) {
	h := handler.NewScheduleHandler(0, nil, 0)

	cons := model.DefaultConstraints()
	cons.SelectedMonth = "2026-03"
	seed := int64(42)

	rec := postJSON(t, h.Generate, "/api/v1/schedule/generate", handler.GenerateRequest{
		Staff:       testStaff(10),
		Constraints: cons,
		Seed:        &seed,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp handler.GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Schedule == nil || len(resp.Schedule.Days) != 31 {
		t.Fatalf("Expected 31-day schedule, got %+v", resp.Schedule)
	}
	if resp.FillRate != 100 {
		t.Errorf("FillRate = %f, expected 100", resp.FillRate)
	}
	if resp.Duration == "" {
		t.Error("Duration missing")
	}
}

func TestScheduleGenerate_Validation(t *testing.T) {
	h := handler.NewScheduleHandler(0, nil, 0)

	tests := []struct {
		name string
		req  handler.GenerateRequest
	}{
		{"缺少人员", handler.GenerateRequest{Constraints: model.DefaultConstraints()}},
		{"缺少约束", handler.GenerateRequest{Staff: testStaff(3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Generate, "/api/v1/schedule/generate", tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rec.Code)
			}
			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("Error body is not JSON: %v", err)
			}
			if body["error"] != true {
				t.Errorf("Error envelope missing: %v", body)
			}
		})
	}
}

func TestScheduleGenerate_MethodNotAllowed(t *testing.T) {
	h := handler.NewScheduleHandler(0, nil, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/generate", nil)
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("GET should be rejected, got %d", rec.Code)
	}
}

func TestScheduleGenerate_ArchiveWithoutDB(t *testing.T) {
	h := handler.NewScheduleHandler(0, nil, 0)

	cons := model.DefaultConstraints()
	cons.SelectedMonth = "2026-03"

	rec := postJSON(t, h.Generate, "/api/v1/schedule/generate", handler.GenerateRequest{
		Staff:       testStaff(10),
		Constraints: cons,
		Archive:     true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Archive without database should fail, got %d", rec.Code)
	}
}

func TestScheduleLatest_WithoutDB(t *testing.T) {
	h := handler.NewScheduleHandler(0, nil, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/latest?month=2026-03", nil)
	rec := httptest.NewRecorder()
	h.Latest(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Latest without database should fail, got %d", rec.Code)
	}
}

func TestTasksDistribute(t *testing.T) {
	h := handler.NewTaskHandler(0, nil)
	seed := int64(7)

	staffList := testStaff(4)
	for _, st := range staffList {
		st.Seniority = 5
	}

	rec := postJSON(t, h.Distribute, "/api/v1/tasks/distribute", handler.DistributeRequest{
		Month: "2026-03",
		Staff: staffList,
		Columns: []model.TaskColumn{
			{Name: "门诊", EligibleSeniorities: []int{5}, TargetWeekdays: []int{1, 2, 3, 4, 5}, MaxPerDay: 1},
		},
		Seed: &seed,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp handler.DistributeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Assignments) == 0 {
		t.Fatal("Expected assignments for weekday column")
	}
	if got := resp.Assignments.Get("2026-03-09", 0); len(got) != 1 {
		t.Errorf("Regular Monday got %d assignments", len(got))
	}
}

func TestTasksDistribute_InvalidColumn(t *testing.T) {
	h := handler.NewTaskHandler(0, nil)

	rec := postJSON(t, h.Distribute, "/api/v1/tasks/distribute", handler.DistributeRequest{
		Month: "2026-03",
		Staff: testStaff(3),
		Columns: []model.TaskColumn{
			{Name: "坏列", MaxPerDay: -1},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Invalid column should fail, got %d", rec.Code)
	}
}

func TestStatsAnalyze(t *testing.T) {
	scheduleH := handler.NewScheduleHandler(0, nil, 0)
	statsH := handler.NewStatsHandler()

	cons := model.DefaultConstraints()
	cons.SelectedMonth = "2026-03"
	seed := int64(11)
	staffList := testStaff(10)

	genRec := postJSON(t, scheduleH.Generate, "/api/v1/schedule/generate", handler.GenerateRequest{
		Staff: staffList, Constraints: cons, Seed: &seed,
	})
	if genRec.Code != http.StatusOK {
		t.Fatalf("Generate failed: %s", genRec.Body.String())
	}
	var genResp handler.GenerateResponse
	if err := json.Unmarshal(genRec.Body.Bytes(), &genResp); err != nil {
		t.Fatal(err)
	}

	rec := postJSON(t, statsH.Analyze, "/api/v1/stats/analyze", handler.AnalyzeRequest{
		Schedule:    genResp.Schedule,
		Staff:       staffList,
		Constraints: cons,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp handler.AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Fairness == nil {
		t.Fatal("Fairness metrics missing")
	}
	if resp.Fairness.OverallFairnessScore < 0 || resp.Fairness.OverallFairnessScore > 100 {
		t.Errorf("Score out of range: %f", resp.Fairness.OverallFairnessScore)
	}
	if resp.Coverage == nil || resp.Coverage.FillRate != 100 {
		t.Errorf("Coverage = %+v", resp.Coverage)
	}
}

func TestScheduleValidate(t *testing.T) {
	h := handler.NewValidateHandler()

	cons := model.DefaultConstraints()
	cons.SelectedMonth = "2026-03"

	a := testStaff(1)[0]
	sched := model.NewSchedule("2026-03")
	sched.Assign("2026-03-02", a.ID)
	sched.Assign("2026-03-03", a.ID) // 连续两天，违反休息间隔

	rec := postJSON(t, h.Validate, "/api/v1/schedule/validate", handler.ValidateRequest{
		Schedule:    sched,
		Staff:       []*model.Staff{a},
		Constraints: cons,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp handler.ValidateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Valid {
		t.Error("Schedule with rest gap violation should be invalid")
	}
	if len(resp.Conflicts) == 0 {
		t.Error("Expected conflicts")
	}
}

func TestSwapRecommend(t *testing.T) {
	h := handler.NewSwapHandler()

	cons := model.DefaultConstraints()
	cons.SelectedMonth = "2026-03"

	staffList := testStaff(3)
	sched := model.NewSchedule("2026-03")
	sched.Assign("2026-03-10", staffList[0].ID)

	rec := postJSON(t, h.Recommend, "/api/v1/schedule/swaps/recommend", handler.SwapRecommendRequest{
		Schedule:    sched,
		Staff:       staffList,
		Constraints: cons,
		Date:        "2026-03-10",
		StaffID:     staffList[0].ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp handler.SwapRecommendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Recommendations) == 0 {
		t.Error("Expected swap recommendations for free staff")
	}
}

func TestExport_CSVAndTable(t *testing.T) {
	scheduleH := handler.NewScheduleHandler(0, nil, 0)
	exportH := handler.NewExportHandler()

	cons := model.DefaultConstraints()
	cons.SelectedMonth = "2026-03"
	seed := int64(13)
	staffList := testStaff(10)

	genRec := postJSON(t, scheduleH.Generate, "/api/v1/schedule/generate", handler.GenerateRequest{
		Staff: staffList, Constraints: cons, Seed: &seed,
	})
	var genResp handler.GenerateResponse
	if err := json.Unmarshal(genRec.Body.Bytes(), &genResp); err != nil {
		t.Fatal(err)
	}

	csvRec := postJSON(t, exportH.Export, "/api/v1/schedule/export", handler.ExportRequest{
		Schedule: genResp.Schedule,
		Staff:    staffList,
	})
	if csvRec.Code != http.StatusOK {
		t.Fatalf("CSV export failed: %d", csvRec.Code)
	}
	if ct := csvRec.Header().Get("Content-Type"); !strings.Contains(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(csvRec.Body.String(), "date,weekday,staff") {
		t.Error("CSV header missing")
	}

	tableRec := postJSON(t, exportH.Export, "/api/v1/schedule/export", handler.ExportRequest{
		Schedule: genResp.Schedule,
		Staff:    staffList,
		Format:   "table",
	})
	if tableRec.Code != http.StatusOK {
		t.Fatalf("Table export failed: %d", tableRec.Code)
	}
	for _, want := range []string{"日期", "姓名", "2026-03-01"} {
		if !strings.Contains(tableRec.Body.String(), want) {
			t.Errorf("Table output missing %q", want)
		}
	}

	badRec := postJSON(t, exportH.Export, "/api/v1/schedule/export", handler.ExportRequest{
		Schedule: genResp.Schedule,
		Staff:    staffList,
		Format:   "xlsx",
	})
	if badRec.Code != http.StatusBadRequest {
		t.Errorf("Unknown format should fail, got %d", badRec.Code)
	}
}
