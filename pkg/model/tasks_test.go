package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestTaskColumn_Validate(t *testing.T) {
	tests := []struct {
		name    string
		column  TaskColumn
		wantErr bool
	}{
		{"有效配置", TaskColumn{Name: "手术", MaxPerDay: 2}, false},
		{"席位数为0", TaskColumn{Name: "门诊", MaxPerDay: 0}, true},
		{"星期超界", TaskColumn{Name: "门诊", MaxPerDay: 1, TargetWeekdays: []int{7}}, true},
		{"资历超界", TaskColumn{Name: "门诊", MaxPerDay: 1, EligibleSeniorities: []int{11}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.column.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTaskColumn_MatchesWeekday(t *testing.T) {
	all := TaskColumn{MaxPerDay: 1}
	if !all.MatchesWeekday(0) || !all.MatchesWeekday(6) {
		t.Error("Empty target weekdays should match every weekday")
	}

	weekdaysOnly := TaskColumn{MaxPerDay: 1, TargetWeekdays: []int{1, 2, 3, 4, 5}}
	if weekdaysOnly.MatchesWeekday(0) {
		t.Error("Sunday should not match a weekday-only column")
	}
	if !weekdaysOnly.MatchesWeekday(3) {
		t.Error("Wednesday should match a weekday-only column")
	}
}

func TestTaskAssignments_CloneIsolation(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	orig := TaskAssignments{}
	orig.Set("2026-03-02", 0, []uuid.UUID{id1})

	clone := orig.Clone()
	clone.Set("2026-03-02", 0, []uuid.UUID{id2})
	clone.Set("2026-03-03", 1, []uuid.UUID{id2})

	// 副本的改动不能影响原表
	if got := orig.Get("2026-03-02", 0); len(got) != 1 || got[0] != id1 {
		t.Errorf("Original mutated through clone: %v", got)
	}
	if orig.Get("2026-03-03", 1) != nil {
		t.Error("New date in clone leaked into original")
	}
}

func TestTaskAssignments_AssignedElsewhere(t *testing.T) {
	id := uuid.New()
	tasks := TaskAssignments{}
	tasks.Set("2026-03-02", 0, []uuid.UUID{id})

	if !tasks.AssignedElsewhere("2026-03-02", 1, id) {
		t.Error("Staff in column 0 should be elsewhere for column 1")
	}
	if tasks.AssignedElsewhere("2026-03-02", 0, id) {
		t.Error("Own column should not count as elsewhere")
	}
	if tasks.AssignedElsewhere("2026-03-03", 1, id) {
		t.Error("Different date should not count")
	}
}

func TestTaskAssignments_Delete(t *testing.T) {
	id := uuid.New()
	tasks := TaskAssignments{}
	tasks.Set("2026-03-02", 0, []uuid.UUID{id})
	tasks.Set("2026-03-02", 1, []uuid.UUID{id})

	tasks.Delete("2026-03-02", 0)
	if tasks.Get("2026-03-02", 0) != nil {
		t.Error("Deleted column should be empty")
	}
	if tasks.Get("2026-03-02", 1) == nil {
		t.Error("Other column should survive delete")
	}
}
