// Package swap 提供换班评估与推荐
//
// 值班表生成后难免有临时变动（突发请假、会议冲突），换班评估器
// 在不重新生成整表的前提下，判断把某天的班交给另一人是否可行
package swap

import (
	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/validator"
)

// Request 换班请求
type Request struct {
	// Date 要让出的值班日
	Date string `json:"date"`
	// FromStaffID 原值班人
	FromStaffID uuid.UUID `json:"from_staff_id"`
	// ToStaffID 接班人
	ToStaffID uuid.UUID `json:"to_staff_id"`

	// ExchangeDate 非空时为互换：接班人在该日的班交还给原值班人
	ExchangeDate string `json:"exchange_date,omitempty"`
}

// Issue 换班问题
type Issue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"` // error/warning
	Message  string `json:"message"`
}

// Evaluation 换班评估结果
type Evaluation struct {
	Feasible       bool    `json:"feasible"`
	Score          float64 `json:"score"` // 0-100
	Issues         []Issue `json:"issues"`
	Recommendation string  `json:"recommendation"`
}

// Evaluator 换班评估器
type Evaluator struct {
	cons     *model.Constraints
	detector *validator.ConflictDetector
}

// NewEvaluator 创建换班评估器
func NewEvaluator(cons *model.Constraints) *Evaluator {
	return &Evaluator{
		cons:     cons,
		detector: validator.NewConflictDetector(cons),
	}
}

// Evaluate 评估换班可行性：模拟换班后的值班表并做冲突检测
func (e *Evaluator) Evaluate(sched *model.Schedule, staffList []*model.Staff, req *Request) *Evaluation {
	result := &Evaluation{Feasible: true, Score: 100, Issues: []Issue{}}

	from := findStaff(staffList, req.FromStaffID)
	to := findStaff(staffList, req.ToStaffID)
	if from == nil || to == nil {
		return infeasible(result, "invalid_request", "换班双方必须都在人员名单中")
	}
	if !sched.AssignedOn(req.Date, from.ID) {
		return infeasible(result, "not_assigned", from.Name+" 在 "+req.Date+" 没有值班")
	}
	if sched.AssignedOn(req.Date, to.ID) {
		return infeasible(result, "already_assigned", to.Name+" 当日已在值班")
	}
	if req.ExchangeDate != "" {
		if !sched.AssignedOn(req.ExchangeDate, to.ID) {
			return infeasible(result, "not_assigned", to.Name+" 在 "+req.ExchangeDate+" 没有值班")
		}
		if sched.AssignedOn(req.ExchangeDate, from.ID) {
			return infeasible(result, "already_assigned", from.Name+" 在互换日已在值班")
		}
	}

	simulated := simulate(sched, req)
	for _, c := range e.detector.DetectAll(simulated, staffList) {
		if c.StaffID != from.ID && c.StaffID != to.ID {
			continue
		}
		result.Issues = append(result.Issues, Issue{
			Type:     string(c.Type),
			Severity: c.Severity,
			Message:  c.Message,
		})
		if c.Severity == "error" {
			result.Feasible = false
		} else {
			result.Score -= 10
		}
	}
	if !result.Feasible {
		result.Score = 0
		result.Recommendation = "存在硬约束冲突，不建议换班"
		return result
	}

	// 接班人超出公平目标时降低推荐度
	if detail := sched.TargetDetails[to.ID]; detail != nil {
		newCount := len(simulated.DatesFor(to.ID))
		if target := int(detail.RawTarget + 0.5); target > 0 && newCount > target {
			result.Score -= 15
			result.Issues = append(result.Issues, Issue{
				Type:     "over_target",
				Severity: "warning",
				Message:  to.Name + " 换班后将超出公平目标",
			})
		}
	}

	if result.Score < 0 {
		result.Score = 0
	}
	result.Recommendation = recommendation(result.Score)
	return result
}

// CanSwap 快速可行性检查
func (e *Evaluator) CanSwap(sched *model.Schedule, staffList []*model.Staff, req *Request) (bool, string) {
	result := e.Evaluate(sched, staffList, req)
	if !result.Feasible {
		if len(result.Issues) > 0 {
			return false, result.Issues[len(result.Issues)-1].Message
		}
		return false, "无法换班"
	}
	return true, ""
}

// simulate 返回应用换班后的值班表副本（只复制分配，诊断数据共享）
func simulate(sched *model.Schedule, req *Request) *model.Schedule {
	sim := model.NewSchedule(sched.Month)
	sim.TargetDetails = sched.TargetDetails
	for date, ids := range sched.Days {
		copied := make([]uuid.UUID, len(ids))
		copy(copied, ids)
		sim.Days[date] = copied
	}

	replace(sim.Days[req.Date], req.FromStaffID, req.ToStaffID)
	if req.ExchangeDate != "" {
		replace(sim.Days[req.ExchangeDate], req.ToStaffID, req.FromStaffID)
	}
	return sim
}

func replace(ids []uuid.UUID, from, to uuid.UUID) {
	for i, id := range ids {
		if id == from {
			ids[i] = to
			return
		}
	}
}

func findStaff(staffList []*model.Staff, id uuid.UUID) *model.Staff {
	for _, st := range staffList {
		if st.ID == id {
			return st
		}
	}
	return nil
}

func infeasible(result *Evaluation, typ, message string) *Evaluation {
	result.Feasible = false
	result.Score = 0
	result.Issues = append(result.Issues, Issue{Type: typ, Severity: "error", Message: message})
	result.Recommendation = "无法换班：" + message
	return result
}

func recommendation(score float64) string {
	switch {
	case score >= 90:
		return "推荐换班，对整体排班无影响"
	case score >= 70:
		return "可以换班，存在少量软性问题"
	case score >= 50:
		return "谨慎换班，会影响排班公平性"
	default:
		return "不推荐，换班会明显降低排班质量"
	}
}
