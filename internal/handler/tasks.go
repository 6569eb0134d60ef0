// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/internal/repository"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/taskdist"
)

// TaskHandler 任务分配处理器
type TaskHandler struct {
	seed int64
	repo *repository.TaskRepository // 可为nil
}

// NewTaskHandler 创建任务分配处理器
func NewTaskHandler(seed int64, repo *repository.TaskRepository) *TaskHandler {
	return &TaskHandler{seed: seed, repo: repo}
}

// DistributeRequest 任务分配请求
type DistributeRequest struct {
	Month    string                `json:"month"` // YYYY-MM
	Staff    []*model.Staff        `json:"staff"`
	Columns  []model.TaskColumn    `json:"columns"`
	Schedule *model.Schedule       `json:"schedule,omitempty"` // 用于排除前一日值班者
	Current  model.TaskAssignments `json:"current,omitempty"`

	// FillEmptyOnly 只补空缺，已有分配的日期保持不变
	FillEmptyOnly bool   `json:"fill_empty_only,omitempty"`
	Seed          *int64 `json:"seed,omitempty"`

	// Archive 分配后整体存档（需要启用数据库）
	Archive bool `json:"archive,omitempty"`
}

// DistributeResponse 任务分配响应
type DistributeResponse struct {
	Assignments model.TaskAssignments `json:"assignments"`
}

// Distribute 执行任务列分配，列按下标顺序依次处理
func (h *TaskHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req DistributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if len(req.Staff) == 0 {
		respondError(w, errors.New(errors.CodeInvalidInput, "人员列表不能为空"))
		return
	}
	if len(req.Columns) == 0 {
		respondError(w, errors.New(errors.CodeInvalidInput, "任务列不能为空"))
		return
	}
	for i := range req.Columns {
		if err := req.Columns[i].Validate(); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "任务列配置无效"))
			return
		}
	}

	monthStart, err := time.Parse("2006-01", req.Month)
	if err != nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "月份格式无效，应为YYYY-MM"))
		return
	}
	days := monthDays(monthStart)

	var opts []taskdist.Option
	seed := h.seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	if seed != 0 {
		opts = append(opts, taskdist.WithRand(rand.New(rand.NewSource(seed))))
	}
	dist := taskdist.NewDistributor(opts...)

	current := req.Current
	for i, col := range req.Columns {
		current = dist.Distribute(taskdist.Params{
			Days:          days,
			StaffList:     req.Staff,
			Schedule:      req.Schedule,
			Current:       current,
			Column:        col,
			ColumnIndex:   i,
			FillEmptyOnly: req.FillEmptyOnly,
		})
		metrics.RecordTaskDistribution(col.Name, true)
	}

	if req.Archive {
		if h.repo == nil {
			respondError(w, errors.New(errors.CodeInvalidInput, "未启用数据库，无法存档"))
			return
		}
		rec := &repository.TaskRecord{
			Month:       req.Month,
			Columns:     req.Columns,
			Assignments: current,
		}
		if err := h.repo.Save(r.Context(), rec); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "存档任务分配失败"))
			return
		}
	}

	respondJSON(w, http.StatusOK, DistributeResponse{Assignments: current})
}

// GetByMonth 获取某月任务分配存档
func (h *TaskHandler) GetByMonth(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "未启用数据库，存档不可用"))
		return
	}

	month := r.URL.Query().Get("month")
	if month == "" {
		respondError(w, errors.New(errors.CodeInvalidInput, "缺少month参数"))
		return
	}

	rec, err := h.repo.GetByMonth(r.Context(), month)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询任务分配失败"))
		return
	}
	if rec == nil {
		respondError(w, errors.NotFound("任务分配", month))
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// monthDays 返回月份内的全部日期
func monthDays(monthStart time.Time) []time.Time {
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()
	days := make([]time.Time, 0, daysInMonth)
	for d := 0; d < daysInMonth; d++ {
		days = append(days, monthStart.AddDate(0, 0, d))
	}
	return days
}
