// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/internal/repository"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
	"github.com/zhiban/zhiban/pkg/stats"
)

// ScheduleHandler 值班表处理器
type ScheduleHandler struct {
	seed         int64                          // 0表示时间种子
	repo         *repository.ScheduleRepository // 可为nil（未启用数据库）
	historyLimit int
}

// NewScheduleHandler 创建值班表处理器
func NewScheduleHandler(seed int64, repo *repository.ScheduleRepository, historyLimit int) *ScheduleHandler {
	return &ScheduleHandler{seed: seed, repo: repo, historyLimit: historyLimit}
}

// GenerateRequest 值班表生成请求
type GenerateRequest struct {
	Staff       []*model.Staff     `json:"staff"`
	Constraints *model.Constraints `json:"constraints"`

	// Seed 覆盖服务配置的随机种子（用于复现）
	Seed *int64 `json:"seed,omitempty"`

	// Archive 生成后存档为新版本（需要启用数据库）
	Archive bool `json:"archive,omitempty"`
}

// GenerateResponse 值班表生成响应
type GenerateResponse struct {
	Schedule *model.Schedule `json:"schedule"`
	FillRate float64         `json:"fill_rate"`
	Duration string          `json:"duration"`

	// 存档信息（仅Archive时返回）
	ScheduleID string `json:"schedule_id,omitempty"`
	Version    int    `json:"version,omitempty"`
}

// Generate 生成值班表
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if len(req.Staff) == 0 {
		respondError(w, errors.New(errors.CodeInvalidInput, "人员列表不能为空"))
		return
	}
	if req.Constraints == nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "约束配置不能为空"))
		return
	}

	var opts []scheduler.Option
	seed := h.seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	if seed != 0 {
		opts = append(opts, scheduler.WithRand(rand.New(rand.NewSource(seed))))
	}
	gen := scheduler.NewGenerator(opts...)

	start := time.Now()
	sched, err := gen.Generate(req.Staff, req.Constraints)
	duration := time.Since(start)
	month := req.Constraints.SelectedMonth

	metrics.RecordScheduleGeneration(month, err == nil, duration)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "生成值班表失败"))
		return
	}

	coverage := stats.AnalyzeCoverage(sched, req.Constraints)
	metrics.SetFillRate(month, coverage.FillRate)

	resp := GenerateResponse{
		Schedule: sched,
		FillRate: coverage.FillRate,
		Duration: duration.String(),
	}

	if req.Archive {
		if h.repo == nil {
			respondError(w, errors.New(errors.CodeInvalidInput, "未启用数据库，无法存档"))
			return
		}
		consJSON, _ := json.Marshal(req.Constraints)
		rec := &repository.ScheduleRecord{
			Month:       month,
			Schedule:    sched,
			Constraints: consJSON,
			GeneratedAt: start,
		}
		if err := h.repo.Create(r.Context(), rec); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "存档值班表失败"))
			return
		}
		if h.historyLimit > 0 {
			if err := h.repo.PruneHistory(r.Context(), month, h.historyLimit); err != nil {
				respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "清理历史版本失败"))
				return
			}
		}
		resp.ScheduleID = rec.ID.String()
		resp.Version = rec.Version
	}

	respondJSON(w, http.StatusOK, resp)
}

// Latest 获取某月最新存档
func (h *ScheduleHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "未启用数据库，存档不可用"))
		return
	}

	month := r.URL.Query().Get("month")
	if month == "" {
		respondError(w, errors.New(errors.CodeInvalidInput, "缺少month参数"))
		return
	}

	rec, err := h.repo.GetLatest(r.Context(), month)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询存档失败"))
		return
	}
	if rec == nil {
		respondError(w, errors.NotFound("值班表", month))
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// History 列出某月历史版本，DELETE按id删除单个版本
func (h *ScheduleHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "未启用数据库，存档不可用"))
		return
	}

	if r.Method == http.MethodDelete {
		id, err := uuid.Parse(r.URL.Query().Get("id"))
		if err != nil {
			respondError(w, errors.New(errors.CodeInvalidInput, "缺少或非法的id参数"))
			return
		}
		if err := h.repo.Delete(r.Context(), id); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除历史版本失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": id.String()})
		return
	}

	filter := repository.DefaultListFilter()
	if month := r.URL.Query().Get("month"); month != "" {
		filter = filter.WithMonth(month)
	}

	records, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询历史版本失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":   total,
		"records": records,
	})
}
