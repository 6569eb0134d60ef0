// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/stats"
)

// StatsHandler 统计分析处理器
type StatsHandler struct {
	fairness *stats.FairnessAnalyzer
}

// NewStatsHandler 创建统计分析处理器
func NewStatsHandler() *StatsHandler {
	return &StatsHandler{fairness: stats.NewFairnessAnalyzer()}
}

// AnalyzeRequest 统计分析请求
type AnalyzeRequest struct {
	Schedule    *model.Schedule    `json:"schedule"`
	Staff       []*model.Staff     `json:"staff"`
	Constraints *model.Constraints `json:"constraints,omitempty"`
}

// AnalyzeResponse 统计分析响应
type AnalyzeResponse struct {
	Fairness *stats.FairnessMetrics `json:"fairness"`
	Coverage *stats.CoverageReport  `json:"coverage,omitempty"`
}

// Analyze 分析值班表的公平性与覆盖率
func (h *StatsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if req.Schedule == nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "值班表不能为空"))
		return
	}
	if len(req.Staff) == 0 {
		respondError(w, errors.New(errors.CodeInvalidInput, "人员列表不能为空"))
		return
	}

	resp := AnalyzeResponse{
		Fairness: h.fairness.Analyze(req.Schedule, req.Staff),
	}
	if req.Constraints != nil {
		resp.Coverage = stats.AnalyzeCoverage(req.Schedule, req.Constraints)
	}

	metrics.SetFairnessGini(req.Schedule.Month, "shifts", resp.Fairness.ShiftGini)
	metrics.SetFairnessGini(req.Schedule.Month, "weekend", resp.Fairness.WeekendGini)

	respondJSON(w, http.StatusOK, resp)
}
