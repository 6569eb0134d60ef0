// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/swap"
)

// SwapHandler 换班处理器
type SwapHandler struct{}

// NewSwapHandler 创建换班处理器
func NewSwapHandler() *SwapHandler {
	return &SwapHandler{}
}

// SwapEvaluateRequest 换班评估请求
type SwapEvaluateRequest struct {
	Schedule    *model.Schedule    `json:"schedule"`
	Staff       []*model.Staff     `json:"staff"`
	Constraints *model.Constraints `json:"constraints"`
	Swap        *swap.Request      `json:"swap"`
}

// Evaluate 评估一次指定的换班
func (h *SwapHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req SwapEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if req.Schedule == nil || req.Constraints == nil || req.Swap == nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "值班表、约束与换班请求都不能为空"))
		return
	}

	result := swap.NewEvaluator(req.Constraints).Evaluate(req.Schedule, req.Staff, req.Swap)
	respondJSON(w, http.StatusOK, result)
}

// SwapRecommendRequest 换班推荐请求
type SwapRecommendRequest struct {
	Schedule    *model.Schedule    `json:"schedule"`
	Staff       []*model.Staff     `json:"staff"`
	Constraints *model.Constraints `json:"constraints"`

	// Date 要让出的值班日，StaffID 原值班人
	Date    string        `json:"date"`
	StaffID uuid.UUID     `json:"staff_id"`
	Options *swap.Options `json:"options,omitempty"`
}

// SwapRecommendResponse 换班推荐响应
type SwapRecommendResponse struct {
	Recommendations []swap.Recommendation `json:"recommendations"`
}

// Recommend 为某人某日的班推荐接班人选
func (h *SwapHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req SwapRecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if req.Schedule == nil || req.Constraints == nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "值班表与约束不能为空"))
		return
	}
	if req.Date == "" || req.StaffID == uuid.Nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "缺少date或staff_id"))
		return
	}

	recs := swap.NewRecommender(req.Constraints).RecommendTargets(
		req.Schedule, req.Staff, req.Date, req.StaffID, req.Options,
	)
	if recs == nil {
		recs = []swap.Recommendation{}
	}
	respondJSON(w, http.StatusOK, SwapRecommendResponse{Recommendations: recs})
}
