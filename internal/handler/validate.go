// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/validator"
)

// ValidateHandler 值班表校验处理器
type ValidateHandler struct{}

// NewValidateHandler 创建校验处理器
func NewValidateHandler() *ValidateHandler {
	return &ValidateHandler{}
}

// ValidateRequest 校验请求
type ValidateRequest struct {
	Schedule    *model.Schedule    `json:"schedule"`
	Staff       []*model.Staff     `json:"staff"`
	Constraints *model.Constraints `json:"constraints"`
}

// ValidateResponse 校验响应
type ValidateResponse struct {
	Valid     bool                 `json:"valid"` // 无error级冲突
	Conflicts []validator.Conflict `json:"conflicts"`
}

// Validate 校验值班表是否满足约束（用于手工调整或导入的值班表）
func (h *ValidateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if req.Schedule == nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "值班表不能为空"))
		return
	}
	if req.Constraints == nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "约束配置不能为空"))
		return
	}

	conflicts := validator.NewConflictDetector(req.Constraints).DetectAll(req.Schedule, req.Staff)
	if conflicts == nil {
		conflicts = []validator.Conflict{}
	}
	respondJSON(w, http.StatusOK, ValidateResponse{
		Valid:     !validator.HasErrors(conflicts),
		Conflicts: conflicts,
	})
}
