// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/internal/repository"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
)

// StaffHandler 人员管理处理器，依赖数据库
type StaffHandler struct {
	repo *repository.StaffRepository
}

// NewStaffHandler 创建人员管理处理器
func NewStaffHandler(repo *repository.StaffRepository) *StaffHandler {
	return &StaffHandler{repo: repo}
}

// Handle 按方法分发：GET列出、POST创建、PUT更新、DELETE删除
func (h *StaffHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "未启用数据库，人员管理不可用"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodPut:
		h.update(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

func (h *StaffHandler) list(w http.ResponseWriter, r *http.Request) {
	staffList, err := h.repo.List(r.Context())
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询人员列表失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total": len(staffList),
		"staff": staffList,
	})
}

func (h *StaffHandler) create(w http.ResponseWriter, r *http.Request) {
	var st model.Staff
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	if err := st.Validate(); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeValidationFail, "人员数据无效"))
		return
	}
	if err := h.repo.Create(r.Context(), &st); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建人员失败"))
		return
	}
	respondJSON(w, http.StatusCreated, &st)
}

func (h *StaffHandler) update(w http.ResponseWriter, r *http.Request) {
	var st model.Staff
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if err := st.Validate(); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeValidationFail, "人员数据无效"))
		return
	}
	if err := h.repo.Update(r.Context(), &st); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新人员失败"))
		return
	}
	respondJSON(w, http.StatusOK, &st)
}

func (h *StaffHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的人员ID"))
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除人员失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": id})
}
