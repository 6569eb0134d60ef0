// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/export"
	"github.com/zhiban/zhiban/pkg/model"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// ExportRequest 导出请求
type ExportRequest struct {
	Schedule *model.Schedule `json:"schedule"`
	Staff    []*model.Staff  `json:"staff"`

	// Format csv或table，默认csv
	Format string `json:"format,omitempty"`

	// 任务分配导出（可选，仅csv）
	Tasks   model.TaskAssignments `json:"tasks,omitempty"`
	Columns []model.TaskColumn    `json:"columns,omitempty"`
}

// Export 导出值班表
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if req.Schedule == nil && req.Tasks == nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "值班表与任务分配至少提供一项"))
		return
	}

	switch req.Format {
	case "table":
		if req.Schedule == nil {
			respondError(w, errors.New(errors.CodeInvalidInput, "表格导出需要值班表"))
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(export.ScheduleTable(req.Schedule, req.Staff)))
		w.Write([]byte("\n\n"))
		w.Write([]byte(export.SummaryTable(req.Schedule, req.Staff)))

	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		if req.Tasks != nil {
			if err := export.TasksCSV(w, req.Tasks, req.Columns, req.Staff); err != nil {
				respondError(w, errors.Wrap(err, errors.CodeInternal, "导出任务分配失败"))
			}
			return
		}
		if err := export.ScheduleCSV(w, req.Schedule, req.Staff); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInternal, "导出值班表失败"))
		}

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的导出格式: "+req.Format))
	}
}
