// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/zhiban/zhiban/pkg/errors"
)

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}
