// Package types 定义请求/响应结构与统一的业务错误类型.
package types

import (
	"errors"
	"net/http"
)

// 业务错误码，随响应体返回给客户端.
const (
	CodeMissingToken      = "MISSING_TOKEN"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeUnauthenticated   = "UNAUTHENTICATED"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeMissingData       = "MISSING_DATA"
	CodeValidation        = "VALIDATION_ERROR"
	CodeAlreadyExists     = "ALREADY_EXISTS"
	CodeExtractionFailed  = "EXTRACTION_FAILED"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeStorageError      = "STORAGE_ERROR"
	CodeServerError       = "SERVER_ERROR"
)

// APIError 业务错误，携带 HTTP 状态码与业务错误码，handler 层据此生成响应.
type APIError struct {
	HTTPStatus int
	Code       string
	Message    string
	Err        error // 底层原因，仅用于日志
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError 构造业务错误.
func NewAPIError(status int, code, message string, err error) *APIError {
	return &APIError{HTTPStatus: status, Code: code, Message: message, Err: err}
}

// ErrUnauthenticated 401：缺失、非法或过期的凭证.
func ErrUnauthenticated(code, message string) *APIError {
	return NewAPIError(http.StatusUnauthorized, code, message, nil)
}

// ErrForbidden 403：已认证但无权操作.
func ErrForbidden(message string) *APIError {
	return NewAPIError(http.StatusForbidden, CodeForbidden, message, nil)
}

// ErrNotFound 404.
func ErrNotFound(message string) *APIError {
	return NewAPIError(http.StatusNotFound, CodeNotFound, message, nil)
}

// ErrValidation 400：请求数据缺失或非法.
func ErrValidation(code, message string) *APIError {
	return NewAPIError(http.StatusBadRequest, code, message, nil)
}

// ErrConflict 409：唯一性冲突.
func ErrConflict(code, message string) *APIError {
	return NewAPIError(http.StatusConflict, code, message, nil)
}

// ErrExtraction 400：正文文件无法解析.
func ErrExtraction(message string, err error) *APIError {
	return NewAPIError(http.StatusBadRequest, CodeExtractionFailed, message, err)
}

// ErrStorage 500：文件落盘/对象存储失败.
func ErrStorage(message string, err error) *APIError {
	return NewAPIError(http.StatusInternalServerError, CodeStorageError, message, err)
}

// ErrServer 500：其它内部错误.
func ErrServer(message string, err error) *APIError {
	return NewAPIError(http.StatusInternalServerError, CodeServerError, message, err)
}

// AsAPIError 将任意错误规整为 APIError，未知错误归为 500.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	return ErrServer("internal server error", err)
}
