package types

// Response 统一响应包络.
type Response struct {
	Status  bool   `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK 成功响应.
func OK(message string, data any) Response {
	return Response{Status: true, Message: message, Data: data}
}

// Fail 失败响应.
func Fail(code, message string) Response {
	return Response{Status: false, Code: code, Message: message}
}
