// Package service 实现业务逻辑层，处理故事、用户与稍后阅读的核心流程.
package service

import (
	"github.com/yeisme/bacasendiri/pkg/internal/model"
)

const (
	// 截断时为标记预留的空间
	truncateReserve       = 50
	truncateMarker        = "...[CONTENT TRUNCATED]"
	truncateSafetyReserve = 25
	truncateSafetyMarker  = "...[TRUNCATED]"
)

// ContentPolicyResult 正文入库策略的结果.
type ContentPolicyResult struct {
	Text           string
	WasTruncated   bool
	OriginalLength int
}

// EnforceContentLimit 将提取出的正文收敛到入库上限内.
// 超限时截到上限减 50 再追加截断标记；若结果仍超限（理论上不会，
// 防御多字节边界情况），再截到上限减 25 追加短标记.
// 纯函数，幂等：已在上限内的文本原样返回.
func EnforceContentLimit(text string) ContentPolicyResult {
	runes := []rune(text)
	original := len(runes)

	if original <= model.MaxContentLength {
		return ContentPolicyResult{Text: text, WasTruncated: false, OriginalLength: original}
	}

	out := string(runes[:model.MaxContentLength-truncateReserve]) + truncateMarker

	if outRunes := []rune(out); len(outRunes) > model.MaxContentLength {
		out = string(outRunes[:model.MaxContentLength-truncateSafetyReserve]) + truncateSafetyMarker
	}

	return ContentPolicyResult{Text: out, WasTruncated: true, OriginalLength: original}
}
