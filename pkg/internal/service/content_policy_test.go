package service

import (
	"strings"
	"testing"

	"github.com/yeisme/bacasendiri/pkg/internal/model"
)

func TestEnforceContentLimitShortText(t *testing.T) {
	res := EnforceContentLimit("hello")

	if res.WasTruncated {
		t.Error("short text must not be truncated")
	}

	if res.Text != "hello" || res.OriginalLength != 5 {
		t.Errorf("got %+v", res)
	}
}

func TestEnforceContentLimitExactLimit(t *testing.T) {
	text := strings.Repeat("a", model.MaxContentLength)

	res := EnforceContentLimit(text)
	if res.WasTruncated {
		t.Error("text at exactly the limit must not be truncated")
	}
}

func TestEnforceContentLimitOverLimit(t *testing.T) {
	text := strings.Repeat("a", 70000)

	res := EnforceContentLimit(text)

	if !res.WasTruncated {
		t.Fatal("expected truncation")
	}

	if res.OriginalLength != 70000 {
		t.Errorf("original length = %d, want 70000", res.OriginalLength)
	}

	if got := len([]rune(res.Text)); got > model.MaxContentLength {
		t.Errorf("stored length %d exceeds limit", got)
	}

	if !strings.HasSuffix(res.Text, "...[CONTENT TRUNCATED]") {
		t.Errorf("missing truncation marker, tail: %q", res.Text[len(res.Text)-30:])
	}
}

func TestEnforceContentLimitIdempotent(t *testing.T) {
	text := strings.Repeat("b", model.MaxContentLength+1)

	first := EnforceContentLimit(text)
	second := EnforceContentLimit(first.Text)

	if second.WasTruncated {
		t.Error("second application must be a no-op")
	}

	if second.Text != first.Text {
		t.Error("second application changed the text")
	}
}

func TestEnforceContentLimitMultibyte(t *testing.T) {
	text := strings.Repeat("好", model.MaxContentLength+100)

	res := EnforceContentLimit(text)

	if !res.WasTruncated {
		t.Fatal("expected truncation")
	}

	if got := len([]rune(res.Text)); got > model.MaxContentLength {
		t.Errorf("stored rune length %d exceeds limit", got)
	}
}
