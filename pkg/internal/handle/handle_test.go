package handle

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// newMultipartContext 构造携带指定文件字段的 multipart 请求上下文.
func newMultipartContext(t *testing.T, fileFields map[string]string) *gin.Context {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for field, filename := range fileFields {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file %s: %v", field, err)
		}

		if _, err := fw.Write([]byte("data")); err != nil {
			t.Fatalf("write form file %s: %v", field, err)
		}
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", &body)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())

	return c
}

// 文件字段名必须与前端表单一致：封面 thumbnail、正文 content、头像 file.
func TestFormUploadFieldNames(t *testing.T) {
	c := newMultipartContext(t, map[string]string{
		"thumbnail": "cover.png",
		"content":   "story.txt",
		"file":      "me.png",
	})

	cases := map[string]string{
		fieldThumbnail: "cover.png",
		fieldContent:   "story.txt",
		fieldPicture:   "me.png",
	}

	for field, wantName := range cases {
		up, err := formUpload(c, field)
		if err != nil {
			t.Fatalf("formUpload(%q) failed: %v", field, err)
		}

		if up == nil || up.Name != wantName {
			t.Errorf("formUpload(%q) = %+v, want file %q", field, up, wantName)
		}
	}
}

func TestFormUploadMissingField(t *testing.T) {
	// 表单里只有别的字段名，目标字段按缺失处理而不是报错
	c := newMultipartContext(t, map[string]string{"photo": "cover.png"})

	up, err := formUpload(c, fieldThumbnail)
	if err != nil {
		t.Fatalf("formUpload failed: %v", err)
	}

	if up != nil {
		t.Errorf("unexpected upload %+v for absent field", up)
	}
}
