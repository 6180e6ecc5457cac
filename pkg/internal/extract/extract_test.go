package extract

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return path
}

func TestExtractTxt(t *testing.T) {
	path := writeFile(t, "story.txt", []byte("once upon a time"))

	got, err := Extract(path, "story.txt")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if got != "once upon a time" {
		t.Errorf("got %q", got)
	}
}

func TestExtractTxtUppercaseExtension(t *testing.T) {
	path := writeFile(t, "story.txt", []byte("hello"))

	// 分发按小写扩展名，大写的原始文件名也要能处理
	if _, err := Extract(path, "STORY.TXT"); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
}

// writeDocx 构造一个最小但完整的 docx（[Content_Types].xml + word/document.xml）.
func writeDocx(t *testing.T, text string) string {
	t.Helper()

	contentTypes := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml"` +
		` ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`</Types>`

	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`

	return writeDocxParts(t, map[string]string{
		"[Content_Types].xml": contentTypes,
		"word/document.xml":   document,
	})
}

// writeDocxParts 把给定条目打成 zip，供构造残缺 docx 用.
func writeDocxParts(t *testing.T, parts map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "story.docx")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create docx: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	for name, data := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}

		if _, err := w.Write([]byte(data)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	return path
}

func TestExtractDocx(t *testing.T) {
	path := writeDocx(t, "from a word file")

	got, err := Extract(path, "story.docx")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if !strings.Contains(got, "from a word file") {
		t.Errorf("extracted text %q does not contain expected content", got)
	}
}

func TestExtractDocxMissingContentTypes(t *testing.T) {
	// zip 里没有 [Content_Types].xml 的残缺 docx 必须以错误收场，不能 panic
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body><w:p><w:r><w:t>x</w:t></w:r></w:p></w:body></w:document>`

	path := writeDocxParts(t, map[string]string{"word/document.xml": document})

	if _, err := Extract(path, "story.docx"); err == nil {
		t.Error("expected error for docx without [Content_Types].xml")
	}
}

func TestExtractDocxGarbage(t *testing.T) {
	path := writeFile(t, "story.docx", []byte("this is not a zip archive"))

	if _, err := Extract(path, "story.docx"); err == nil {
		t.Error("expected error for malformed docx")
	}
}

func TestExtractPDFGarbage(t *testing.T) {
	path := writeFile(t, "story.pdf", []byte("this is not a pdf"))

	if _, err := Extract(path, "story.pdf"); err == nil {
		t.Error("expected error for malformed pdf")
	}
}

func TestExtractUnsupported(t *testing.T) {
	path := writeFile(t, "story.epub", []byte("data"))

	_, err := Extract(path, "story.epub")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	if _, err := Extract(filepath.Join(t.TempDir(), "absent.txt"), "absent.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestIsSupported(t *testing.T) {
	cases := map[string]bool{
		"a.txt":  true,
		"a.TXT":  true,
		"a.docx": true,
		"a.pdf":  true,
		"a.doc":  false,
		"a.epub": false,
		"a":      false,
	}

	for name, want := range cases {
		if got := IsSupported(name); got != want {
			t.Errorf("IsSupported(%q) = %v, want %v", name, got, want)
		}
	}
}
