// Package extract 从上传的正文文件中提取纯文本，按扩展名分发：
// .txt 直接读取，.docx 走 docconv，.pdf 走 pdf 解析器.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedFormat 扩展名不在支持列表内.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// SupportedExtensions 支持的正文文件扩展名.
var SupportedExtensions = []string{".txt", ".docx", ".pdf"}

// IsSupported 判断文件名的扩展名是否受支持.
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}

	return false
}

// Extract 从 path 处的文件提取文本，originalName 决定解析方式.
// 只读取文件，不产生任何副作用.
func Extract(path, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))

	switch ext {
	case ".txt":
		return extractTxt(path)
	case ".docx":
		return extractDocx(path)
	case ".pdf":
		return extractPDF(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func extractTxt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read txt: %w", err)
	}

	return string(data), nil
}

func extractDocx(path string) (text string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	// 解析器对缺少 [Content_Types].xml 等残缺包会 panic，统一转为解析错误
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("parse docx: %v", r)
		}
	}()

	text, _, err = docconv.ConvertDocx(f)
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	return text, nil
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return buf.String(), nil
}
