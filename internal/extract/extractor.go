// Package extract 将上传的文档转换为纯文本，供知识库使用。
package extract

import (
	"io"
	"path/filepath"
	"strings"
)

// Format 枚举受支持的文档格式。
type Format int

const (
	FormatText Format = iota
	FormatPDF
	FormatDocx
	FormatXlsx
)

// FormatForName resolves the extraction format from the file extension.
// Unknown extensions are an explicit error, not a default branch.
func FormatForName(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "txt":
		return FormatText, nil
	case "pdf":
		return FormatPDF, nil
	case "docx":
		return FormatDocx, nil
	case "xlsx":
		return FormatXlsx, nil
	default:
		return 0, &UnsupportedFormatError{Ext: ext}
	}
}

// Extract 读取整个文件内容并按格式解码为纯文本。
// 读取阶段通过 onProgress 汇报 0-100 的字节进度。
func Extract(name string, r io.Reader, size int64, onProgress ProgressFunc) (string, error) {
	format, err := FormatForName(name)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(newProgressReader(r, size, onProgress))
	if err != nil {
		return "", &DecodeError{Name: name, Err: err}
	}
	if onProgress != nil {
		onProgress(100)
	}

	switch format {
	case FormatText:
		return string(data), nil
	case FormatPDF:
		return extractPDF(name, data)
	case FormatDocx:
		return extractDocx(name, data)
	case FormatXlsx:
		return extractXlsx(name, data)
	}

	// FormatForName 已经拒绝了未知扩展名。
	return "", &UnsupportedFormatError{Ext: strings.TrimPrefix(filepath.Ext(name), ".")}
}
