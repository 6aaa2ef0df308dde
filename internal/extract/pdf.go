package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF 逐页抽取文本，页内文本块以单个空格连接，按 1..N 页序拼接。
func extractPDF(name string, data []byte) (text string, err error) {
	// pdf 库在部分损坏文件上会 panic，统一转换为 DecodeError。
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &DecodeError{Name: name, Err: fmt.Errorf("pdf reader panic: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &DecodeError{Name: name, Err: err}
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		runs := page.Content().Text
		for j, run := range runs {
			if j > 0 {
				builder.WriteByte(' ')
			}
			builder.WriteString(run.S)
		}
	}

	return builder.String(), nil
}
