package extract

import (
	"bytes"
	"strings"

	"github.com/fumiama/go-docx"
)

// extractDocx 抽取整篇文档的原始文本。
func extractDocx(name string, data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &DecodeError{Name: name, Err: err}
	}

	var builder strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch block := item.(type) {
		case *docx.Paragraph:
			builder.WriteString(block.String())
			builder.WriteByte('\n')
		case *docx.Table:
			builder.WriteString(block.String())
			builder.WriteByte('\n')
		}
	}

	return builder.String(), nil
}
