package extract

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXlsx renders each sheet as a "Sheet: <name>" header followed by one
// line per row with cells joined by ", ", blank line between sheets.
func extractXlsx(name string, data []byte) (string, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", &DecodeError{Name: name, Err: err}
	}
	defer workbook.Close()

	var builder strings.Builder
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return "", &DecodeError{Name: name, Err: err}
		}

		builder.WriteString("Sheet: ")
		builder.WriteString(sheet)
		builder.WriteByte('\n')
		for _, row := range rows {
			builder.WriteString(strings.Join(row, ", "))
			builder.WriteByte('\n')
		}
		builder.WriteByte('\n')
	}

	return builder.String(), nil
}
