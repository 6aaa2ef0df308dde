package extract_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hamzasiddiq/dost-ai/backend/internal/extract"
)

func TestExtractText(t *testing.T) {
	content := "hello knowledge base"
	var progress []int

	text, err := extract.Extract("notes.txt", strings.NewReader(content), int64(len(content)), func(percent int) {
		progress = append(progress, percent)
	})
	if err != nil {
		t.Fatalf("Extract err: %v", err)
	}
	if text != content {
		t.Fatalf("unexpected text: %q", text)
	}

	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Fatalf("progress must end at 100, got %v", progress)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress must be monotonic, got %v", progress)
		}
	}
}

func TestExtractUnsupportedExtension(t *testing.T) {
	_, err := extract.Extract("archive.zip", strings.NewReader("x"), 1, nil)

	var unsupported *extract.UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
	if unsupported.Ext != "zip" {
		t.Fatalf("error must carry the raw extension, got %q", unsupported.Ext)
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	junk := []byte("this is not a pdf at all")

	_, err := extract.Extract("broken.pdf", bytes.NewReader(junk), int64(len(junk)), nil)

	var decodeErr *extract.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Name != "broken.pdf" {
		t.Fatalf("error must name the failing file, got %q", decodeErr.Name)
	}
}

func TestExtractXlsxRendering(t *testing.T) {
	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	workbook.SetCellValue(sheet, "A1", "name")
	workbook.SetCellValue(sheet, "B1", "city")
	workbook.SetCellValue(sheet, "A2", "Hamza")
	workbook.SetCellValue(sheet, "B2", "Lahore")

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	data := buf.Bytes()

	text, err := extract.Extract("people.xlsx", bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		t.Fatalf("Extract err: %v", err)
	}

	if !strings.HasPrefix(text, "Sheet: "+sheet+"\n") {
		t.Fatalf("missing sheet header, got %q", text)
	}
	if !strings.Contains(text, "name, city\n") {
		t.Fatalf("rows must join cells with \", \", got %q", text)
	}
	if !strings.Contains(text, "Hamza, Lahore\n") {
		t.Fatalf("missing data row, got %q", text)
	}
}

func TestFormatForName(t *testing.T) {
	cases := map[string]bool{
		"a.txt":    true,
		"b.PDF":    true,
		"c.docx":   true,
		"d.xlsx":   true,
		"e.md":     false,
		"noext":    false,
		"f.tar.gz": false,
	}

	for name, ok := range cases {
		_, err := extract.FormatForName(name)
		if ok && err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
		if !ok && err == nil {
			t.Errorf("%s: expected UnsupportedFormatError", name)
		}
	}
}
