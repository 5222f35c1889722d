package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dslipak/pdf"
	"github.com/extrame/xls"
)

// ExtractPDFText returns the plain text of every page of a PDF document.
func ExtractPDFText(data []byte) (text string, err error) {
	// the reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return string(b), nil
}

const maxXLSRows = 100000

// ReadXLS returns the cells of the first sheet of a legacy Excel workbook.
func ReadXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "cp1252")
	if err != nil {
		return nil, fmt.Errorf("failed to open XLS: %w", err)
	}
	return wb.ReadAllCells(maxXLSRows), nil
}
