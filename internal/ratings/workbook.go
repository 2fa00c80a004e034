package ratings

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var workbookSheets = []Kind{KindIndependent, KindPairwise, KindCounterfactual}

// ReadWorkbook parses an xlsx workbook carrying one sheet per rubric. Sheet
// names are matched case-insensitively against the rubric kinds and at least
// one recognized sheet is required.
func ReadWorkbook(r io.Reader) (map[Kind]Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrInvalidInput, err)
	}
	defer f.Close()

	out := make(map[Kind]Table)
	for _, sheet := range f.GetSheetList() {
		kind, ok := sheetKind(sheet)
		if !ok {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: read sheet %q: %v", ErrInvalidInput, sheet, err)
		}
		table, err := FromRows(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		out[kind] = table
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no recognized rubric sheets in workbook", ErrInvalidInput)
	}
	return out, nil
}

func sheetKind(sheet string) (Kind, bool) {
	for _, k := range workbookSheets {
		if strings.EqualFold(strings.TrimSpace(sheet), string(k)) {
			return k, true
		}
	}
	return "", false
}
