package ratings

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheets map[string][][]string) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("new sheet: %v", err)
			}
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = v
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestReadWorkbook(t *testing.T) {
	r := buildWorkbook(t, map[string][][]string{
		"Independent": {
			{"question_id", "rater_id", "rater_type", "dataset", "answer_includes_bias"},
			{"q1", "r1", "physician", "OMAQ", "1"},
		},
		"pairwise": {
			{"question_id", "rater_id", "rater_type", "dataset", "prefer_answer_1", "prefer_answer_2"},
			{"q1", "r1", "physician", "OMAQ", "1", "0"},
		},
		"Notes": {
			{"free", "text"},
		},
	})

	tables, err := ReadWorkbook(r)
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("tables = %d, want 2", len(tables))
	}
	ind, ok := tables[KindIndependent]
	if !ok || len(ind.Rows) != 1 {
		t.Fatalf("missing independent table: %+v", tables)
	}
	if !ind.Rows[0].Bools["answer_includes_bias"] {
		t.Fatalf("unexpected bools: %+v", ind.Rows[0].Bools)
	}
	if _, ok := tables[KindPairwise]; !ok {
		t.Fatalf("sheet name matching should be case-insensitive")
	}
}

func TestReadWorkbookNoRecognizedSheets(t *testing.T) {
	r := buildWorkbook(t, map[string][][]string{
		"Notes": {{"free", "text"}},
	})
	_, err := ReadWorkbook(r)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestReadWorkbookBadSheet(t *testing.T) {
	r := buildWorkbook(t, map[string][][]string{
		"independent": {
			{"question_id", "rater_id", "rater_type", "dataset", "answer_includes_bias"},
			{"q1", "r1", "physician", "OMAQ", "maybe"},
		},
	})
	_, err := ReadWorkbook(r)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestReadWorkbookNotXLSX(t *testing.T) {
	_, err := ReadWorkbook(bytes.NewReader([]byte("not a workbook")))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
