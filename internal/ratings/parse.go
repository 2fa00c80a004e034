package ratings

import (
	"fmt"
	"strings"
)

// FromRows builds a Table of the given kind from raw cell rows, the first of
// which must be the header. Column names are matched case-insensitively and
// unknown columns are ignored.
func FromRows(kind Kind, rows [][]string) (Table, error) {
	if kind == KindWorkbook {
		return Table{}, fmt.Errorf("%w: workbook is a container, not a rubric", ErrInvalidInput)
	}
	if !ValidKind(kind) {
		return Table{}, fmt.Errorf("%w: unknown ratings kind %q", ErrInvalidInput, kind)
	}
	if len(rows) == 0 {
		return Table{}, fmt.Errorf("%w: missing header row", ErrInvalidInput)
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[normalizeColumn(name)] = i
	}

	for _, required := range requiredColumns(kind) {
		if _, ok := header[required]; !ok {
			return Table{}, fmt.Errorf("%w: missing required column %q", ErrInvalidInput, required)
		}
	}

	boolCols := presentBoolColumns(kind, header)
	switch kind {
	case KindIndependent:
		if len(boolCols) == 0 {
			return Table{}, fmt.Errorf("%w: no bias columns found", ErrInvalidInput)
		}
	case KindPairwise:
		if len(boolCols) != len(PreferenceColumns) {
			return Table{}, fmt.Errorf("%w: both preference columns are required", ErrInvalidInput)
		}
	}

	table := Table{Kind: kind, Columns: boolCols}
	for rowNo, raw := range rows[1:] {
		if blankRow(raw) {
			continue
		}

		cell := func(name string) string {
			idx, ok := header[name]
			if !ok || idx >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[idx])
		}

		row := Row{
			RaterID:   cell("rater_id"),
			RaterType: cell("rater_type"),
			Dataset:   cell("dataset"),
			Bools:     make(map[string]bool, len(boolCols)),
		}
		switch kind {
		case KindCounterfactual:
			row.Question1ID = cell("question_1_id")
			row.Question2ID = cell("question_2_id")
			if row.Question1ID == "" || row.Question2ID == "" {
				return Table{}, fmt.Errorf("%w: row %d missing question pair ids", ErrInvalidInput, rowNo+2)
			}
		default:
			row.QuestionID = cell("question_id")
			if row.QuestionID == "" {
				return Table{}, fmt.Errorf("%w: row %d missing question_id", ErrInvalidInput, rowNo+2)
			}
		}

		for _, col := range boolCols {
			v, err := parseBool(cell(col))
			if err != nil {
				return Table{}, fmt.Errorf("%w: row %d column %q: %v", ErrInvalidInput, rowNo+2, col, err)
			}
			row.Bools[col] = v
		}

		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func requiredColumns(kind Kind) []string {
	switch kind {
	case KindCounterfactual:
		return []string{"question_1_id", "question_2_id", "rater_id", "rater_type", "dataset"}
	default:
		return []string{"question_id", "rater_id", "rater_type", "dataset"}
	}
}

func knownBoolColumns(kind Kind) []string {
	switch kind {
	case KindPairwise:
		return PreferenceColumns
	case KindCounterfactual:
		return nil
	default:
		return BiasColumns
	}
}

func presentBoolColumns(kind Kind, header map[string]int) []string {
	var cols []string
	for _, name := range knownBoolColumns(kind) {
		if _, ok := header[name]; ok {
			cols = append(cols, name)
		}
	}
	return cols
}

// parseBool accepts the cell encodings seen in exported rating sheets. An
// empty cell counts as false.
func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no":
		return false, nil
	case "1", "true", "yes":
		return true, nil
	}
	return false, fmt.Errorf("unrecognized boolean value %q", v)
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
