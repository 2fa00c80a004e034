package summaries

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteResultCSV writes every result table in long form: one line per
// (table, group, column) cell.
func WriteResultCSV(w io.Writer, result *Result) error {
	cw := csv.NewWriter(w)
	header := []string{"table", "dataset", "rater_type", "n", "column", "estimate", "ci_low", "ci_high", "display"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, table := range result.Tables {
		for _, row := range table.Rows {
			for _, col := range table.Columns {
				cell, ok := row.Cells[col]
				if !ok {
					continue
				}
				record := []string{
					table.Name,
					row.Dataset,
					row.RaterType,
					strconv.Itoa(row.N),
					col,
					formatFloat(cell.Estimate),
					formatFloatPtr(cell.Low),
					formatFloatPtr(cell.High),
					cell.Display,
				}
				if err := cw.Write(record); err != nil {
					return err
				}
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write result csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
