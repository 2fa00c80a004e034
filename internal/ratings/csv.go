package ratings

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV parses a single-rubric ratings CSV.
func ReadCSV(kind Kind, r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("%w: read csv: %v", ErrInvalidInput, err)
	}
	return FromRows(kind, rows)
}
