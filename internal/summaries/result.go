package summaries

// Cell is one aggregated value: the point estimate, the bootstrap interval
// when one exists, and the formatted display string.
type Cell struct {
	Estimate float64  `json:"estimate"`
	Low      *float64 `json:"low,omitempty"`
	High     *float64 `json:"high,omitempty"`
	Display  string   `json:"display"`
}

// ResultRow is one (dataset, rater type) group with its aggregated cells.
type ResultRow struct {
	Dataset   string          `json:"dataset"`
	RaterType string          `json:"raterType"`
	N         int             `json:"n"`
	Cells     map[string]Cell `json:"cells"`
}

// ResultTable is one summary table: its name, the cell columns in reporting
// order and the group rows.
type ResultTable struct {
	Name    string      `json:"name"`
	Columns []string    `json:"columns"`
	Rows    []ResultRow `json:"rows"`
}

// Result is the full output of a summary run.
type Result struct {
	Tables         []ResultTable `json:"tables"`
	UnmatchedPairs int           `json:"unmatchedPairs,omitempty"`
}

// Table returns the named result table.
func (r *Result) Table(name string) (ResultTable, bool) {
	if r == nil {
		return ResultTable{}, false
	}
	for _, t := range r.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return ResultTable{}, false
}
