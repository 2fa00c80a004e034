package summaries

import (
	"sort"
	"strings"

	"annostat-backend/internal/ratings"
	"annostat-backend/internal/stats"
)

const (
	// UnionDataset is the derived dataset that pools every constituent below.
	UnionDataset = "EquityMedQA"
	// MixedDataset requires a complete rater panel per question before its
	// rows are aggregated.
	MixedDataset = "Mixed MMQA-OMAQ"
	// NoPreferenceColumn is the derived pairwise column for raters that
	// preferred neither answer.
	NoPreferenceColumn = "no preference"

	mixedRaterCount = 3
)

// UnionConstituents are the datasets pooled into UnionDataset.
var UnionConstituents = []string{
	"OMAQ",
	"EHAI",
	"FBRT-Manual",
	"FBRT-LLM",
	"TRINDS",
	"CC-Manual",
	"CC-LLM",
}

func isUnionConstituent(dataset string) bool {
	for _, d := range UnionConstituents {
		if d == dataset {
			return true
		}
	}
	return false
}

// filterRaterType drops rows whose rater type matches exclude.
func filterRaterType(t ratings.Table, exclude string) ratings.Table {
	if exclude == "" {
		return t
	}
	out := ratings.Table{Kind: t.Kind, Columns: t.Columns}
	for _, r := range t.Rows {
		if !strings.EqualFold(r.RaterType, exclude) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// filterCompleteRaterGroups keeps rows of the given dataset only when their
// (question, rater type) group has exactly want raters. Rows of other
// datasets pass through untouched.
func filterCompleteRaterGroups(t ratings.Table, dataset string, want int) ratings.Table {
	type groupKey struct {
		questionID string
		raterType  string
	}

	counts := make(map[groupKey]int)
	for _, r := range t.Rows {
		if r.Dataset != dataset || r.QuestionID == "" {
			continue
		}
		counts[groupKey{r.QuestionID, r.RaterType}]++
	}

	out := ratings.Table{Kind: t.Kind, Columns: t.Columns}
	for _, r := range t.Rows {
		if r.Dataset == dataset && r.QuestionID != "" {
			if counts[groupKey{r.QuestionID, r.RaterType}] != want {
				continue
			}
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

// deriveUnion appends a relabeled copy of every constituent row so the pooled
// dataset aggregates alongside the originals.
func deriveUnion(t ratings.Table) ratings.Table {
	out := ratings.Table{Kind: t.Kind, Columns: t.Columns}
	out.Rows = append(out.Rows, t.Rows...)
	for _, r := range t.Rows {
		if !isUnionConstituent(r.Dataset) {
			continue
		}
		pooled := r
		pooled.Dataset = UnionDataset
		out.Rows = append(out.Rows, pooled)
	}
	return out
}

// prepare applies the shared row filters and the union derivation.
func prepare(t ratings.Table, opts Options) ratings.Table {
	t = filterRaterType(t, opts.ExcludeRaterType)
	t = filterCompleteRaterGroups(t, MixedDataset, mixedRaterCount)
	return deriveUnion(t)
}

// preferenceIndicators rewrites a pairwise table into three mutually
// exclusive indicator columns named after the two sources.
func preferenceIndicators(t ratings.Table, opts Options) ratings.Table {
	out := ratings.Table{
		Kind:    t.Kind,
		Columns: []string{opts.Source1, opts.Source2, NoPreferenceColumn},
	}
	for _, r := range t.Rows {
		prefer1 := r.Bools["prefer_answer_1"]
		prefer2 := r.Bools["prefer_answer_2"]
		row := r
		row.Bools = map[string]bool{
			opts.Source1:       prefer1 && !prefer2,
			opts.Source2:       prefer2 && !prefer1,
			NoPreferenceColumn: prefer1 == prefer2,
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// aggregate groups rows by (dataset, rater type) and computes the mean and
// bootstrap interval of every column.
func aggregate(name string, t ratings.Table, opts Options) ResultTable {
	type groupKey struct {
		dataset   string
		raterType string
	}

	groups := make(map[groupKey][]ratings.Row)
	for _, r := range t.Rows {
		k := groupKey{r.Dataset, r.RaterType}
		groups[k] = append(groups[k], r)
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].dataset != keys[j].dataset {
			return keys[i].dataset < keys[j].dataset
		}
		return keys[i].raterType < keys[j].raterType
	})

	table := ResultTable{Name: name, Columns: t.Columns}
	for _, k := range keys {
		rows := groups[k]
		out := ResultRow{
			Dataset:   k.dataset,
			RaterType: k.raterType,
			N:         len(rows),
			Cells:     make(map[string]Cell, len(t.Columns)),
		}
		for _, col := range t.Columns {
			values := make([]bool, len(rows))
			for i, r := range rows {
				values[i] = r.Bools[col]
			}
			samples := stats.BoolSamples(values)
			estimate := stats.Mean(samples)
			iv := stats.BootstrapCI(samples, stats.Mean, stats.Options{
				Resamples: opts.Resamples,
				Seed:      opts.Seed,
			})
			out.Cells[col] = FormatCell(estimate, iv)
		}
		table.Rows = append(table.Rows, out)
	}
	return table
}
