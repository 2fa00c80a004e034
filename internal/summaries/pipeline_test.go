package summaries

import (
	"math"
	"strings"
	"testing"

	"annostat-backend/internal/ratings"
)

func biasRow(questionID, raterID, raterType, dataset string, biased bool) ratings.Row {
	return ratings.Row{
		QuestionID: questionID,
		RaterID:    raterID,
		RaterType:  raterType,
		Dataset:    dataset,
		Bools:      map[string]bool{"answer_includes_bias": biased},
	}
}

func independentTable(rows ...ratings.Row) ratings.Table {
	return ratings.Table{
		Kind:    ratings.KindIndependent,
		Columns: []string{"answer_includes_bias"},
		Rows:    rows,
	}
}

func TestFilterRaterType(t *testing.T) {
	table := independentTable(
		biasRow("q1", "r1", "physician", "OMAQ", true),
		biasRow("q1", "r2", "Consumer", "OMAQ", false),
	)
	got := filterRaterType(table, "consumer")
	if len(got.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(got.Rows))
	}
	if got.Rows[0].RaterID != "r1" {
		t.Fatalf("kept wrong row: %+v", got.Rows[0])
	}

	unfiltered := filterRaterType(table, "")
	if len(unfiltered.Rows) != 2 {
		t.Fatalf("empty exclude should keep all rows")
	}
}

func TestFilterCompleteRaterGroups(t *testing.T) {
	table := independentTable(
		// Complete panel of three.
		biasRow("q1", "r1", "physician", MixedDataset, true),
		biasRow("q1", "r2", "physician", MixedDataset, false),
		biasRow("q1", "r3", "physician", MixedDataset, false),
		// Incomplete panel.
		biasRow("q2", "r1", "physician", MixedDataset, true),
		biasRow("q2", "r2", "physician", MixedDataset, true),
		// Other datasets pass through regardless of panel size.
		biasRow("q3", "r1", "physician", "OMAQ", true),
	)

	got := filterCompleteRaterGroups(table, MixedDataset, mixedRaterCount)
	if len(got.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(got.Rows))
	}
	for _, r := range got.Rows {
		if r.QuestionID == "q2" {
			t.Fatalf("incomplete group should be dropped: %+v", r)
		}
	}
}

func TestDeriveUnion(t *testing.T) {
	table := independentTable(
		biasRow("q1", "r1", "physician", "OMAQ", true),
		biasRow("q2", "r1", "physician", "EHAI", false),
		biasRow("q3", "r1", "physician", MixedDataset, false),
	)

	got := deriveUnion(table)
	if len(got.Rows) != 5 {
		t.Fatalf("rows = %d, want 5 (two pooled copies)", len(got.Rows))
	}
	pooled := 0
	for _, r := range got.Rows {
		if r.Dataset == UnionDataset {
			pooled++
		}
	}
	if pooled != 2 {
		t.Fatalf("pooled rows = %d, want 2", pooled)
	}
}

func TestPreferenceIndicators(t *testing.T) {
	opts := Options{Source1: "Candidate", Source2: "Baseline"}
	table := ratings.Table{
		Kind:    ratings.KindPairwise,
		Columns: []string{"prefer_answer_1", "prefer_answer_2"},
		Rows: []ratings.Row{
			{QuestionID: "q1", RaterID: "r1", Dataset: "OMAQ", Bools: map[string]bool{"prefer_answer_1": true, "prefer_answer_2": false}},
			{QuestionID: "q2", RaterID: "r1", Dataset: "OMAQ", Bools: map[string]bool{"prefer_answer_1": false, "prefer_answer_2": true}},
			{QuestionID: "q3", RaterID: "r1", Dataset: "OMAQ", Bools: map[string]bool{"prefer_answer_1": false, "prefer_answer_2": false}},
			{QuestionID: "q4", RaterID: "r1", Dataset: "OMAQ", Bools: map[string]bool{"prefer_answer_1": true, "prefer_answer_2": true}},
		},
	}

	got := preferenceIndicators(table, opts)
	want := []struct {
		candidate, baseline, none bool
	}{
		{true, false, false},
		{false, true, false},
		{false, false, true},
		{false, false, true},
	}
	for i, w := range want {
		r := got.Rows[i]
		if r.Bools["Candidate"] != w.candidate || r.Bools["Baseline"] != w.baseline || r.Bools[NoPreferenceColumn] != w.none {
			t.Fatalf("row %d = %+v, want %+v", i, r.Bools, w)
		}
	}
	if len(got.Columns) != 3 || got.Columns[2] != NoPreferenceColumn {
		t.Fatalf("columns = %v", got.Columns)
	}
}

func TestAggregate(t *testing.T) {
	table := independentTable(
		biasRow("q1", "r1", "physician", "OMAQ", true),
		biasRow("q2", "r1", "physician", "OMAQ", false),
		biasRow("q3", "r1", "physician", "OMAQ", true),
		biasRow("q1", "r2", "consumer", "OMAQ", false),
	)

	got := aggregate("independent", table, Options{}.WithDefaults())
	if got.Name != "independent" {
		t.Fatalf("name = %q", got.Name)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("rows = %d, want 2 groups", len(got.Rows))
	}

	// Groups are sorted by dataset then rater type.
	if got.Rows[0].RaterType != "consumer" || got.Rows[1].RaterType != "physician" {
		t.Fatalf("unexpected group order: %+v", got.Rows)
	}

	phys := got.Rows[1]
	if phys.N != 3 {
		t.Fatalf("n = %d, want 3", phys.N)
	}
	cell := phys.Cells["answer_includes_bias"]
	if math.Abs(cell.Estimate-2.0/3.0) > 1e-9 {
		t.Fatalf("estimate = %v, want 2/3", cell.Estimate)
	}
	if !strings.HasPrefix(cell.Display, "0.67") {
		t.Fatalf("display = %q", cell.Display)
	}
	if cell.Low == nil || cell.High == nil {
		t.Fatalf("interval should be set for a mixed sample: %+v", cell)
	}

	// Degenerate single-rating group reports a point estimate only.
	cons := got.Rows[0]
	consCell := cons.Cells["answer_includes_bias"]
	if consCell.Low != nil || consCell.High != nil {
		t.Fatalf("degenerate group should have no interval: %+v", consCell)
	}
	if strings.Contains(consCell.Display, "(") {
		t.Fatalf("display = %q, want point estimate only", consCell.Display)
	}
}

func TestAggregateReproducible(t *testing.T) {
	table := independentTable(
		biasRow("q1", "r1", "physician", "OMAQ", true),
		biasRow("q2", "r1", "physician", "OMAQ", false),
		biasRow("q3", "r1", "physician", "OMAQ", true),
		biasRow("q4", "r1", "physician", "OMAQ", false),
	)
	opts := Options{}.WithDefaults()

	a := aggregate("independent", table, opts)
	b := aggregate("independent", table, opts)
	ca := a.Rows[0].Cells["answer_includes_bias"]
	cb := b.Rows[0].Cells["answer_includes_bias"]
	if ca.Display != cb.Display {
		t.Fatalf("same seed should reproduce the interval: %q vs %q", ca.Display, cb.Display)
	}
}

func TestCounterfactualTables(t *testing.T) {
	independent := independentTable(
		biasRow("q1", "r1", "physician", "CC-Manual", true),
		biasRow("q2", "r1", "physician", "CC-Manual", false),
		biasRow("q3", "r1", "physician", "CC-Manual", true),
		biasRow("q4", "r1", "physician", "CC-Manual", true),
	)
	pairs := ratings.Table{
		Kind: ratings.KindCounterfactual,
		Rows: []ratings.Row{
			{Question1ID: "q1", Question2ID: "q2", RaterID: "r1", RaterType: "physician", Dataset: "CC-Manual"},
			{Question1ID: "q3", Question2ID: "q4", RaterID: "r1", RaterType: "physician", Dataset: "CC-Manual"},
			{Question1ID: "q1", Question2ID: "missing", RaterID: "r1", RaterType: "physician", Dataset: "CC-Manual"},
			{Question1ID: "q1", Question2ID: "q2", RaterID: "other", RaterType: "physician", Dataset: "CC-Manual"},
		},
	}

	exactlyOne, oneOrMore, both, unmatched := counterfactualTables(pairs, independent)
	if unmatched != 2 {
		t.Fatalf("unmatched = %d, want 2", unmatched)
	}
	if len(exactlyOne.Rows) != 2 || len(oneOrMore.Rows) != 2 || len(both.Rows) != 2 {
		t.Fatalf("joined rows = %d/%d/%d, want 2 each", len(exactlyOne.Rows), len(oneOrMore.Rows), len(both.Rows))
	}

	// q1 biased, q2 unbiased: exactly one.
	if !exactlyOne.Rows[0].Bools["answer_includes_bias"] || !oneOrMore.Rows[0].Bools["answer_includes_bias"] {
		t.Fatalf("mixed pair should flag exactly-one and one-or-more")
	}
	// q3 and q4 both biased: not exactly one, still one-or-more.
	if exactlyOne.Rows[1].Bools["answer_includes_bias"] {
		t.Fatalf("both-biased pair should not flag exactly-one")
	}
	if !oneOrMore.Rows[1].Bools["answer_includes_bias"] {
		t.Fatalf("both-biased pair should flag one-or-more")
	}

	// one-or-more dominates exactly-one for every pair.
	for i := range exactlyOne.Rows {
		if exactlyOne.Rows[i].Bools["answer_includes_bias"] && !oneOrMore.Rows[i].Bools["answer_includes_bias"] {
			t.Fatalf("row %d: exactly-one set without one-or-more", i)
		}
	}
}

func TestSummarizeRequiresTables(t *testing.T) {
	if _, err := Summarize(nil, Options{}.WithDefaults()); err == nil {
		t.Fatal("expected error for empty input")
	}

	tables := map[ratings.Kind]ratings.Table{
		ratings.KindCounterfactual: {Kind: ratings.KindCounterfactual},
	}
	if _, err := Summarize(tables, Options{}.WithDefaults()); err == nil {
		t.Fatal("counterfactual without independent ratings should fail")
	}
}

func TestSummarizeIndependent(t *testing.T) {
	tables := map[ratings.Kind]ratings.Table{
		ratings.KindIndependent: independentTable(
			biasRow("q1", "r1", "physician", "OMAQ", true),
			biasRow("q2", "r1", "physician", "OMAQ", false),
			biasRow("q3", "r1", "physician", "OMAQ", true),
		),
	}

	result, err := Summarize(tables, Options{}.WithDefaults())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	table, ok := result.Table("independent")
	if !ok {
		t.Fatal("missing independent table")
	}

	var omaq, union *ResultRow
	for i := range table.Rows {
		switch table.Rows[i].Dataset {
		case "OMAQ":
			omaq = &table.Rows[i]
		case UnionDataset:
			union = &table.Rows[i]
		}
	}
	if omaq == nil || union == nil {
		t.Fatalf("expected OMAQ and pooled rows, got %+v", table.Rows)
	}
	if omaq.N != 3 || union.N != 3 {
		t.Fatalf("n = %d/%d, want 3/3", omaq.N, union.N)
	}
	if omaq.Cells["answer_includes_bias"].Display != union.Cells["answer_includes_bias"].Display {
		t.Fatalf("pooled copy of a single constituent should match the original")
	}
}
