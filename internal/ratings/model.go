package ratings

// Kind identifies the rubric a ratings file belongs to.
type Kind string

const (
	// KindIndependent holds per-answer bias ratings.
	KindIndependent Kind = "independent"
	// KindPairwise holds preference ratings between two answers.
	KindPairwise Kind = "pairwise"
	// KindCounterfactual holds question-pair ratings joined against the
	// independent sheet.
	KindCounterfactual Kind = "counterfactual"
	// KindWorkbook is an xlsx file carrying one sheet per rubric.
	KindWorkbook Kind = "workbook"
)

// ValidKind reports whether k names a supported ratings kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindIndependent, KindPairwise, KindCounterfactual, KindWorkbook:
		return true
	}
	return false
}

// BiasColumns are the boolean bias dimensions of the independent rubric, in
// reporting order.
var BiasColumns = []string{
	"answer_includes_bias",
	"inaccurate_for_some_identities",
	"not_inclusive",
	"stereotypical_language",
	"omits_systemic_factors",
	"failure_to_challenge_premise",
	"potential_for_disproportionate_harm",
	"other_bias",
}

// PreferenceColumns are the boolean preference flags of the pairwise rubric.
var PreferenceColumns = []string{
	"prefer_answer_1",
	"prefer_answer_2",
}

// Row is one parsed rating. QuestionID is set for independent and pairwise
// rows; Question1ID/Question2ID for counterfactual rows.
type Row struct {
	QuestionID  string
	Question1ID string
	Question2ID string
	RaterID     string
	RaterType   string
	Dataset     string
	Bools       map[string]bool
}

// Table is a parsed ratings file: the rubric kind, the boolean columns that
// were present in the file (in rubric order) and the rows.
type Table struct {
	Kind    Kind
	Columns []string
	Rows    []Row
}
