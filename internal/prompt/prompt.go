package prompt

import (
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

//go:embed templates/span_annotation.txt
var spanAnnotationTemplate string

// NoFindingsMarker is the exact reply expected when the model finds no errors.
const NoFindingsMarker = "None identified"

// Finding is one error span reported by the model.
type Finding struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Label string `json:"label"`
}

var findingPattern = regexp.MustCompile(`^Span (\d+): (.*) \(Label: ([^)]+)\)$`)

// Render fills the span annotation template with the source document, the
// summary under review and its quality score.
func Render(source, summary string, score float64) string {
	return fmt.Sprintf(spanAnnotationTemplate, source, summary, score)
}

// ParseFindings parses a model reply into findings. A reply of exactly
// NoFindingsMarker yields an empty result with no error; any line that is
// neither blank nor a well-formed span line is an error.
func ParseFindings(reply string) ([]Finding, error) {
	trimmed := strings.TrimSpace(reply)
	if trimmed == NoFindingsMarker {
		return nil, nil
	}
	if trimmed == "" {
		return nil, fmt.Errorf("parse findings: empty reply")
	}

	var findings []Finding
	for lineNo, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := findingPattern.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("parse findings: malformed line %d: %q", lineNo+1, line)
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("parse findings: bad span number on line %d: %w", lineNo+1, err)
		}
		findings = append(findings, Finding{
			Index: index,
			Text:  m[2],
			Label: strings.TrimSpace(m[3]),
		})
	}
	return findings, nil
}
