// Package scenario discovers scenario markers in log lines and searches them
// by name.
package scenario

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/ccollicutt/logweave/pkg/model"
)

var (
	scenarioPattern = regexp.MustCompile(`\[Scenario\](\S*)`)
	stepPattern     = regexp.MustCompile(`\[step\]\((\d*)\)(.*)`)
)

// Step is the first line seen for a scenario.
type Step struct {
	Name       string    `json:"name"`
	Step       string    `json:"step"`
	StepNumber int       `json:"step_number"`
	LineHash   string    `json:"line_hash"`
	Timestamp  time.Time `json:"timestamp,omitzero"`
}

// Index holds one entry per scenario name in first-seen order.
type Index struct {
	steps []Step
}

// Parse extracts the scenario marker of a single line.
func Parse(line *model.Line) (Step, bool) {
	m := scenarioPattern.FindStringSubmatch(line.Text)
	if m == nil {
		return Step{}, false
	}

	s := Step{
		Name:      m[1],
		LineHash:  line.Hash,
		Timestamp: line.Timestamp,
	}
	if sm := stepPattern.FindStringSubmatch(line.Text); sm != nil {
		s.StepNumber, _ = strconv.Atoi(sm[1])
		s.Step = sm[2]
	}
	return s, true
}

// NewIndex builds an index over lines.
func NewIndex(lines []model.Line) *Index {
	idx := &Index{}
	seen := make(map[string]bool)
	for i := range lines {
		s, ok := Parse(&lines[i])
		if !ok || seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		idx.steps = append(idx.steps, s)
	}
	return idx
}

// All returns every scenario in first-seen order.
func (idx *Index) All() []Step {
	return idx.steps
}

// Len returns the number of scenarios. It also makes Index a fuzzy.Source.
func (idx *Index) Len() int {
	return len(idx.steps)
}

// String returns the name of the i-th scenario.
func (idx *Index) String(i int) string {
	return idx.steps[i].Name
}

// Search returns scenarios whose names fuzzy-match query, best match first.
// An empty query returns all scenarios.
func (idx *Index) Search(query string) []Step {
	query = strings.TrimSpace(query)
	if query == "" {
		return idx.All()
	}

	matches := fuzzy.FindFrom(query, idx)
	out := make([]Step, 0, len(matches))
	for _, m := range matches {
		out = append(out, idx.steps[m.Index])
	}
	return out
}
