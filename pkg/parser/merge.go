package parser

import "github.com/ccollicutt/logweave/pkg/model"

// MergeResult is the deduplicated union of the visible files' lines.
type MergeResult struct {
	// Lines in file order, then sequence order.
	Lines []model.Line

	// Duplicates is the number of lines dropped because their hash was seen.
	Duplicates int
}

// Merge concatenates the lines of visible files and keeps the first
// occurrence of each content hash. Nil analyses are skipped.
func Merge(analyses []*FileAnalysis) MergeResult {
	total := 0
	for _, a := range analyses {
		if a != nil && a.File.Visible {
			total += len(a.Lines)
		}
	}

	res := MergeResult{Lines: make([]model.Line, 0, total)}
	seen := make(map[string]struct{}, total)

	for _, a := range analyses {
		if a == nil || !a.File.Visible {
			continue
		}
		for _, line := range a.Lines {
			if _, dup := seen[line.Hash]; dup {
				res.Duplicates++
				continue
			}
			seen[line.Hash] = struct{}{}
			res.Lines = append(res.Lines, line)
		}
	}

	return res
}
