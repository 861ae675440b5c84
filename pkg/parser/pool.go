package parser

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// AnalyzeAll analyzes files concurrently and returns the analyses in input
// order. Each task writes only its own slot. Cancellation is checked before a
// task starts; a started analysis always runs to completion.
func (p *Parser) AnalyzeAll(ctx context.Context, files []*File) ([]*FileAnalysis, error) {
	results := make([]*FileAnalysis, len(files))

	g, ctx := errgroup.WithContext(ctx)
	if p.workers > 0 {
		g.SetLimit(p.workers)
	}

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = p.Analyze(f)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
