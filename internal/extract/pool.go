package extract

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/scan"
)

// RunPool drains candidates (as produced by internal/scan.Scan) through
// Extract using a bounded worker pool, feeding every successful Result
// into builder and collecting every extraction Warning. workers <= 0
// means unbounded. Callers are responsible for draining the scanner's
// own Warning channel separately; RunPool only consumes Candidates.
//
// Extraction order across workers is not guaranteed; FactIndex.Build
// re-sorts classes and dedups edges afterward, so the pipeline's final
// output is deterministic regardless of worker count.
func RunPool(ctx context.Context, candidates <-chan scan.Candidate, builder *factindex.Builder, workers int) []Warning {
	var extractWarnings []Warning
	warnCh := make(chan Warning, 16)

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	done := make(chan struct{})
	go func() {
		for w := range warnCh {
			extractWarnings = append(extractWarnings, w)
		}
		close(done)
	}()

	for c := range candidates {
		c := c
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			result, warn := Extract(c.Data, c.Location)
			if warn != nil {
				warnCh <- *warn
				return nil
			}
			builder.AddClass(result.Class, result.Methods, result.Fields, result.Edges)
			return nil
		})
	}

	_ = g.Wait()
	close(warnCh)
	<-done

	return extractWarnings
}
