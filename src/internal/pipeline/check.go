package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/VectorBits/clearsign/src/internal/checker"
)

// CheckResult pairs a descriptor path with its report. Err is set when the
// file could not be checked at all (missing or malformed).
type CheckResult struct {
	Path   string
	Report *checker.Report
	Err    error
}

// CheckAll checks paths concurrently; results keep input order.
func CheckAll(ctx context.Context, c *checker.Checker, paths []string, concurrency int) ([]CheckResult, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]CheckResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = CheckResult{Path: path, Err: err}
				return err
			}
			rep, err := c.CheckFile(gctx, path)
			results[i] = CheckResult{Path: path, Report: rep, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
