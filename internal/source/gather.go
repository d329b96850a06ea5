package source

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// query is one named part of a results payload.
type query struct {
	name  string
	fetch func(ctx context.Context) error
}

// gatherParts runs the queries concurrently and returns the names of the
// ones that failed, in query order. A failed part leaves its section of the
// payload empty; the rest still render.
func gatherParts(ctx context.Context, log *slog.Logger, season string, queries []query) []string {
	errs := make([]error, len(queries))
	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			errs[i] = q.fetch(ctx)
			return nil
		})
	}
	_ = g.Wait()

	var failed []string
	for i, err := range errs {
		if err != nil {
			log.Warn("results query failed", "season", season, "query", queries[i].name, "error", err)
			failed = append(failed, queries[i].name)
		}
	}
	return failed
}
