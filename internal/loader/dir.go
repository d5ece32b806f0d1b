package loader

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds parallel decoding when no limit is given.
const DefaultWorkers = 4

// LoadDir decodes every supported document in dir, at most workers at a time,
// and returns them in path order. The first failure cancels the remaining
// loads.
func LoadDir(ctx context.Context, dir string, workers int) ([]Source, error) {
	paths, err := Discover(dir)
	if err != nil || len(paths) == 0 {
		return nil, err
	}
	return LoadFiles(ctx, paths, workers)
}

// LoadFiles decodes the given files in parallel, keeping their order.
func LoadFiles(ctx context.Context, paths []string, workers int) ([]Source, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	sources := make([]Source, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := LoadFile(path)
			if err != nil {
				return err
			}
			sources[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

// Result is the outcome of loading one file with LoadEach.
type Result struct {
	Path   string
	Source Source
	Err    error
}

// LoadEach decodes every file, at most workers at a time, and reports each
// outcome separately instead of stopping at the first failure.
func LoadEach(ctx context.Context, paths []string, workers int) []Result {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	results := make([]Result, len(paths))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i].Path = path
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Source, results[i].Err = LoadFile(path)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
