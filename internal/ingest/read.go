package ingest

import (
	"context"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency caps how many files are read at once.
const DefaultConcurrency = 16

type readResult struct {
	path    string
	content string
	reason  string // set when the file is skipped
}

// readAll reads every path concurrently. Each goroutine owns one slot of the
// result slice, so there is nothing to lock. Per-file failures become skip
// reasons; only context cancellation aborts the whole read.
func readAll(ctx context.Context, paths []string, limit int) ([]readResult, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]readResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = readOne(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func readOne(path string) readResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return readResult{path: path, reason: err.Error()}
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return readResult{path: path, reason: "empty file"}
	}
	return readResult{path: path, content: content}
}
