// Package ingest turns a folder of text files into a batch of todos.
//
// A run enumerates the folder in natural order, drops files that already
// back an item, reserves one block of task numbers, reads the remaining files
// concurrently, and inserts every readable file in a single atomic batch.
package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/baiirun/minitodo/internal/model"
	"github.com/baiirun/minitodo/internal/todo"
)

// Request is the input to Run.
type Request struct {
	Folder     string
	ClearFirst bool
}

// Skip records a file that was not turned into an item.
type Skip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result is the outcome of a successful run. Created is in ascending task
// number order.
type Result struct {
	Folder     string       `json:"folder"`
	Found      int          `json:"found"`
	Cleared    int64        `json:"cleared"`
	Duplicates []string     `json:"duplicates"`
	Skipped    []Skip       `json:"skipped"`
	Created    []model.Item `json:"created"`
}

// Pipeline runs bulk ingestion against an item service.
type Pipeline struct {
	todos       *todo.Service
	log         zerolog.Logger
	concurrency int
	exclude     []string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConcurrency caps the number of concurrent file reads.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) { p.concurrency = n }
}

// WithExclude skips files and directories matching any doublestar pattern.
func WithExclude(patterns ...string) Option {
	return func(p *Pipeline) { p.exclude = append(p.exclude, patterns...) }
}

// New returns a Pipeline that writes through todos.
func New(todos *todo.Service, logger zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		todos:       todos,
		log:         logger,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run ingests req.Folder.
//
// Fatal: a missing or unreadable folder, nothing left after duplicate
// filtering, nothing readable, or a failed commit. A file that cannot be read
// or is blank is skipped; its task number is still consumed.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if req.Folder == "" {
		return Result{}, fmt.Errorf("folder path is required: %w", model.ErrInvalidArgument)
	}

	res := Result{Folder: req.Folder}

	if req.ClearFirst {
		n, err := p.todos.ClearAll(ctx)
		if err != nil {
			return Result{}, err
		}
		res.Cleared = n
	}

	files, err := Enumerate(req.Folder, p.exclude)
	if err != nil {
		return Result{}, err
	}
	res.Found = len(files)
	if len(files) == 0 {
		return Result{}, &model.NothingToProcessError{Folder: req.Folder}
	}

	known, err := p.todos.Duplicates().Paths(ctx)
	if err != nil {
		return Result{}, err
	}
	candidates := make([]string, 0, len(files))
	for _, f := range files {
		if known.Has(f) {
			res.Duplicates = append(res.Duplicates, f)
			continue
		}
		candidates = append(candidates, f)
	}
	if len(candidates) == 0 {
		return Result{}, &model.NothingToProcessError{Folder: req.Folder, Found: len(files), Duplicates: len(res.Duplicates)}
	}
	if len(res.Duplicates) > 0 {
		p.log.Warn().
			Int("processing", len(candidates)).
			Int("duplicates", len(res.Duplicates)).
			Msg("skipping files that already have tasks")
	}

	start, err := p.todos.Sequencer().Next(ctx)
	if err != nil {
		return Result{}, err
	}

	p.log.Debug().Int("files", len(candidates)).Msg("reading files")
	reads, err := readAll(ctx, candidates, p.concurrency)
	if err != nil {
		return Result{}, model.IOError("failed to read files", err)
	}

	now := p.todos.Now()
	drafts := make([]*model.Item, 0, len(reads))
	for i, r := range reads {
		if r.reason != "" {
			res.Skipped = append(res.Skipped, Skip{Path: r.path, Reason: r.reason})
			p.log.Warn().Str("path", r.path).Str("reason", r.reason).Msg("skipping file")
			continue
		}
		taskNumber := start + int64(i)
		item := model.NewItem(
			todo.TaskTitle(taskNumber, r.path),
			todo.TaskDescription(taskNumber, r.content),
			model.Ptr(r.path),
			model.Ptr(taskNumber),
			now,
		)
		drafts = append(drafts, &item)
	}
	if len(drafts) == 0 {
		return Result{}, &model.NothingToProcessError{
			Folder:     req.Folder,
			Found:      len(files),
			Duplicates: len(res.Duplicates),
			Skipped:    len(res.Skipped),
		}
	}

	err = p.todos.Store().CreateItems(ctx, drafts, func(item *model.Item) {
		item.Description = todo.FinalizeDescription(item.Description, item.ID)
	})
	if err != nil {
		return Result{}, fmt.Errorf("commit %d todos: %w", len(drafts), err)
	}

	res.Created = make([]model.Item, len(drafts))
	for i, d := range drafts {
		res.Created[i] = *d
	}

	p.log.Info().
		Str("folder", req.Folder).
		Int("created", len(res.Created)).
		Int("skipped", len(res.Skipped)).
		Int("duplicates", len(res.Duplicates)).
		Msg("bulk ingest complete")

	return res, nil
}
