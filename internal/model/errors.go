package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced id, file, or folder does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned for malformed or missing input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict is returned when a uniqueness key is already taken.
	ErrConflict = errors.New("conflict")
	// ErrEmptyContent is returned when a source file is blank after trimming.
	ErrEmptyContent = errors.New("empty content")
	// ErrIOFailure wraps storage and filesystem errors that fit no other kind.
	ErrIOFailure = errors.New("io failure")
)

// Kind names an error category for callers that render failures as text.
type Kind string

const (
	KindNotFound        Kind = "NotFound"
	KindInvalidArgument Kind = "InvalidArgument"
	KindConflict        Kind = "Conflict"
	KindEmptyContent    Kind = "EmptyContent"
	KindIOFailure       Kind = "IOFailure"
)

// KindOf classifies err. Anything unrecognized is an IOFailure.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrEmptyContent):
		return KindEmptyContent
	default:
		return KindIOFailure
	}
}

// IOError wraps err so that it matches ErrIOFailure while keeping the cause.
func IOError(op string, err error) error {
	return &ioError{op: op, err: err}
}

type ioError struct {
	op  string
	err error
}

func (e *ioError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *ioError) Unwrap() []error {
	return []error{ErrIOFailure, e.err}
}

// NothingToProcessError is returned by bulk ingestion when no file is left to
// turn into an item. Found is the number of files enumerated, Duplicates how
// many were already tracked, Skipped how many could not be read or were blank.
type NothingToProcessError struct {
	Folder     string
	Found      int
	Duplicates int
	Skipped    int
}

func (e *NothingToProcessError) Error() string {
	switch {
	case e.Found == 0:
		return fmt.Sprintf("no files found in directory: %s", e.Folder)
	case e.Duplicates == e.Found:
		return fmt.Sprintf("no valid files to process: %d files already have tasks", e.Duplicates)
	default:
		return fmt.Sprintf("no valid files to process after filtering: %d files skipped", e.Skipped)
	}
}

func (e *NothingToProcessError) Unwrap() error {
	return ErrInvalidArgument
}

// AllFilesAlreadyProcessed reports whether files existed but every one was a duplicate.
func (e *NothingToProcessError) AllFilesAlreadyProcessed() bool {
	return e.Found > 0 && e.Duplicates == e.Found
}
