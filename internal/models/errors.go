package models

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrTranscription    = errors.New("transcription failed")
	ErrReportGeneration = errors.New("report generation failed")
	ErrEmptyInput       = errors.New("no notes in report window")
	ErrNoteNotFound     = errors.New("note not found")
	ErrNotSignedIn      = errors.New("not signed in")
)

// UserError is an error carrying a message meant for the end user
type UserError interface {
	error
	UserMessage() string
}

// PermissionError means audio capture was refused by the source
type PermissionError struct {
	Message string
	Err     error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%v: %v", ErrPermissionDenied, e.Err)
}

func (e *PermissionError) Unwrap() []error { return []error{ErrPermissionDenied, e.Err} }
func (e *PermissionError) UserMessage() string { return e.Message }

// TranscriptionError means no note could be built from the model response
type TranscriptionError struct {
	Message string
	Err     error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("%v: %v", ErrTranscription, e.Err)
}

func (e *TranscriptionError) Unwrap() []error { return []error{ErrTranscription, e.Err} }
func (e *TranscriptionError) UserMessage() string { return e.Message }

// ReportGenerationError means no report could be built from the model response
type ReportGenerationError struct {
	Message string
	Err     error
}

func (e *ReportGenerationError) Error() string {
	return fmt.Sprintf("%v: %v", ErrReportGeneration, e.Err)
}

func (e *ReportGenerationError) Unwrap() []error { return []error{ErrReportGeneration, e.Err} }
func (e *ReportGenerationError) UserMessage() string { return e.Message }

// EmptyInputError is returned before any model call when a report window has no notes
type EmptyInputError struct {
	Message string
	Period  Period
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%v (%s)", ErrEmptyInput, e.Period)
}

func (e *EmptyInputError) Unwrap() error { return ErrEmptyInput }
func (e *EmptyInputError) UserMessage() string { return e.Message }

// PersistError reports that an in-memory change was applied but the store write failed
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist after %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
