package pdf

import (
	"errors"
	"fmt"
)

// ErrorKind classifies generation failures so the HTTP layer can tell
// retryable environment problems apart from data problems.
type ErrorKind string

const (
	// KindMissingAsset: the base document or a required static asset is
	// absent. Raised before any browser is launched.
	KindMissingAsset ErrorKind = "missing_asset"

	// KindRenderTimeout: one HTML to PDF conversion exceeded its bound.
	KindRenderTimeout ErrorKind = "render_timeout"

	// KindRenderProcess: the browser failed to launch or crashed.
	// Retryable by the caller.
	KindRenderProcess ErrorKind = "render_process"

	// KindMerge: page copy or overlay stamping failed. Happens after
	// the browser is already released.
	KindMerge ErrorKind = "merge"
)

// GenerateError is the single structured error returned from Assemble.
type GenerateError struct {
	Kind  ErrorKind
	Stage string // which assembly stage failed
	Page  string // which page was being produced, when applicable
	Err   error
}

func (e *GenerateError) Error() string {
	if e.Page != "" {
		return fmt.Sprintf("pdf generation failed (%s) at stage %s, page %s: %v", e.Kind, e.Stage, e.Page, e.Err)
	}
	return fmt.Sprintf("pdf generation failed (%s) at stage %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *GenerateError) Unwrap() error { return e.Err }

// Retryable reports whether the caller may usefully retry the request.
// Environment failures (browser unavailable) are retryable; data and
// merge failures are not.
func (e *GenerateError) Retryable() bool {
	return e.Kind == KindRenderProcess || e.Kind == KindRenderTimeout
}

func genErr(kind ErrorKind, stage, page string, err error) *GenerateError {
	return &GenerateError{Kind: kind, Stage: stage, Page: page, Err: err}
}

// KindOf extracts the error kind from any error in the chain, or "".
func KindOf(err error) ErrorKind {
	var ge *GenerateError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
