package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind groups error codes by how the client is expected to react.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindProcessExecution
	KindTransientIO
	KindContentPolicy
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindProcessExecution:
		return "process_execution"
	case KindTransientIO:
		return "transient_io"
	case KindContentPolicy:
		return "content_policy"
	default:
		return "internal"
	}
}

type UploadError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error

	// UploadSize carries the authoritative offset on conflicts.
	UploadSize *int64
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// As returns the *UploadError in err's chain, if any.
func As(err error) (*UploadError, bool) {
	var ue *UploadError
	if stderrors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// IsKind reports whether err carries an UploadError of the given kind.
func IsKind(err error, kind Kind) bool {
	ue, ok := As(err)
	return ok && ue.Kind == kind
}

func newError(kind Kind, code, message string, err error) *UploadError {
	return &UploadError{Kind: kind, Code: code, Message: message, Err: err}
}

var (
	ErrTitleRequired = func() *UploadError {
		return newError(KindValidation, "title_required", "Title is required", nil)
	}
	ErrSizeRequired = func() *UploadError {
		return newError(KindValidation, "size_required", "Size must be greater than zero", nil)
	}
	ErrExternalIDRequired = func() *UploadError {
		return newError(KindValidation, "external_id_required", "External ID is required for remote providers", nil)
	}
	ErrInvalidRequest = func(err error) *UploadError {
		return newError(KindValidation, "invalid_request", "Invalid request", err)
	}
	ErrInvalidOffset = func(err error) *UploadError {
		return newError(KindValidation, "invalid_offset", "Offset must be a non-negative integer", err)
	}
	ErrStagingExists = func(id string) *UploadError {
		return newError(KindConflict, "staging_exists", "Upload already staged", fmt.Errorf("staging directory for %s exists", id))
	}
	ErrOffsetMismatch = func(uploadSize int64) *UploadError {
		e := newError(KindConflict, "offset_mismatch", "Offset does not match received bytes", nil)
		e.UploadSize = &uploadSize
		return e
	}
	ErrUploadBusy = func(uploadSize int64) *UploadError {
		e := newError(KindConflict, "upload_busy", "Another transfer for this upload is in progress", nil)
		e.UploadSize = &uploadSize
		return e
	}
	ErrStagingInUse = func() *UploadError {
		return newError(KindConflict, "staging_in_use", "Upload is still pending or processing", nil)
	}
	ErrNotFound = func(err error) *UploadError {
		return newError(KindNotFound, "not_found", "Upload not found", err)
	}
	ErrUploadComplete = func() *UploadError {
		return newError(KindNotFound, "upload_complete", "Upload already complete", nil)
	}
	ErrProcessExecution = func(tool string, err error) *UploadError {
		return newError(KindProcessExecution, "process_failed", fmt.Sprintf("%s failed", tool), err)
	}
	ErrTransientIO = func(err error) *UploadError {
		return newError(KindTransientIO, "io_error", "Storage error, retry the request", err)
	}
	ErrContentBlocked = func(reason string) *UploadError {
		return newError(KindContentPolicy, "content_blocked", "Content rejected by policy", stderrors.New(reason))
	}
	ErrInternal = func(err error) *UploadError {
		return newError(KindInternal, "internal_error", "Internal server error", err)
	}
	ErrCannotStat = func(err error) *UploadError {
		return newError(KindTransientIO, "cannot_stat", "Cannot stat path", err)
	}
	ErrCannotRemove = func(err error) *UploadError {
		return newError(KindTransientIO, "cannot_remove", "Cannot remove path", err)
	}
)
