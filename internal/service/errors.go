package service

import (
	"errors"
	"fmt"

	"docviewer/internal/extract"
	"docviewer/internal/storage"
)

// Kind classifies a service error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotAuthenticated
	KindNotFound
	KindExtraction
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotAuthenticated:
		return "not_authenticated"
	case KindNotFound:
		return "not_found"
	case KindExtraction:
		return "extraction"
	case KindStore:
		return "store"
	}
	return "internal"
}

// Error is the only error shape the service hands to its callers.
// Message is safe to show to clients; Err carries the internal cause.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so sentinels compare equal to wrapped copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) with(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

var (
	ErrNameRequired       = &Error{Kind: KindInvalidInput, Code: "NAME_REQUIRED", Message: "Document name is required"}
	ErrInvalidName        = &Error{Kind: KindInvalidInput, Code: "INVALID_NAME", Message: "Invalid document name"}
	ErrTextRequired       = &Error{Kind: KindInvalidInput, Code: "TEXT_REQUIRED", Message: "Text is required"}
	ErrFileRequired       = &Error{Kind: KindInvalidInput, Code: "FILE_REQUIRED", Message: "File is required"}
	ErrFileTooLarge       = &Error{Kind: KindInvalidInput, Code: "FILE_TOO_LARGE", Message: "File exceeds the maximum upload size"}
	ErrFileTypeNotAllowed = &Error{Kind: KindInvalidInput, Code: "FILE_TYPE_NOT_ALLOWED", Message: "File type is not allowed"}
	ErrReservedName       = &Error{Kind: KindInvalidInput, Code: "RESERVED_NAME", Message: "The name is reserved for extracted text"}
	ErrUnsupportedType    = &Error{Kind: KindInvalidInput, Code: "UNSUPPORTED_TYPE", Message: "Unsupported file type"}
	ErrEmptyResult        = &Error{Kind: KindExtraction, Code: "EMPTY_RESULT", Message: "No text could be extracted from the document"}
	ErrExtractionFailed   = &Error{Kind: KindExtraction, Code: "EXTRACTION_FAILED", Message: "Text extraction failed"}
	ErrNotAuthenticated   = &Error{Kind: KindNotAuthenticated, Code: "NOT_AUTHENTICATED", Message: "Authentication required"}
	ErrDocumentNotFound   = &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: "Document not found"}
	ErrFolderNotFound     = &Error{Kind: KindNotFound, Code: "FOLDER_NOT_FOUND", Message: "Folder not found"}
	ErrStore              = &Error{Kind: KindStore, Code: "STORE_ERROR", Message: "Storage operation failed"}
	ErrInternal           = &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "Internal server error"}
)

// KindOf classifies any error. Errors that are not *Error are classified by
// their storage sentinel, or as internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrUnknownFolder):
		return KindNotFound
	case errors.Is(err, storage.ErrNotAuthenticated):
		return KindNotAuthenticated
	case errors.Is(err, storage.ErrInvalidName):
		return KindInvalidInput
	}
	return KindInternal
}

// AsError returns err as an *Error, converting unknown errors to ErrInternal.
func AsError(err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return ErrInternal.with(err)
}

// storeError translates a storage failure into the service taxonomy.
func storeError(err error) *Error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrDocumentNotFound.with(err)
	case errors.Is(err, storage.ErrUnknownFolder):
		return ErrFolderNotFound.with(err)
	case errors.Is(err, storage.ErrNotAuthenticated):
		return ErrNotAuthenticated.with(err)
	case errors.Is(err, storage.ErrInvalidName):
		return ErrInvalidName.with(err)
	}
	return ErrStore.with(err)
}

// outcomeError translates a non-success dispatcher outcome.
func outcomeError(o extract.Outcome) *Error {
	switch o.Kind {
	case extract.KindEmpty:
		return ErrEmptyResult.with(o.Err)
	case extract.KindUnsupported:
		e := ErrUnsupportedType.with(nil)
		e.Message = o.Message()
		return e
	case extract.KindSourceMissing:
		return ErrDocumentNotFound.with(nil)
	}
	return ErrExtractionFailed.with(o.Err)
}
