package extract

import "fmt"

// Kind tags the result of an extraction attempt.
type Kind int

const (
	KindSuccess Kind = iota
	KindEmpty
	KindUnsupported
	KindSourceMissing
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindEmpty:
		return "empty"
	case KindUnsupported:
		return "unsupported"
	case KindSourceMissing:
		return "source_missing"
	case KindFailure:
		return "failure"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Outcome is the single result shape of the dispatcher. Only a Success carries Text.
type Outcome struct {
	Kind Kind
	// Text is set for KindSuccess.
	Text string
	// Extension is the lowercase extension for KindUnsupported.
	Extension string
	// Err is the underlying cause, when one is known.
	Err error
}

func Success(text string) Outcome { return Outcome{Kind: KindSuccess, Text: text} }

func Empty(cause error) Outcome { return Outcome{Kind: KindEmpty, Err: cause} }

func Unsupported(ext string) Outcome { return Outcome{Kind: KindUnsupported, Extension: ext} }

func SourceMissing() Outcome { return Outcome{Kind: KindSourceMissing} }

func Failure(cause error) Outcome { return Outcome{Kind: KindFailure, Err: cause} }

// OK reports whether the outcome carries usable text.
func (o Outcome) OK() bool { return o.Kind == KindSuccess }

// Message is a client-safe description of a non-success outcome.
func (o Outcome) Message() string {
	switch o.Kind {
	case KindEmpty:
		return "No text could be extracted from the document"
	case KindUnsupported:
		if o.Extension == "" {
			return "Unsupported file type: files without an extension cannot be extracted"
		}
		return fmt.Sprintf("Unsupported file type: %s", o.Extension)
	case KindSourceMissing:
		return "Source document not found"
	case KindFailure:
		return "Text extraction failed"
	}
	return ""
}
