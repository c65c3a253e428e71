// Package extract turns local document files into plain text.
package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Extractor maps a local file to text. Implementations never panic on malformed input;
// an unreadable file yields empty text and, optionally, the cause.
type Extractor interface {
	Extract(path string) (string, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(path string) (string, error)

func (f ExtractorFunc) Extract(path string) (string, error) { return f(path) }

// Dispatcher routes a file to the extractor registered for its extension and
// normalizes every result into an Outcome.
type Dispatcher struct {
	extractors map[string]Extractor
	logger     *slog.Logger
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithExtractor registers (or replaces) the extractor for ext, e.g. ".pdf".
func WithExtractor(ext string, e Extractor) Option {
	return func(d *Dispatcher) { d.extractors[strings.ToLower(ext)] = e }
}

// NewDispatcher returns a dispatcher with the PDF and DOCX extractors registered.
func NewDispatcher(logger *slog.Logger, pdfPassword string, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		extractors: map[string]Extractor{
			".pdf":  &PDF{Password: pdfPassword},
			".docx": DOCX{},
		},
		logger: logger.With("component", "extract"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Supports reports whether ext ("" allowed) can be extracted. Plain text is always supported.
func (d *Dispatcher) Supports(ext string) bool {
	ext = strings.ToLower(ext)
	if ext == ".txt" {
		return true
	}
	_, ok := d.extractors[ext]
	return ok
}

// ExtractFromFile extracts text from the file at path.
//
// Missing and zero-byte files are SourceMissing. Whatever path produced the text,
// a blank result is always Empty.
func (d *Dispatcher) ExtractFromFile(path string) Outcome {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return SourceMissing()
		}
		return Failure(fmt.Errorf("stat %s: %w", filepath.Base(path), err))
	}
	if st.IsDir() || st.Size() == 0 {
		return SourceMissing()
	}

	ext := strings.ToLower(filepath.Ext(path))
	var text string
	switch ext {
	case ".txt":
		text, err = readPlainText(path)
		if err != nil {
			return Failure(err)
		}
	default:
		ex, ok := d.extractors[ext]
		if !ok {
			return Unsupported(ext)
		}
		text, err = ex.Extract(path)
		if err != nil {
			d.logger.Debug("extractor reported a problem", "ext", ext, "error", err)
		}
	}

	if strings.TrimSpace(text) == "" {
		return Empty(err)
	}
	return Success(text)
}

func readPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	if !utf8.Valid(data) {
		return "", errors.New("text file is not valid UTF-8")
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}
