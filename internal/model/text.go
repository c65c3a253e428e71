package model

import "time"

// Provenance tells whether returned text came from the cache or was just computed.
type Provenance string

const (
	ProvenanceCached    Provenance = "cached"
	ProvenanceExtracted Provenance = "extracted"
)

// ExtractedText is the plain-text derivative of exactly one Document.
type ExtractedText struct {
	Source      ObjectID   `json:"-"`
	Text        string     `json:"text"`
	Provenance  Provenance `json:"source"`
	ExtractedAt time.Time  `json:"extractedAt"`
}

// EventSource values recorded in the extraction log.
const (
	EventCached    = "cached"
	EventExtracted = "extracted"
	EventEdited    = "edited"
	EventFailed    = "failed"
)

// ExtractionEvent is one row of the optional extraction log.
type ExtractionEvent struct {
	ID         string    `json:"id"`
	Folder     string    `json:"folder"`
	Document   string    `json:"document"`
	Backend    string    `json:"backend"`
	Source     string    `json:"source"`
	Outcome    string    `json:"outcome"`
	TextLength int       `json:"textLength"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}
