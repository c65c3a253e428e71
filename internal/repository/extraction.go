// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"

	"docviewer/internal/model"
)

// ExtractionEventRepository persists the extraction log using SQL queries only.
// No business logic here, strictly persistence operations.
type ExtractionEventRepository interface {
	// Record inserts one event. The caller provides ID and CreatedAt.
	Record(ctx context.Context, ev *model.ExtractionEvent) error

	// ListByDocument returns a page of events for one document, newest first, and the total count.
	ListByDocument(ctx context.Context, folder, document string, pq PageQuery) (*PageResult[model.ExtractionEvent], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// Nop discards events; it stands in when no database is configured.
type Nop struct{}

var _ ExtractionEventRepository = Nop{}

func (Nop) Record(context.Context, *model.ExtractionEvent) error { return nil }

func (Nop) ListByDocument(context.Context, string, string, PageQuery) (*PageResult[model.ExtractionEvent], error) {
	return &PageResult[model.ExtractionEvent]{Items: []model.ExtractionEvent{}}, nil
}
