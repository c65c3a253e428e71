package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docviewer/internal/model"
	"docviewer/internal/repository"
)

type MockExtractionEventRepository struct {
	mock.Mock
}

func (m *MockExtractionEventRepository) Record(ctx context.Context, ev *model.ExtractionEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockExtractionEventRepository) ListByDocument(ctx context.Context, folder, document string, pq repository.PageQuery) (*repository.PageResult[model.ExtractionEvent], error) {
	args := m.Called(ctx, folder, document, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.ExtractionEvent]), args.Error(1)
}
