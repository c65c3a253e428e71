package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docviewer/internal/model"
	"docviewer/internal/service"
)

type MockTextService struct {
	mock.Mock
}

func (m *MockTextService) ExtractText(ctx context.Context, id model.ObjectID) (*model.ExtractedText, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExtractedText), args.Error(1)
}

func (m *MockTextService) SaveText(ctx context.Context, id model.ObjectID, text string) (*model.ExtractedText, error) {
	args := m.Called(ctx, id, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExtractedText), args.Error(1)
}

func (m *MockTextService) History(ctx context.Context, id model.ObjectID, limit, offset int) (*service.HistoryResult, error) {
	args := m.Called(ctx, id, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HistoryResult), args.Error(1)
}
