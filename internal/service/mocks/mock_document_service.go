package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docviewer/internal/model"
	"docviewer/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, in service.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, folder string) (*service.DocumentListResult, error) {
	args := m.Called(ctx, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) DownloadURL(ctx context.Context, id model.ObjectID) (*service.DownloadLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DownloadLink), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id model.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
