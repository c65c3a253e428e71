package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"docviewer/internal/model"
	"docviewer/internal/storage"
)

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Exists(ctx context.Context, id model.ObjectID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectStore) Get(ctx context.Context, id model.ObjectID) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, id)
	var rc io.ReadCloser
	if v := args.Get(0); v != nil {
		rc = v.(io.ReadCloser)
	}
	return rc, args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockObjectStore) Put(ctx context.Context, id model.ObjectID, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	args := m.Called(ctx, id, r, opt)
	if f, ok := args.Get(0).(func(context.Context, model.ObjectID, io.Reader, storage.PutObjectOptions) storage.ObjectInfo); ok {
		return f(ctx, id, r, opt), args.Error(1)
	}
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, id model.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockObjectStore) List(ctx context.Context, opt storage.ListOptions) ([]storage.ObjectInfo, error) {
	args := m.Called(ctx, opt)
	var out []storage.ObjectInfo
	if v := args.Get(0); v != nil {
		out = v.([]storage.ObjectInfo)
	}
	return out, args.Error(1)
}

func (m *MockObjectStore) PresignGet(ctx context.Context, id model.ObjectID, expiry time.Duration) (string, error) {
	args := m.Called(ctx, id, expiry)
	return args.String(0), args.Error(1)
}
