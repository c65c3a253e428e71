package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docviewer/internal/model"
)

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	id := model.ObjectID{Name: "report.pdf"}

	ok, err := s.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	info, err := s.Put(ctx, id, strings.NewReader("payload"), PutObjectOptions{
		Size:        7,
		ContentType: "application/pdf",
		Metadata:    map[string]string{"originalName": "Report.pdf"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.Size)
	assert.NotEmpty(t, info.ETag)

	rc, got, err := s.Get(ctx, id)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, "Report.pdf", got.Meta("originalname"))

	require.NoError(t, s.Delete(ctx, id))
	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	id := model.ObjectID{Folder: "documents_text", Name: "a.pdf.txt"}

	_, err := s.Put(ctx, id, strings.NewReader("one"), PutObjectOptions{Size: -1})
	require.NoError(t, err)
	_, err = s.Put(ctx, id, strings.NewReader("two"), PutObjectOptions{Size: -1})
	require.NoError(t, err)

	rc, _, err := s.Get(ctx, id)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "two", string(data))
}

func TestMemoryStore_PutSizeMismatch(t *testing.T) {
	_, err := NewMemory().Put(context.Background(), model.ObjectID{Name: "a"}, strings.NewReader("abc"), PutObjectOptions{Size: 10})
	assert.Error(t, err)
}

func TestMemoryStore_ListByFolder(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	for _, id := range []model.ObjectID{
		{Name: "b.docx"},
		{Name: "a.pdf"},
		{Folder: "documents_text", Name: "a.pdf.txt"},
	} {
		_, err := s.Put(ctx, id, strings.NewReader("x"), PutObjectOptions{Size: 1})
		require.NoError(t, err)
	}

	root, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, root, 2)
	assert.Equal(t, "a.pdf", root[0].ID.Name)
	assert.Equal(t, "b.docx", root[1].ID.Name)

	cached, err := s.List(ctx, ListOptions{Folder: "documents_text"})
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	prefixed, err := s.List(ctx, ListOptions{Prefix: "b"})
	require.NoError(t, err)
	assert.Len(t, prefixed, 1)
}

func TestMemoryStore_PresignGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	_, err := s.PresignGet(ctx, model.ObjectID{Name: "a.pdf"}, time.Minute)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Put(ctx, model.ObjectID{Name: "a.pdf"}, strings.NewReader("x"), PutObjectOptions{Size: 1})
	require.NoError(t, err)
	u, err := s.PresignGet(ctx, model.ObjectID{Name: "a.pdf"}, time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "memory:///a.pdf?expires="))
}

func TestObjectInfo_Meta(t *testing.T) {
	info := ObjectInfo{Metadata: map[string]string{"Extractedat": "2024-01-01T00:00:00Z"}}
	assert.Equal(t, "2024-01-01T00:00:00Z", info.Meta("extractedAt"))
	assert.Empty(t, info.Meta("missing"))
}
