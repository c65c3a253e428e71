package textcache

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docviewer/internal/model"
	"docviewer/internal/storage"
	"docviewer/internal/storage/mocks"
)

func TestLayouts(t *testing.T) {
	doc := model.ObjectID{Name: "report.pdf"}

	blob := BlobLayout{}
	assert.Equal(t, model.ObjectID{Folder: "documents_text", Name: "report.pdf.txt"}, blob.Key(doc))
	assert.Equal(t, "documents_text/report.pdf.txt", blob.Key(doc).String())
	assert.True(t, blob.IsArtifact(blob.Key(doc)))
	assert.False(t, blob.IsArtifact(doc))
	assert.False(t, blob.IsArtifact(model.ObjectID{Folder: "documents_textual", Name: "x"}))
	assert.True(t, blob.IsArtifact(model.ObjectID{Name: "documents_text/report.pdf.txt"}))
	assert.True(t, blob.IsArtifact(model.ObjectID{Folder: "./documents_text/", Name: "report.pdf.txt"}))
	assert.True(t, blob.IsArtifact(model.ObjectID{Folder: "team/..", Name: "documents_text"}))
	assert.False(t, blob.IsArtifact(model.ObjectID{Folder: "team", Name: "documents_text.pdf"}))

	site := SiteLayout{}
	inFolder := model.ObjectID{Folder: "TRC", Name: "memo.docx"}
	assert.Equal(t, model.ObjectID{Folder: "TRC", Name: "memo.docx_extracted.txt"}, site.Key(inFolder))
	assert.True(t, site.IsArtifact(site.Key(inFolder)))
	assert.False(t, site.IsArtifact(inFolder))
}

func TestCache_PutGetInvalidate(t *testing.T) {
	ctx := context.Background()
	for name, layout := range map[string]Layout{"blob": BlobLayout{}, "site": SiteLayout{}} {
		t.Run(name, func(t *testing.T) {
			store := storage.NewMemory()
			c := New(store, layout, nil)
			doc := model.ObjectID{Name: "a.pdf"}

			_, ok := c.Get(ctx, doc)
			assert.False(t, ok)

			put, err := c.Put(ctx, doc, "hello")
			require.NoError(t, err)
			assert.Equal(t, model.ProvenanceExtracted, put.Provenance)

			got, ok := c.Get(ctx, doc)
			require.True(t, ok)
			assert.Equal(t, "hello", got.Text)
			assert.Equal(t, model.ProvenanceCached, got.Provenance)
			assert.Equal(t, doc, got.Source)
			assert.Equal(t, put.ExtractedAt, got.ExtractedAt)

			_, info, err := store.Get(ctx, layout.Key(doc))
			require.NoError(t, err)
			assert.Equal(t, "a.pdf", info.Meta(MetaOriginalDocument))
			assert.Equal(t, "extracted_text", info.Meta(MetaContentType))
			assert.Equal(t, "text/plain; charset=utf-8", info.ContentType)

			_, err = c.Put(ctx, doc, "edited")
			require.NoError(t, err)
			got, _ = c.Get(ctx, doc)
			assert.Equal(t, "edited", got.Text)

			require.NoError(t, c.Invalidate(ctx, doc))
			_, ok = c.Get(ctx, doc)
			assert.False(t, ok)

			// Invalidating an absent artifact is fine.
			require.NoError(t, c.Invalidate(ctx, doc))
		})
	}
}

func TestCache_BlankArtifactIsMiss(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	c := New(store, BlobLayout{}, nil)
	doc := model.ObjectID{Name: "a.pdf"}

	_, err := store.Put(ctx, BlobLayout{}.Key(doc), strings.NewReader("  \n"), storage.PutObjectOptions{Size: -1})
	require.NoError(t, err)

	_, ok := c.Get(ctx, doc)
	assert.False(t, ok)
}

func TestCache_ExtractedAtFallsBackToLastModified(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockObjectStore)
	c := New(store, SiteLayout{}, nil)
	doc := model.ObjectID{Name: "a.pdf"}
	modified := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	store.On("Get", ctx, SiteLayout{}.Key(doc)).Return(io.NopCloser(strings.NewReader("text")), storage.ObjectInfo{LastModified: modified}, nil)

	got, ok := c.Get(ctx, doc)
	require.True(t, ok)
	assert.Equal(t, modified, got.ExtractedAt)
	store.AssertExpectations(t)
}

func TestCache_ReadFailureDegradesToMiss(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockObjectStore)
	c := New(store, BlobLayout{}, nil)
	doc := model.ObjectID{Name: "a.pdf"}

	store.On("Get", ctx, BlobLayout{}.Key(doc)).Return(nil, storage.ObjectInfo{}, errors.New("connection reset"))

	_, ok := c.Get(ctx, doc)
	assert.False(t, ok)
	store.AssertNumberOfCalls(t, "Get", 1)
}

func TestCache_WriteAndDeleteErrors(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockObjectStore)
	c := New(store, BlobLayout{}, nil)
	doc := model.ObjectID{Name: "a.pdf"}
	key := BlobLayout{}.Key(doc)

	store.On("Put", ctx, key, mock.Anything, mock.MatchedBy(func(o storage.PutObjectOptions) bool {
		return o.Size == 4 && o.Metadata[MetaOriginalDocument] == "a.pdf"
	})).Return(storage.ObjectInfo{}, errors.New("quota exceeded"))
	store.On("Delete", ctx, key).Return(storage.ErrNotFound).Once()
	store.On("Delete", ctx, key).Return(errors.New("forbidden")).Once()

	_, err := c.Put(ctx, doc, "text")
	assert.ErrorContains(t, err, "quota exceeded")

	assert.NoError(t, c.Invalidate(ctx, doc))
	assert.ErrorContains(t, c.Invalidate(ctx, doc), "forbidden")
	store.AssertExpectations(t)
}
