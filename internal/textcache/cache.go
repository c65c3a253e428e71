// Package textcache keeps extracted text as a sibling artifact of its source document,
// in the same object store as the document itself.
package textcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"docviewer/internal/model"
	"docviewer/internal/storage"
)

// Metadata written with every artifact.
const (
	MetaOriginalDocument = "originalDocument"
	MetaExtractedAt      = "extractedAt"
	MetaContentType      = "contentType"

	artifactContentType = "extracted_text"
)

// maxArtifactBytes bounds how much of an artifact is read back.
const maxArtifactBytes = 64 << 20

// Cache is a read-through text cache over an ObjectStore.
// It holds no state of its own; concurrent writers race and the last one wins.
type Cache struct {
	store  storage.ObjectStore
	layout Layout
	logger *slog.Logger
	now    func() time.Time
}

// New returns a cache writing artifacts to store according to layout.
func New(store storage.ObjectStore, layout Layout, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:  store,
		layout: layout,
		logger: logger.With("component", "textcache"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Layout returns the naming layout in use.
func (c *Cache) Layout() Layout {
	return c.layout
}

// Get returns the cached text for doc. Any failure, including a missing or blank
// artifact, is a miss; failures other than absence are logged at warn.
func (c *Cache) Get(ctx context.Context, doc model.ObjectID) (model.ExtractedText, bool) {
	key := c.layout.Key(doc)

	rc, info, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.WarnContext(ctx, "cache read failed, treating as miss",
				"op", "get", "folder", key.Folder, "name", key.Name, "error", err)
		}
		return model.ExtractedText{}, false
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxArtifactBytes))
	if err != nil {
		c.logger.WarnContext(ctx, "cache read failed, treating as miss",
			"op", "read", "folder", key.Folder, "name", key.Name, "error", err)
		return model.ExtractedText{}, false
	}
	if !utf8.Valid(data) || strings.TrimSpace(string(data)) == "" {
		return model.ExtractedText{}, false
	}

	return model.ExtractedText{
		Source:      doc,
		Text:        string(data),
		Provenance:  model.ProvenanceCached,
		ExtractedAt: extractedAt(info),
	}, true
}

// Put writes text as doc's artifact, replacing any previous one.
func (c *Cache) Put(ctx context.Context, doc model.ObjectID, text string) (model.ExtractedText, error) {
	key := c.layout.Key(doc)
	at := c.now().Truncate(time.Second)

	_, err := c.store.Put(ctx, key, strings.NewReader(text), storage.PutObjectOptions{
		Size:        int64(len(text)),
		ContentType: "text/plain; charset=utf-8",
		Metadata: map[string]string{
			MetaOriginalDocument: doc.String(),
			MetaExtractedAt:      at.Format(time.RFC3339),
			MetaContentType:      artifactContentType,
		},
	})
	if err != nil {
		return model.ExtractedText{}, fmt.Errorf("write cached text %s: %w", key, err)
	}
	return model.ExtractedText{
		Source:      doc,
		Text:        text,
		Provenance:  model.ProvenanceExtracted,
		ExtractedAt: at,
	}, nil
}

// Invalidate removes doc's artifact. A missing artifact is not an error.
func (c *Cache) Invalidate(ctx context.Context, doc model.ObjectID) error {
	key := c.layout.Key(doc)
	if err := c.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete cached text %s: %w", key, err)
	}
	return nil
}

// extractedAt prefers the recorded write time and falls back to the
// artifact's modification time for stores without custom metadata.
func extractedAt(info storage.ObjectInfo) time.Time {
	if v := info.Meta(MetaExtractedAt); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.UTC()
		}
	}
	return info.LastModified.UTC()
}
