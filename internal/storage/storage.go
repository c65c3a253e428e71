// Package storage abstracts the document stores the viewer can read from and write to.
// Every backend addresses objects by folder and name; blob stores derive a flat key from
// the pair while document sites map it onto a library path.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"docviewer/internal/model"
)

var (
	// ErrNotFound is returned when the addressed object does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrNotAuthenticated is returned by stores that need a user session when none is present.
	ErrNotAuthenticated = errors.New("store requires an authenticated session")
	// ErrUnknownFolder is returned when a folder is not part of the configured set.
	ErrUnknownFolder = errors.New("unknown folder")
	// ErrInvalidName is returned when an object name would escape its folder.
	ErrInvalidName = errors.New("invalid object name")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	ID           model.ObjectID
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Meta looks a metadata entry up case-insensitively.
// S3-compatible stores canonicalize user metadata keys on the way back.
func (o ObjectInfo) Meta(key string) string {
	if v, ok := o.Metadata[key]; ok {
		return v
	}
	for k, v := range o.Metadata {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// ListOptions narrow a listing to a folder and an optional name prefix.
type ListOptions struct {
	Folder string
	Prefix string
}

// ObjectStore is the capability set every document backend provides.
// Methods use context and streaming readers; Get and Delete return ErrNotFound for
// missing objects so callers can distinguish absence from failure.
type ObjectStore interface {
	// Exists reports whether the object is present.
	Exists(ctx context.Context, id model.ObjectID) (bool, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, id model.ObjectID) (io.ReadCloser, ObjectInfo, error)
	// Put creates or replaces an object.
	Put(ctx context.Context, id model.ObjectID, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes an object.
	Delete(ctx context.Context, id model.ObjectID) error
	// List returns the objects directly inside a folder.
	List(ctx context.Context, opt ListOptions) ([]ObjectInfo, error)
	// PresignGet returns a time-limited URL that can be used to download the object.
	PresignGet(ctx context.Context, id model.ObjectID, expiry time.Duration) (string, error)
}

// Folders is implemented by stores that expose a fixed set of top-level folders.
type Folders interface {
	Folders() []string
}
