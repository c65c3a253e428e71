package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"docviewer/internal/model"
)

type memoryObject struct {
	data []byte
	info ObjectInfo
}

// MemoryStore is an in-process ObjectStore used for local development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	now     func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Exists(_ context.Context, id model.ObjectID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[objectKey(id)]
	return ok, nil
}

func (s *MemoryStore) Get(_ context.Context, id model.ObjectID) (io.ReadCloser, ObjectInfo, error) {
	s.mu.RLock()
	obj, ok := s.objects[objectKey(id)]
	s.mu.RUnlock()
	if !ok {
		return nil, ObjectInfo{}, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.info, nil
}

func (s *MemoryStore) Put(ctx context.Context, id model.ObjectID, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ObjectInfo{}, err
	}
	if opt.Size > 0 && opt.Size != int64(len(data)) {
		return ObjectInfo{}, fmt.Errorf("size mismatch: declared %d, read %d", opt.Size, len(data))
	}
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}

	meta := make(map[string]string, len(opt.Metadata))
	for k, v := range opt.Metadata {
		meta[k] = v
	}
	sum := md5.Sum(data)
	info := ObjectInfo{
		ID:           id,
		Size:         int64(len(data)),
		ETag:         hex.EncodeToString(sum[:]),
		ContentType:  opt.ContentType,
		LastModified: s.now(),
		Metadata:     meta,
	}

	s.mu.Lock()
	s.objects[objectKey(id)] = memoryObject{data: data, info: info}
	s.mu.Unlock()
	return info, nil
}

func (s *MemoryStore) Delete(_ context.Context, id model.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := objectKey(id)
	if _, ok := s.objects[key]; !ok {
		return ErrNotFound
	}
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) List(_ context.Context, opt ListOptions) ([]ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ObjectInfo
	for _, obj := range s.objects {
		id := obj.info.ID
		if id.Folder != opt.Folder || !strings.HasPrefix(id.Name, opt.Prefix) {
			continue
		}
		out = append(out, obj.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Name < out[j].ID.Name })
	return out, nil
}

// PresignGet returns a memory:// URL; there is no server behind it.
func (s *MemoryStore) PresignGet(_ context.Context, id model.ObjectID, expiry time.Duration) (string, error) {
	ok, _ := s.Exists(context.Background(), id)
	if !ok {
		return "", ErrNotFound
	}
	u := url.URL{Scheme: "memory", Path: "/" + objectKey(id)}
	q := u.Query()
	q.Set("expires", s.now().Add(expiry).Format(time.RFC3339))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
