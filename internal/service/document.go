package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"docviewer/internal/extract"
	"docviewer/internal/model"
	"docviewer/internal/storage"
	"docviewer/internal/textcache"
)

// Metadata written with every uploaded document.
const (
	MetaOriginalName = "originalName"
	MetaUploadedAt   = "uploadedAt"
	MetaPageCount    = "pageCount"
)

// maxDuplicateSuffix bounds the "name (n).ext" search on upload.
const maxDuplicateSuffix = 1000

// allowedUploadExt is the set of extensions accepted on upload. Only a subset can be extracted.
var allowedUploadExt = map[string]bool{
	".pdf": true, ".docx": true, ".doc": true, ".txt": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".xlsx": true, ".xls": true,
}

var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N} ._()\-]`)

// UploadInput describes one uploaded file.
type UploadInput struct {
	Folder      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DocumentListResult is the service-level DTO for a folder listing.
type DocumentListResult struct {
	Items   []model.Document `json:"files"`
	Folders []string         `json:"folders,omitempty"`
}

// DownloadLink is a URL the client can fetch the document from.
type DownloadLink struct {
	URL       string    `json:"downloadUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload stores a new document under a sanitized, de-duplicated name.
	Upload(ctx context.Context, in UploadInput) (*model.Document, error)

	// List returns the documents directly inside folder. Cached text artifacts are never listed.
	List(ctx context.Context, folder string) (*DocumentListResult, error)

	// DownloadURL issues a URL for fetching the document.
	DownloadURL(ctx context.Context, id model.ObjectID) (*DownloadLink, error)

	// Delete removes a document, then its cached text.
	Delete(ctx context.Context, id model.ObjectID) error
}

// DocumentDeps are the collaborators of the document service.
type DocumentDeps struct {
	Store          storage.ObjectStore
	Cache          *textcache.Cache
	Logger         *slog.Logger
	MaxUploadSize  int64
	DownloadExpiry time.Duration
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store          storage.ObjectStore
	cache          *textcache.Cache
	logger         *slog.Logger
	maxUploadSize  int64
	downloadExpiry time.Duration
	now            func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(d DocumentDeps) DocumentService {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.DownloadExpiry <= 0 {
		d.DownloadExpiry = time.Hour
	}
	return &documentService{
		store:          d.Store,
		cache:          d.Cache,
		logger:         d.Logger.With("component", "document_service"),
		maxUploadSize:  d.MaxUploadSize,
		downloadExpiry: d.DownloadExpiry,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	if in.Body == nil {
		return nil, ErrFileRequired
	}
	if s.maxUploadSize > 0 && in.Size > s.maxUploadSize {
		return nil, ErrFileTooLarge
	}

	name := SanitizeFilename(in.Filename)
	if name == "" {
		return nil, ErrNameRequired
	}
	ext := strings.ToLower(path.Ext(name))
	if !allowedUploadExt[ext] {
		e := ErrFileTypeNotAllowed.with(nil)
		e.Message = fmt.Sprintf("File type %q is not allowed", ext)
		return nil, e
	}
	id := model.ObjectID{Folder: in.Folder, Name: name}
	if s.cache.Layout().IsArtifact(id) {
		return nil, ErrReservedName
	}

	// The body is buffered so the size cap holds even when the declared size lies.
	body := in.Body
	if s.maxUploadSize > 0 {
		body = io.LimitReader(in.Body, s.maxUploadSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, ErrFileRequired.with(fmt.Errorf("read upload: %w", err))
	}
	if s.maxUploadSize > 0 && int64(len(data)) > s.maxUploadSize {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrFileRequired
	}

	id, err = s.uniqueName(ctx, id)
	if err != nil {
		return nil, err
	}

	meta := map[string]string{
		MetaOriginalName: in.Filename,
		MetaUploadedAt:   s.now().Format(time.RFC3339),
	}
	if ext == ".pdf" {
		if n, err := extract.PageCount(data); err == nil {
			meta[MetaPageCount] = strconv.Itoa(n)
		} else {
			s.logger.DebugContext(ctx, "page count unavailable", "name", id.Name, "error", err)
		}
	}

	info, err := s.store.Put(ctx, id, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: detectContentType(name, in.ContentType, data),
		Metadata:    meta,
	})
	if err != nil {
		return nil, s.storeFailure(ctx, "put", id, err)
	}
	if len(info.Metadata) == 0 {
		info.Metadata = meta
	}
	doc := toDocument(info)
	return &doc, nil
}

// uniqueName returns id, or "name (n).ext" for the first n not yet taken.
func (s *documentService) uniqueName(ctx context.Context, id model.ObjectID) (model.ObjectID, error) {
	ext := path.Ext(id.Name)
	base := strings.TrimSuffix(id.Name, ext)
	candidate := id
	for n := 1; n <= maxDuplicateSuffix; n++ {
		exists, err := s.store.Exists(ctx, candidate)
		if err != nil {
			return model.ObjectID{}, s.storeFailure(ctx, "exists", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate.Name = fmt.Sprintf("%s (%d)%s", base, n, ext)
	}
	return model.ObjectID{}, ErrStore.with(fmt.Errorf("no free name for %s", id))
}

func (s *documentService) List(ctx context.Context, folder string) (*DocumentListResult, error) {
	infos, err := s.store.List(ctx, storage.ListOptions{Folder: folder})
	if err != nil {
		return nil, s.storeFailure(ctx, "list", model.ObjectID{Folder: folder}, err)
	}

	layout := s.cache.Layout()
	docs := make([]model.Document, 0, len(infos))
	for _, info := range infos {
		if layout.IsArtifact(info.ID) {
			continue
		}
		doc := toDocument(info)
		if u, err := s.store.PresignGet(ctx, info.ID, s.downloadExpiry); err == nil {
			doc.URL = u
		}
		docs = append(docs, doc)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].LastModified.After(docs[j].LastModified)
	})

	res := &DocumentListResult{Items: docs}
	if f, ok := s.store.(storage.Folders); ok {
		res.Folders = f.Folders()
	}
	return res, nil
}

func (s *documentService) DownloadURL(ctx context.Context, id model.ObjectID) (*DownloadLink, error) {
	if err := s.validate(id); err != nil {
		return nil, err
	}
	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return nil, s.storeFailure(ctx, "exists", id, err)
	}
	if !exists {
		return nil, ErrDocumentNotFound
	}
	u, err := s.store.PresignGet(ctx, id, s.downloadExpiry)
	if err != nil {
		return nil, s.storeFailure(ctx, "presign", id, err)
	}
	return &DownloadLink{URL: u, ExpiresAt: s.now().Add(s.downloadExpiry).Truncate(time.Second)}, nil
}

// Delete removes the source first. The cached text is only invalidated once the source
// is gone, and a failed invalidation does not fail the delete.
func (s *documentService) Delete(ctx context.Context, id model.ObjectID) error {
	if err := s.validate(id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return s.storeFailure(ctx, "delete", id, err)
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "cached text left behind after delete",
			"op", "invalidate", "folder", id.Folder, "name", id.Name, "error", err)
	}
	return nil
}

func (s *documentService) validate(id model.ObjectID) error {
	if strings.TrimSpace(id.Name) == "" {
		return ErrNameRequired
	}
	if !model.ValidName(id.Name) {
		return ErrInvalidName
	}
	if s.cache.Layout().IsArtifact(id) {
		return ErrDocumentNotFound
	}
	return nil
}

// storeFailure maps err and logs it when it is a real backend failure.
func (s *documentService) storeFailure(ctx context.Context, op string, id model.ObjectID, err error) error {
	se := storeError(err)
	if se.Kind == KindStore {
		s.logger.ErrorContext(ctx, "store operation failed",
			"op", op, "folder", id.Folder, "name", id.Name, "error", err)
	}
	return se
}

// SanitizeFilename keeps the base name and replaces characters outside letters, digits,
// space and ._()- with an underscore.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	name = unsafeNameChars.ReplaceAllString(name, "_")
	return strings.Trim(name, " .")
}

func detectContentType(name, declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(name))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

func toDocument(info storage.ObjectInfo) model.Document {
	doc := model.Document{
		ID:           info.ID.String(),
		Name:         info.ID.Name,
		OriginalName: info.Meta(MetaOriginalName),
		Folder:       info.ID.Folder,
		FileType:     strings.TrimPrefix(info.ID.Ext(), "."),
		Size:         info.Size,
		ContentType:  info.ContentType,
		LastModified: info.LastModified.UTC(),
		UploadedAt:   info.LastModified.UTC(),
	}
	if doc.OriginalName == "" {
		doc.OriginalName = doc.Name
	}
	if v := info.Meta(MetaUploadedAt); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			doc.UploadedAt = t.UTC()
		}
	}
	if v := info.Meta(MetaPageCount); v != "" {
		doc.PageCount, _ = strconv.Atoi(v)
	}
	return doc
}
