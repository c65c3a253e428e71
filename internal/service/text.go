package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"docviewer/internal/extract"
	"docviewer/internal/metrics"
	"docviewer/internal/model"
	"docviewer/internal/repository"
	"docviewer/internal/storage"
	"docviewer/internal/textcache"
)

// HistoryResult is a page of extraction events for one document.
type HistoryResult struct {
	Items []model.ExtractionEvent `json:"data"`
	Total int                     `json:"total"`
}

// TextService defines the text retrieval use cases.
type TextService interface {
	// ExtractText returns the document's text, from the cache when present, otherwise
	// by downloading and extracting the source and writing the result back.
	ExtractText(ctx context.Context, id model.ObjectID) (*model.ExtractedText, error)

	// SaveText stores user-edited text as the document's cached text without extracting.
	SaveText(ctx context.Context, id model.ObjectID, text string) (*model.ExtractedText, error)

	// History returns the extraction log of a document, newest first.
	History(ctx context.Context, id model.ObjectID, limit, offset int) (*HistoryResult, error)
}

// TextDeps are the collaborators of the text service.
type TextDeps struct {
	Store      storage.ObjectStore
	Cache      *textcache.Cache
	Dispatcher *extract.Dispatcher
	Events     repository.ExtractionEventRepository
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	// Backend labels metrics and events.
	Backend string
	// ScratchDir holds transient copies of documents being extracted; empty means os.TempDir().
	ScratchDir string
}

type textService struct {
	store      storage.ObjectStore
	cache      *textcache.Cache
	dispatcher *extract.Dispatcher
	events     repository.ExtractionEventRepository
	metrics    *metrics.Metrics
	logger     *slog.Logger
	backend    string
	scratchDir string
	now        func() time.Time
}

// NewTextService constructs a new TextService.
func NewTextService(d TextDeps) TextService {
	if d.Events == nil {
		d.Events = repository.Nop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &textService{
		store:      d.Store,
		cache:      d.Cache,
		dispatcher: d.Dispatcher,
		events:     d.Events,
		metrics:    d.Metrics,
		logger:     d.Logger.With("component", "text_service"),
		backend:    d.Backend,
		scratchDir: d.ScratchDir,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *textService) ExtractText(ctx context.Context, id model.ObjectID) (*model.ExtractedText, error) {
	if err := s.validate(id); err != nil {
		return nil, err
	}
	start := s.now()

	if cached, ok := s.cache.Get(ctx, id); ok {
		s.metrics.CacheHit(s.backend)
		s.record(ctx, id, model.EventCached, extract.KindSuccess.String(), len(cached.Text), start)
		return &cached, nil
	}
	s.metrics.CacheMiss(s.backend)

	out, err := s.extractFromStore(ctx, id)
	if err != nil {
		s.record(ctx, id, model.EventFailed, "store_error", 0, start)
		return nil, err
	}
	s.metrics.Extraction(id.Ext(), out.Kind.String(), s.now().Sub(start))
	if !out.OK() {
		s.record(ctx, id, model.EventFailed, out.Kind.String(), 0, start)
		return nil, outcomeError(out)
	}

	res, err := s.cache.Put(ctx, id, out.Text)
	if err != nil {
		s.metrics.CacheWriteFailed()
		s.logger.WarnContext(ctx, "cache write-back failed",
			"op", "put", "folder", id.Folder, "name", id.Name, "error", err)
		res = model.ExtractedText{
			Source:      id,
			Text:        out.Text,
			Provenance:  model.ProvenanceExtracted,
			ExtractedAt: s.now().Truncate(time.Second),
		}
	}
	s.record(ctx, id, model.EventExtracted, out.Kind.String(), len(res.Text), start)
	return &res, nil
}

// extractFromStore copies the source into a scratch file owned by this call and runs
// the dispatcher on it. The scratch file is removed on every return path.
func (s *textService) extractFromStore(ctx context.Context, id model.ObjectID) (extract.Outcome, error) {
	rc, _, err := s.store.Get(ctx, id)
	if err != nil {
		se := storeError(err)
		if se.Kind == KindStore {
			s.logger.ErrorContext(ctx, "fetch source document failed",
				"op", "get", "folder", id.Folder, "name", id.Name, "error", err)
		}
		return extract.Outcome{}, se
	}
	defer rc.Close()

	f, err := os.CreateTemp(s.scratchDir, "docviewer-*"+id.Ext())
	if err != nil {
		return extract.Outcome{}, ErrInternal.with(fmt.Errorf("create scratch file: %w", err))
	}
	scratch := f.Name()
	defer os.Remove(scratch)

	_, copyErr := io.Copy(f, rc)
	closeErr := f.Close()
	if copyErr != nil {
		s.logger.ErrorContext(ctx, "download source document failed",
			"op", "read", "folder", id.Folder, "name", id.Name, "error", copyErr)
		return extract.Outcome{}, storeError(copyErr)
	}
	if closeErr != nil {
		return extract.Outcome{}, ErrInternal.with(fmt.Errorf("close scratch file: %w", closeErr))
	}
	return s.dispatcher.ExtractFromFile(scratch), nil
}

func (s *textService) SaveText(ctx context.Context, id model.ObjectID, text string) (*model.ExtractedText, error) {
	if err := s.validate(id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrTextRequired
	}
	start := s.now()

	// Edited text is only kept for a source that exists.
	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if !exists {
		return nil, ErrDocumentNotFound
	}

	res, err := s.cache.Put(ctx, id, text)
	if err != nil {
		se := storeError(err)
		if se.Kind == KindStore {
			s.logger.ErrorContext(ctx, "save edited text failed",
				"op", "put", "folder", id.Folder, "name", id.Name, "error", err)
		}
		return nil, se
	}
	s.record(ctx, id, model.EventEdited, extract.KindSuccess.String(), len(text), start)
	return &res, nil
}

func (s *textService) History(ctx context.Context, id model.ObjectID, limit, offset int) (*HistoryResult, error) {
	if strings.TrimSpace(id.Name) == "" {
		return nil, ErrNameRequired
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	page, err := s.events.ListByDocument(ctx, id.Folder, id.Name, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, ErrInternal.with(fmt.Errorf("list extraction events: %w", err))
	}
	return &HistoryResult{Items: page.Items, Total: page.Total}, nil
}

func (s *textService) validate(id model.ObjectID) error {
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

// record appends an extraction event. Failures are logged and never reach the caller.
func (s *textService) record(ctx context.Context, id model.ObjectID, source, outcome string, textLen int, start time.Time) {
	now := s.now()
	ev := &model.ExtractionEvent{
		ID:         uuid.NewString(),
		Folder:     id.Folder,
		Document:   id.Name,
		Backend:    s.backend,
		Source:     source,
		Outcome:    outcome,
		TextLength: textLen,
		DurationMs: now.Sub(start).Milliseconds(),
		CreatedAt:  now,
	}
	if err := s.events.Record(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "record extraction event failed",
			"folder", id.Folder, "name", id.Name, "source", source, "error", err)
	}
}
