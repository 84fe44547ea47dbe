package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"vetlab/internal/storage"
)

// documentStore owns one domain document. Reads and writes are serialized by a
// single mutex; every write persists the whole document exactly once and the
// in-memory copy is rolled back when persisting fails.
type documentStore[D any] struct {
	mu        sync.Mutex
	port      storage.Port
	key       string
	fresh     func() *D
	normalize func(*D)
	logger    *slog.Logger

	doc    *D
	loaded bool
}

func newDocumentStore[D any](port storage.Port, key string, fresh func() *D, normalize func(*D), logger *slog.Logger) *documentStore[D] {
	return &documentStore[D]{
		port:      port,
		key:       key,
		fresh:     fresh,
		normalize: normalize,
		logger:    logger.With("document", key),
	}
}

// ensureLoaded must be called with mu held.
func (s *documentStore[D]) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	doc, err := s.read(ctx)
	if err != nil {
		return err
	}
	s.doc = doc
	s.loaded = true
	return nil
}

func (s *documentStore[D]) read(ctx context.Context) (*D, error) {
	raw, err := s.port.Load(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return s.fresh(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}

	doc := s.fresh()
	if err := json.Unmarshal(raw, doc); err != nil {
		// Unreadable data is replaced by an empty document; keep a copy so
		// nothing is lost silently.
		s.logger.Error("stored document is malformed, starting from an empty one", "error", err)
		if berr := s.port.Save(ctx, s.key+"_corrupt", raw); berr != nil {
			s.logger.Warn("failed to back up malformed document", "error", berr)
		}
		return s.fresh(), nil
	}
	s.normalize(doc)
	return doc, nil
}

// View runs fn against the current document. fn must copy what it returns.
func (s *documentStore[D]) View(ctx context.Context, fn func(doc *D) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	return fn(s.doc)
}

// Update runs fn against the document and persists it when fn reports a
// change. On any error the document is restored to its prior state.
func (s *documentStore[D]) Update(ctx context.Context, fn func(doc *D) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	snapshot, err := json.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", s.key, err)
	}

	changed, err := fn(s.doc)
	if err == nil && changed {
		err = s.persist(ctx)
	}
	if err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

// persist must be called with mu held.
func (s *documentStore[D]) persist(ctx context.Context) error {
	data, err := json.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}
	if err := s.port.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	return nil
}

func (s *documentStore[D]) restore(snapshot []byte) {
	doc := s.fresh()
	if err := json.Unmarshal(snapshot, doc); err != nil {
		s.logger.Error("rollback failed, reloading on next access", "error", err)
		s.loaded = false
		return
	}
	s.normalize(doc)
	s.doc = doc
}

// Reload drops the in-memory copy and reads the document again.
func (s *documentStore[D]) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read(ctx)
	if err != nil {
		return err
	}
	s.doc = doc
	s.loaded = true
	return nil
}

// Export returns the document as indented JSON.
func (s *documentStore[D]) Export(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return json.MarshalIndent(s.doc, "", "  ")
}

// Import validates data and replaces the whole document with it.
func (s *documentStore[D]) Import(ctx context.Context, data []byte) error {
	doc := s.fresh()
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("import %s: %w", s.key, err)
	}
	s.normalize(doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, prevLoaded := s.doc, s.loaded
	s.doc, s.loaded = doc, true
	if err := s.persist(ctx); err != nil {
		s.doc, s.loaded = prev, prevLoaded
		return err
	}
	return nil
}
