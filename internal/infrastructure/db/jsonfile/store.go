// Package jsonfile persists the whole library state as a single JSON document.
//
// Every mutation reads the full document, changes an in-memory copy and
// rewrites the file. Mutations inside one process are serialised by a mutex;
// several processes sharing the same file can still lose updates.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
	"github.com/sirpyerre/library-tracker/internal/pkg/metrics"
)

const backend = "json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store owns the JSON document at path.
type Store struct {
	path string
	mu   sync.Mutex
	log  zerolog.Logger
}

// New returns a Store for the document at path. Call Initialize before use.
func New(path string, log zerolog.Logger) *Store {
	return &Store{path: path, log: log.With().Str("store", backend).Str("path", path).Logger()}
}

// Path returns the location of the document.
func (s *Store) Path() string { return s.path }

// Initialize creates the data directory and, if the document does not exist
// yet, seeds it with the default catalog. An existing document is left as is.
func (s *Store) Initialize(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create data dir: %w", domain.ErrPersistence, err)
	}

	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: stat document: %w", domain.ErrPersistence, err)
	}

	doc := &domain.Document{Users: []*domain.User{}, Books: domain.SeedBooks(time.Now())}
	if err := s.write(doc); err != nil {
		return err
	}
	s.log.Info().Int("books", len(doc.Books)).Msg("document seeded")
	return nil
}

// Read loads the document. Any read or parse failure degrades to an empty
// document; the failure is logged, never returned.
func (s *Store) Read() *domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Write replaces the document on disk. Failures are logged and returned
// wrapped in domain.ErrPersistence.
func (s *Store) Write(doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(doc)
}

// View calls fn with a freshly read copy of the document.
func (s *Store) View(fn func(doc *domain.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.read())
}

// Update reads the document, applies fn to it and writes the result back.
// Nothing is written when fn returns an error.
func (s *Store) Update(fn func(doc *domain.Document) error) error {
	start := time.Now()
	defer func() {
		metrics.StoreOperationDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(doc)
}

// Ping reports whether the document is present and readable.
func (s *Store) Ping(_ context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	return f.Close()
}

func (s *Store) read() *domain.Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Warn().Err(err).Msg("read document failed, using empty document")
		metrics.StoreReadFallbacksTotal.Inc()
		return domain.EmptyDocument()
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn().Err(err).Msg("parse document failed, using empty document")
		metrics.StoreReadFallbacksTotal.Inc()
		return domain.EmptyDocument()
	}
	doc.Normalize()
	return &doc
}

// write goes through a temp file and rename so a failed write never leaves a
// truncated document behind.
func (s *Store) write(doc *domain.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return s.writeFailed(err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return s.writeFailed(err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return s.writeFailed(err)
	}
	return nil
}

func (s *Store) writeFailed(err error) error {
	metrics.StoreWriteErrorsTotal.WithLabelValues(backend).Inc()
	s.log.Error().Err(err).Msg("write document failed")
	return fmt.Errorf("%w: write document: %w", domain.ErrPersistence, err)
}
