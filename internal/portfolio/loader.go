package portfolio

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Store holds the current document for the lifetime of the server. It is
// created by main and handed to whoever needs the document.
type Store struct {
	mu  sync.RWMutex
	doc *Document
}

func NewStore() *Store { return &Store{} }

// Current returns the cached document, if one has been loaded.
func (s *Store) Current() (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc, s.doc != nil
}

// Set replaces the cached document.
func (s *Store) Set(doc *Document) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

// Loader fetches, decodes and validates the document, then caches it in a
// Store. There are no retries: a failed load leaves the store untouched.
type Loader struct {
	source Source
	store  *Store
	logger log.FieldLogger
}

func NewLoader(source Source, store *Store, logger log.FieldLogger) *Loader {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Loader{source: source, store: store, logger: logger}
}

// Source returns the reference the loader reads from.
func (l *Loader) Source() string { return l.source.String() }

// Load runs one fetch-decode-validate pass. Validation problems are logged
// but do not fail the load.
func (l *Loader) Load(ctx context.Context) Result {
	src := l.source.String()
	logger := l.logger.WithField("source", src)

	data, err := l.source.Fetch(ctx)
	if err != nil {
		logger.WithError(err).Error("Error loading portfolio data")
		return Failed(src, err)
	}
	doc, err := decodeSource(src, data)
	if err != nil {
		logger.WithError(err).Error("Error loading portfolio data")
		return Failed(src, err)
	}
	v := Validate(doc)
	l.store.Set(doc)

	logger.WithFields(log.Fields{
		"checksum": doc.Checksum(),
		"valid":    v.OK(),
	}).Info("portfolio data loaded")
	return Loaded(doc, v)
}
