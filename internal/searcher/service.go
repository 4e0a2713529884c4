package searcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/booksearch-mcp/internal/storage"
	"github.com/dshills/booksearch-mcp/pkg/types"
)

const (
	// DefaultCacheSize is used when Options.CacheSize is not positive
	DefaultCacheSize = 1000
	// DefaultCacheTTL is used when Options.CacheTTL is zero
	DefaultCacheTTL = time.Hour
)

// Options configures a Service
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
	Logger    *slog.Logger
}

// Request names a stored corpus and the term to look for
type Request struct {
	Term       string
	CorpusName string
	UseCache   bool
}

// Response contains the search result and scan metadata
type Response struct {
	Result       types.SearchResult
	CorpusName   string
	Revision     string
	BooksScanned int
	LinesScanned int
	Duration     time.Duration
	CacheHit     bool
}

// cacheEntry represents a cached search response with expiration time
type cacheEntry struct {
	response  *Response
	expiresAt time.Time
}

// Service runs searches against corpora held in storage
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
	ttl     time.Duration
	cache   *lru.Cache[[32]byte, *cacheEntry]
	cacheMu sync.RWMutex
}

// NewService creates a Service backed by store
func NewService(store storage.Storage, opts Options) *Service {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cache, err := lru.New[[32]byte, *cacheEntry](size)
	if err != nil {
		// Only reachable with a non-positive size
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	return &Service{
		storage: store,
		logger:  logger,
		ttl:     ttl,
		cache:   cache,
	}
}

// Search loads the named corpus and scans it for req.Term
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	startTime := time.Now()

	if req.CorpusName == "" {
		return nil, fmt.Errorf("%w: corpus name is required", types.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	corpus, err := s.storage.GetCorpus(ctx, req.CorpusName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("corpus %q: %w", req.CorpusName, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get corpus: %w", err)
	}

	key := computeQueryHash(corpus.Name, corpus.Revision, req.Term)
	if req.UseCache {
		if cached := s.checkCache(key); cached != nil {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			s.logger.Debug("search cache hit", "corpus", corpus.Name, "term", req.Term)
			return cached, nil
		}
	}

	books, err := s.storage.LoadCorpus(ctx, corpus.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus %q: %w", corpus.Name, err)
	}

	response := &Response{
		Result:       Search(req.Term, books),
		CorpusName:   corpus.Name,
		Revision:     corpus.Revision,
		BooksScanned: len(books),
		LinesScanned: books.TotalLines(),
		Duration:     time.Since(startTime),
	}

	if req.UseCache {
		s.storeInCache(key, response)
	}

	s.logger.Debug("search complete",
		"corpus", corpus.Name,
		"term", req.Term,
		"matches", len(response.Result.Results),
		"duration", response.Duration)

	return response, nil
}

// SearchInline scans a caller-supplied corpus without touching storage or the cache
func (s *Service) SearchInline(term string, corpus types.Corpus) *Response {
	startTime := time.Now()
	result := Search(term, corpus)
	return &Response{
		Result:       result,
		BooksScanned: len(corpus),
		LinesScanned: corpus.TotalLines(),
		Duration:     time.Since(startTime),
	}
}

// checkCache returns a copy of a live cache entry, or nil
func (s *Service) checkCache(key [32]byte) *Response {
	now := time.Now()

	s.cacheMu.RLock()
	entry, found := s.cache.Get(key)
	if !found {
		s.cacheMu.RUnlock()
		return nil
	}

	if now.After(entry.expiresAt) {
		s.cacheMu.RUnlock()

		s.cacheMu.Lock()
		s.cache.Remove(key)
		s.cacheMu.Unlock()
		return nil
	}

	response := copyResponse(entry.response)
	s.cacheMu.RUnlock()

	return response
}

// storeInCache saves a copy of response under key
func (s *Service) storeInCache(key [32]byte, response *Response) {
	entry := &cacheEntry{
		response:  copyResponse(response),
		expiresAt: time.Now().Add(s.ttl),
	}

	s.cacheMu.Lock()
	s.cache.Add(key, entry)
	s.cacheMu.Unlock()
}

// copyResponse creates a deep copy of a Response
func copyResponse(src *Response) *Response {
	if src == nil {
		return nil
	}
	dst := *src
	dst.Result = src.Result.Clone()
	return &dst
}

// computeQueryHash keys a search by corpus, revision and term. A re-import
// changes the revision, so stale entries are never served. Fields are length
// prefixed so distinct triples never share an encoding.
func computeQueryHash(corpusName, revision, term string) [32]byte {
	h := sha256.New()
	fmt.Fprintf(h, "%d:%s%d:%s%d:%s", len(corpusName), corpusName, len(revision), revision, len(term), term)

	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

// InvalidateCache drops all cached responses. Called after a corpus is
// imported or deleted.
func (s *Service) InvalidateCache(ctx context.Context, corpusName string) {
	// The LRU cannot filter by corpus, so everything goes
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
	s.logger.Debug("search cache invalidated", "corpus", corpusName)
}

// CacheLen returns the number of cached responses
func (s *Service) CacheLen() int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.cache.Len()
}
