// Package searcher finds exact occurrences of a term in a corpus of scanned books.
//
// Search is the engine: a single linear pass over books in order and lines
// in order, reporting every line whose text contains the term as a
// case-sensitive substring.
//
//	result := searcher.Search("the", corpus)
//	for _, m := range result.Results {
//	    fmt.Printf("%s p.%d l.%d\n", m.ISBN, m.Page, m.Line)
//	}
//
// Matching is literal. "queried" does not match "Queried", an empty term
// matches every line, and words hyphenated across a line break are not
// reassembled: searching "darkness" over the lines "The dark-" and
// "ness was" finds nothing, while "dark-" finds the first line.
//
// # Service
//
// Service runs the engine against corpora held in storage and caches
// responses in an LRU keyed by corpus name, revision and term:
//
//	svc := searcher.NewService(store, searcher.Options{CacheSize: 1000, CacheTTL: time.Hour})
//	resp, err := svc.Search(ctx, searcher.Request{
//	    Term:       "match",
//	    CorpusName: "classics",
//	    UseCache:   true,
//	})
//
// Since every import assigns a new revision, a cached response is always
// identical to a fresh scan of the stored corpus. Cached responses are deep
// copied on the way in and out.
package searcher
