// Package evidence provides the cached search boundary of the research
// workflow. Results are content-addressed by a stable hash of the
// normalized query, so identical queries are served from the cache without
// a second network call.
package evidence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/deep-research/internal/research"
	"github.com/sells-group/deep-research/pkg/jina"
)

// Cache is the subset of the store the provider needs.
type Cache interface {
	CacheGet(ctx context.Context, key string) (json.RawMessage, bool, error)
	CachePut(ctx context.Context, key string, value json.RawMessage) error
}

// Searcher implements research.Provider over the Jina search API with a
// read-through cache.
type Searcher struct {
	jina  jina.Client
	cache Cache
}

// NewSearcher creates a Searcher. cache may be nil to disable caching.
func NewSearcher(client jina.Client, cache Cache) *Searcher {
	return &Searcher{jina: client, cache: cache}
}

// Search returns at most limit evidence items for the keyword set. Any
// failure degrades to an empty result set; the caller's retry budget
// decides what happens next.
func (s *Searcher) Search(ctx context.Context, keywords []string, limit int) []research.EvidenceItem {
	query := strings.Join(keywords, " ")
	if strings.TrimSpace(query) == "" {
		return nil
	}

	key := CacheKey(query)
	log := zap.L().With(zap.String("query", query), zap.String("cache_key", key[:12]))

	if s.cache != nil {
		if raw, ok, err := s.cache.CacheGet(ctx, key); err != nil {
			log.Warn("evidence: cache read failed", zap.Error(err))
		} else if ok {
			var items []research.EvidenceItem
			if err := json.Unmarshal(raw, &items); err == nil {
				log.Debug("evidence: cache hit", zap.Int("items", len(items)))
				return bound(items, limit)
			}
			log.Warn("evidence: cache entry undecodable, refetching")
		}
	}

	resp, err := s.jina.Search(ctx, query)
	if err != nil {
		log.Warn("evidence: search failed", zap.Error(err))
		return nil
	}

	items := make([]research.EvidenceItem, 0, len(resp.Data))
	for _, r := range resp.Data {
		if r.URL == "" {
			continue
		}
		items = append(items, research.EvidenceItem{
			URL:   r.URL,
			Title: r.Title,
			Text:  r.Description,
		})
	}
	items = bound(items, limit)

	if s.cache != nil && len(items) > 0 {
		if raw, err := json.Marshal(items); err == nil {
			if err := s.cache.CachePut(ctx, key, raw); err != nil {
				log.Warn("evidence: cache write failed", zap.Error(err))
			}
		}
	}

	log.Debug("evidence: search complete", zap.Int("items", len(items)))
	return items
}

// CacheKey derives the content-addressed cache key for a query: sha256 of
// the normalized form.
func CacheKey(query string) string {
	sum := sha256.Sum256([]byte(Normalize(query)))
	return hex.EncodeToString(sum[:])
}

// Normalize canonicalizes a query so that trivially different spellings of
// the same search share a cache entry: NFKC form, case-folded, whitespace
// collapsed.
func Normalize(query string) string {
	s := norm.NFKC.String(query)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

func bound(items []research.EvidenceItem, limit int) []research.EvidenceItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
