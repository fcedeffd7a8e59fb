package retrieve

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"reqsmith/internal/domain"
	"reqsmith/internal/port"
)

// Cached wraps a Retriever with an in-memory TTL cache. Retrieval results
// for a fixed key are referentially stable within a run, so last-writer-wins
// under concurrent population is acceptable. Only successful retrievals are
// cached; transport failures always reach the underlying retriever again.
type Cached struct {
	inner port.Retriever
	cache *gocache.Cache
	ttl   time.Duration
}

// NewCached creates a caching wrapper with the given TTL.
func NewCached(inner port.Retriever, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cached{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (c *Cached) Retrieve(ctx context.Context, fieldKey string, qc port.QueryContext) ([]domain.KnowledgeEntry, error) {
	key := cacheKey(fieldKey, qc)
	if cached, found := c.cache.Get(key); found {
		return cached.([]domain.KnowledgeEntry), nil
	}

	entries, err := c.inner.Retrieve(ctx, fieldKey, qc)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, entries, c.ttl)
	return entries, nil
}

// cacheKey hashes the field key and document context so two documents never
// share cache lines.
func cacheKey(fieldKey string, qc port.QueryContext) string {
	h := sha256.New()
	h.Write([]byte(fieldKey))
	h.Write([]byte{0})
	h.Write([]byte(qc.DocumentText))
	return "reqsmith:v1:" + hex.EncodeToString(h.Sum(nil))
}

var _ port.Retriever = (*Cached)(nil)
