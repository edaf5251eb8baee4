package crud

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ReferenceFetcher loads the full row list of one entity type; implemented
// by the IPAM API client.
type ReferenceFetcher interface {
	ListAll(ctx context.Context, t EntityType) ([]Record, error)
}

// ReferenceCache holds the rows of every entity type referenced by open
// forms and tables, keyed by entity type, for id-to-label resolution and
// picker option lists. Readers see each type's entry replaced atomically;
// a refresh never exposes a partially built list.
type ReferenceCache struct {
	fetcher ReferenceFetcher
	logger  *logrus.Logger

	mu   sync.RWMutex
	rows map[EntityType][]Record
}

func NewReferenceCache(fetcher ReferenceFetcher, logger *logrus.Logger) *ReferenceCache {
	return &ReferenceCache{
		fetcher: fetcher,
		logger:  logger,
		rows:    make(map[EntityType][]Record),
	}
}

// Load fetches the given entity types concurrently, one goroutine per type.
// A failure fetching one type yields an empty list for that type only; the
// rest of the cache is unaffected. The returned map carries the per-type
// failures (as ReferenceLoadError) and is empty on full success.
func (c *ReferenceCache) Load(ctx context.Context, types ...EntityType) map[EntityType]error {
	var (
		g        errgroup.Group
		failures sync.Map
	)
	for _, t := range types {
		g.Go(func() error {
			records, err := c.fetcher.ListAll(ctx, t)
			if err != nil {
				lerr := &ReferenceLoadError{Type: t, Err: err}
				if c.logger != nil {
					c.logger.WithError(lerr).Warnf("reference load failed for %s", t)
				}
				failures.Store(t, lerr)
				records = []Record{}
			}
			c.mu.Lock()
			c.rows[t] = records
			c.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[EntityType]error)
	failures.Range(func(k, v any) bool {
		out[k.(EntityType)] = v.(error)
		return true
	})
	return out
}

// Refresh force-reloads a single entity type, e.g. after a dependent form's
// successful submit.
func (c *ReferenceCache) Refresh(ctx context.Context, t EntityType) error {
	records, err := c.fetcher.ListAll(ctx, t)
	if err != nil {
		return &ReferenceLoadError{Type: t, Err: err}
	}
	c.mu.Lock()
	c.rows[t] = records
	c.mu.Unlock()
	return nil
}

// Invalidate drops the cached rows for an entity type so the next Load
// refetches them.
func (c *ReferenceCache) Invalidate(t EntityType) {
	c.mu.Lock()
	delete(c.rows, t)
	c.mu.Unlock()
}

// Rows returns the cached rows for an entity type, or nil when absent.
func (c *ReferenceCache) Rows(t EntityType) []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rows[t]
}

// Has reports whether the entity type has a (possibly empty) cached entry.
func (c *ReferenceCache) Has(t EntityType) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.rows[t]
	return ok
}

// Label resolves a referenced record's id to its display label. Falls back
// to the raw id when the record is not cached.
func (c *ReferenceCache) Label(t EntityType, id int64) string {
	for _, rec := range c.Rows(t) {
		recID, ok := rec.ID()
		if ok && recID == id {
			return RecordLabel(rec)
		}
	}
	return AsString(id)
}

// RecordLabel picks the display label of a record, preferring name, then
// rd, prefix, address, and finally the raw id.
func RecordLabel(rec Record) string {
	for _, key := range []string{"name", "rd", "prefix", "address"} {
		if s := AsString(rec[key]); s != "" {
			return s
		}
	}
	return AsString(rec["id"])
}
