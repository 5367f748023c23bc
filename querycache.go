package dungeonecs

import "github.com/TheBitDrifter/mask"

type queryCacheKey struct {
	with    mask.Mask
	without mask.Mask
}

type queryCacheEntry struct {
	archetypes      []*Archetype
	countWhenCached int
}

// QueryCache memoizes which archetypes match a given (with, without) mask
// pair. Because archetypes are never destroyed once created, a cached
// entry is still valid as long as the graph's archetype count hasn't
// grown since it was computed; a growth means new archetypes may now
// match, so the entry is recomputed from scratch (cheap: a linear scan
// over all archetypes, which stays small in practice).
type QueryCache struct {
	graph   *archetypeGraph
	entries map[queryCacheKey]*queryCacheEntry
	hits    uint64
	misses  uint64
}

func newQueryCache(graph *archetypeGraph) *QueryCache {
	return &QueryCache{graph: graph, entries: make(map[queryCacheKey]*queryCacheEntry)}
}

// Resolve returns every archetype matching "carries every bit in with,
// carries none of without", recomputing if the graph has grown new
// archetypes since the last resolve for this key.
func (qc *QueryCache) Resolve(with, without mask.Mask) []*Archetype {
	key := queryCacheKey{with: with, without: without}
	entry, ok := qc.entries[key]
	currentCount := qc.graph.count()
	if ok && entry.countWhenCached == currentCount {
		qc.hits++
		return entry.archetypes
	}
	qc.misses++
	var matched []*Archetype
	for _, arche := range qc.graph.all() {
		if arche.mask.ContainsAll(with) && arche.mask.ContainsNone(without) {
			matched = append(matched, arche)
		}
	}
	qc.entries[key] = &queryCacheEntry{archetypes: matched, countWhenCached: currentCount}
	return matched
}

// InvalidateAll drops every cached entry, forcing the next Resolve of
// each key to recompute. Useful after bulk structural changes where
// per-call invalidation bookkeeping isn't worth it.
func (qc *QueryCache) InvalidateAll() {
	qc.entries = make(map[queryCacheKey]*queryCacheEntry)
}

// Stats returns (hits, misses) since the cache was created; InvalidateAll
// does not reset them.
func (qc *QueryCache) Stats() (hits, misses uint64) {
	return qc.hits, qc.misses
}
