package adjudication

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/duelogic/duelogic/internal/models"
)

// cacheEntry holds a computed evaluation and the method that produced it.
type cacheEntry struct {
	evaluation models.ResponseEvaluation
	method     models.EvaluationMethod
}

// evaluationCache makes repeated evaluation of the same response idempotent
// and free. Entries live for the process lifetime or until cleared; response
// content is treated as immutable once evaluated, so there is no TTL.
type evaluationCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func newEvaluationCache() *evaluationCache {
	return &evaluationCache{
		entries: make(map[string]cacheEntry),
	}
}

// cacheKey derives a stable identity for a (chair position, response
// content) pair.
func cacheKey(position, content string) string {
	sum := sha256.Sum256([]byte(position + "\x00" + content))
	return hex.EncodeToString(sum[:])
}

func (c *evaluationCache) get(key string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	return entry, ok
}

func (c *evaluationCache) put(key string, evaluation models.ResponseEvaluation, method models.EvaluationMethod) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{evaluation: evaluation, method: method}
}

func (c *evaluationCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func (c *evaluationCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CacheStats describes the current state of an evaluation cache.
type CacheStats struct {
	Size     int                             `json:"size"`
	ByMethod map[models.EvaluationMethod]int `json:"by_method"`
}

func (c *evaluationCache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := CacheStats{
		Size:     len(c.entries),
		ByMethod: make(map[models.EvaluationMethod]int),
	}
	for _, entry := range c.entries {
		stats.ByMethod[entry.method]++
	}
	return stats
}
