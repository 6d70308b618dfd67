package activity

import (
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Counter is the confession sequence number: a single persisted integer with
// the same failure semantics as the activity snapshot (missing or corrupt
// document resets to zero, write failures are logged and swallowed).
type Counter struct {
	mu     sync.Mutex
	count  int64
	path   string
	logger *zap.Logger
}

type counterDoc struct {
	Count int64 `json:"count"`
}

func NewCounter(path string, logger *zap.Logger) *Counter {
	return &Counter{path: path, logger: logger}
}

// Load restores the counter from disk. Missing or corrupt -> stays at zero.
func (c *Counter) Load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("Failed to read confession counter, resetting to 0",
				zap.Error(err),
				zap.String("path", c.path))
		}
		return
	}

	var doc counterDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		c.logger.Warn("Corrupt confession counter, resetting to 0",
			zap.Error(err),
			zap.String("path", c.path))
		return
	}

	c.mu.Lock()
	c.count = doc.Count
	c.mu.Unlock()
}

// Next increments the sequence and persists it best-effort, returning the
// new value.
func (c *Counter) Next() int64 {
	c.mu.Lock()
	c.count++
	n := c.count
	c.mu.Unlock()

	if err := c.Save(); err != nil {
		c.logger.Warn("Failed to persist confession counter",
			zap.Error(err),
			zap.String("path", c.path))
	}
	return n
}

// Value returns the current sequence number without advancing it.
func (c *Counter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Save writes the counter document to disk.
func (c *Counter) Save() error {
	c.mu.Lock()
	doc := counterDoc{Count: c.count}
	c.mu.Unlock()

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return writeFileAtomic(c.path, data)
}
