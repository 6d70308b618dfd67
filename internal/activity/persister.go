package activity

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
)

// DefaultSaveInterval is how often the store is flushed to disk.
const DefaultSaveInterval = 30 * time.Second

// Persister keeps the store crash-tolerant within one save interval: it
// restores the snapshot at startup, rewrites it on a fixed timer, and
// performs one final flush when its context is cancelled. All I/O failures
// are logged and swallowed; the next tick retries.
type Persister struct {
	store    *Store
	path     string
	interval time.Duration
	logger   *zap.Logger
}

func NewPersister(store *Store, path string, interval time.Duration, logger *zap.Logger) *Persister {
	if interval <= 0 {
		interval = DefaultSaveInterval
	}
	return &Persister{
		store:    store,
		path:     path,
		interval: interval,
		logger:   logger,
	}
}

// Load restores the store from the durable snapshot. A missing or corrupt
// file is non-fatal: the store simply starts empty.
func (p *Persister) Load() {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if !os.IsNotExist(err) {
			p.logger.Warn("Failed to read activity snapshot, starting empty",
				zap.Error(err),
				zap.String("path", p.path))
		}
		return
	}

	if err := p.store.Load(data); err != nil {
		p.logger.Warn("Corrupt activity snapshot, starting empty",
			zap.Error(err),
			zap.String("path", p.path))
		return
	}

	p.logger.Info("Restored activity snapshot",
		zap.Int("users", p.store.Users()),
		zap.String("path", p.path))
}

// Run flushes on every tick until ctx is cancelled, then flushes one last
// time before returning. It is meant to run on its own goroutine for the
// lifetime of the process.
func (p *Persister) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.Flush()
		case <-ctx.Done():
			p.Flush()
			return
		}
	}
}

// Flush serializes the store and overwrites the durable snapshot. The export
// holds the store lock only while serializing; the disk write happens after
// the lock is released so recorders are never stalled on I/O.
func (p *Persister) Flush() {
	data, err := p.store.Export()
	if err != nil {
		p.logger.Warn("Failed to serialize activity store", zap.Error(err))
		return
	}
	if err := writeFileAtomic(p.path, data); err != nil {
		p.logger.Warn("Failed to write activity snapshot",
			zap.Error(err),
			zap.String("path", p.path))
	}
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// cannot corrupt the previous snapshot.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
