package activity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/axz356574-a11y/Confession/internal/models"
	"go.uber.org/zap"
)

// DefaultMaxSamples is the per-user cap on retained message timestamps.
const DefaultMaxSamples = 5000

// Store owns every per-user ActivityRecord. A single mutex guards the whole
// map: every read-modify-write (append + evict + last_seen) is atomic as a
// unit, and the exporter never observes a record mid-mutation. Coarse locking
// is a known scalability ceiling, acceptable at this sample volume.
type Store struct {
	mu         sync.RWMutex
	records    map[int64]*models.ActivityRecord
	maxSamples int
	logger     *zap.Logger
}

func NewStore(maxSamples int, logger *zap.Logger) *Store {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &Store{
		records:    make(map[int64]*models.ActivityRecord),
		maxSamples: maxSamples,
		logger:     logger,
	}
}

// getOrCreate must be called with the write lock held.
func (s *Store) getOrCreate(userID int64) *models.ActivityRecord {
	rec, ok := s.records[userID]
	if !ok {
		rec = &models.ActivityRecord{
			UserID:  userID,
			Devices: make(map[string]int64),
		}
		s.records[userID] = rec
	}
	return rec
}

// RecordMessage appends a message timestamp for the user, evicting the oldest
// entries beyond the capacity bound. The record is created on first touch.
func (s *Store) RecordMessage(userID, ts int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.getOrCreate(userID)
	rec.Messages = append(rec.Messages, ts)
	if overflow := len(rec.Messages) - s.maxSamples; overflow > 0 {
		rec.Messages = append(rec.Messages[:0], rec.Messages[overflow:]...)
	}
	rec.LastSeen = ts
}

// RecordDevicePresence counts one presence signal for the given device label.
// Labels are free-form; unknown labels are tracked, never rejected.
func (s *Store) RecordDevicePresence(userID int64, device string, ts int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.getOrCreate(userID)
	rec.Devices[device]++
	rec.LastSeen = ts
}

// Snapshot returns a deep copy of the user's record, or ok=false if the user
// has never been recorded. Callers never see the live record, so a slow
// consumer cannot observe a torn read or block writers.
func (s *Store) Snapshot(userID int64) (models.ActivityRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	if !ok {
		return models.ActivityRecord{}, false
	}
	return cloneRecord(rec), true
}

// Users returns the number of tracked users.
func (s *Store) Users() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Export serializes the whole store as the durable activity document:
// a map from stringified user ID to {messages, devices, last_seen}.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := make(map[string]*models.ActivityRecord, len(s.records))
	for id, rec := range s.records {
		doc[strconv.FormatInt(id, 10)] = rec
	}
	return json.Marshal(doc)
}

// Load replaces the store contents with a previously exported document.
// Records longer than the capacity bound are truncated to their most recent
// samples on the way in.
func (s *Store) Load(data []byte) error {
	var doc map[string]models.ActivityRecord
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode activity document: %w", err)
	}

	records := make(map[int64]*models.ActivityRecord, len(doc))
	for key, rec := range doc {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("decode activity document: bad user key %q: %w", key, err)
		}
		rec := rec
		rec.UserID = id
		if rec.Devices == nil {
			rec.Devices = make(map[string]int64)
		}
		if overflow := len(rec.Messages) - s.maxSamples; overflow > 0 {
			rec.Messages = rec.Messages[overflow:]
		}
		records[id] = &rec
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	s.logger.Debug("Activity store loaded", zap.Int("users", len(records)))
	return nil
}

func cloneRecord(rec *models.ActivityRecord) models.ActivityRecord {
	out := models.ActivityRecord{
		UserID:   rec.UserID,
		Messages: make([]int64, len(rec.Messages)),
		Devices:  make(map[string]int64, len(rec.Devices)),
		LastSeen: rec.LastSeen,
	}
	copy(out.Messages, rec.Messages)
	for label, count := range rec.Devices {
		out.Devices[label] = count
	}
	return out
}
