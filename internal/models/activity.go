package models

// Well-known device labels. The store accepts any free-form label; these are
// just the ones the event sources are expected to produce.
const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
	DeviceWeb     = "web"
)

// DeviceUnknown is reported as the primary device when no device signal has
// ever been recorded for a user.
const DeviceUnknown = "Unknown"

// ActivityRecord holds the accumulated activity of a single user: a bounded
// log of message timestamps (Unix seconds, arrival order) and per-device
// presence counters. The JSON tags define the durable snapshot layout.
type ActivityRecord struct {
	UserID   int64            `json:"-"`
	Messages []int64          `json:"messages"`
	Devices  map[string]int64 `json:"devices"`
	LastSeen int64            `json:"last_seen"`
}

// OldestSample returns the earliest retained message timestamp. The second
// return is false when no messages have been recorded.
func (r ActivityRecord) OldestSample() (int64, bool) {
	if len(r.Messages) == 0 {
		return 0, false
	}
	oldest := r.Messages[0]
	for _, ts := range r.Messages[1:] {
		if ts < oldest {
			oldest = ts
		}
	}
	return oldest, true
}
