package activity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T, maxSamples int) *Store {
	t.Helper()
	return NewStore(maxSamples, zap.NewNop())
}

func TestRecordMessage_BoundedGrowth(t *testing.T) {
	store := newTestStore(t, 10)

	for ts := int64(1); ts <= 25; ts++ {
		store.RecordMessage(42, ts)

		rec, ok := store.Snapshot(42)
		require.True(t, ok)
		assert.LessOrEqual(t, len(rec.Messages), 10, "capacity bound must hold after every call")
	}

	rec, ok := store.Snapshot(42)
	require.True(t, ok)
	require.Len(t, rec.Messages, 10)

	// Exactly the most recent insertions survive, in arrival order.
	for i, ts := range rec.Messages {
		assert.Equal(t, int64(16+i), ts)
	}
	assert.Equal(t, int64(25), rec.LastSeen)
}

func TestRecordDevicePresence_CountsPerLabel(t *testing.T) {
	store := newTestStore(t, 100)

	store.RecordDevicePresence(7, "mobile", 100)
	store.RecordDevicePresence(7, "mobile", 101)
	store.RecordDevicePresence(7, "mobile", 102)
	store.RecordDevicePresence(7, "desktop", 103)
	store.RecordDevicePresence(7, "smart-fridge", 104)

	rec, ok := store.Snapshot(7)
	require.True(t, ok)
	assert.Equal(t, int64(3), rec.Devices["mobile"])
	assert.Equal(t, int64(1), rec.Devices["desktop"])
	assert.Equal(t, int64(1), rec.Devices["smart-fridge"], "unknown labels are tracked, not dropped")
	assert.Equal(t, int64(104), rec.LastSeen)
}

func TestSnapshot_MissingUser(t *testing.T) {
	store := newTestStore(t, 10)

	_, ok := store.Snapshot(999)
	assert.False(t, ok)
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	store := newTestStore(t, 10)
	store.RecordMessage(1, 100)
	store.RecordDevicePresence(1, "web", 101)

	rec, ok := store.Snapshot(1)
	require.True(t, ok)

	// Mutating the snapshot must not leak back into the store.
	rec.Messages[0] = 777
	rec.Devices["web"] = 999

	fresh, ok := store.Snapshot(1)
	require.True(t, ok)
	assert.Equal(t, int64(100), fresh.Messages[0])
	assert.Equal(t, int64(1), fresh.Devices["web"])
}

func TestExportLoad_RoundTrip(t *testing.T) {
	store := newTestStore(t, 100)
	store.RecordMessage(1, 100)
	store.RecordMessage(1, 200)
	store.RecordMessage(2, 300)
	store.RecordDevicePresence(1, "mobile", 250)
	store.RecordDevicePresence(2, "desktop", 350)

	data, err := store.Export()
	require.NoError(t, err)

	restored := newTestStore(t, 100)
	require.NoError(t, restored.Load(data))

	assert.Equal(t, 2, restored.Users())

	rec1, ok := restored.Snapshot(1)
	require.True(t, ok)
	assert.Equal(t, []int64{100, 200}, rec1.Messages)
	assert.Equal(t, int64(1), rec1.Devices["mobile"])
	assert.Equal(t, int64(250), rec1.LastSeen)

	rec2, ok := restored.Snapshot(2)
	require.True(t, ok)
	assert.Equal(t, []int64{300}, rec2.Messages)
	assert.Equal(t, int64(1), rec2.Devices["desktop"])
}

func TestLoad_CorruptDocument(t *testing.T) {
	store := newTestStore(t, 10)

	err := store.Load([]byte("{not json"))
	assert.Error(t, err)
	assert.Equal(t, 0, store.Users())
}

func TestLoad_BadUserKey(t *testing.T) {
	store := newTestStore(t, 10)

	err := store.Load([]byte(`{"not-a-number": {"messages": [], "devices": {}, "last_seen": 0}}`))
	assert.Error(t, err)
}

func TestLoad_TruncatesToCapacity(t *testing.T) {
	store := newTestStore(t, 3)

	doc := []byte(`{"5": {"messages": [1,2,3,4,5,6], "devices": {}, "last_seen": 6}}`)
	require.NoError(t, store.Load(doc))

	rec, ok := store.Snapshot(5)
	require.True(t, ok)
	assert.Equal(t, []int64{4, 5, 6}, rec.Messages, "only the most recent samples survive a load")
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := newTestStore(t, 5000)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				store.RecordMessage(1, int64(w*1000+i))
				store.RecordDevicePresence(1, "mobile", int64(w*1000+i))
			}
		}()
	}

	// Concurrent readers and exporters must never see a torn record.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if rec, ok := store.Snapshot(1); ok {
				_ = rec.Messages
			}
			_, _ = store.Export()
		}
	}()

	wg.Wait()

	rec, ok := store.Snapshot(1)
	require.True(t, ok)
	assert.Len(t, rec.Messages, 400)
	assert.Equal(t, int64(400), rec.Devices["mobile"])
}
