package bot

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axz356574-a11y/Confession/internal/models"
)

func TestIsAdmin(t *testing.T) {
	b := &Bot{cfg: Config{AdminIDs: []int64{10, 20, 30}}}

	assert.True(t, b.isAdmin(20))
	assert.False(t, b.isAdmin(21))
	assert.False(t, (&Bot{}).isAdmin(10))
}

func TestObservedFor(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := models.ActivityRecord{
		Messages: []int64{
			now.Add(-72 * time.Hour).Unix(),
			now.Add(-1 * time.Hour).Unix(),
		},
	}
	assert.Equal(t, 72*time.Hour, observedFor(rec, now))

	fresh := models.ActivityRecord{
		Messages: []int64{now.Add(-time.Hour).Unix()},
	}
	assert.Less(t, observedFor(fresh, now), MinObservation)

	// No samples, or samples from the future, count as unobserved.
	assert.Equal(t, time.Duration(0), observedFor(models.ActivityRecord{}, now))
	future := models.ActivityRecord{Messages: []int64{now.Add(time.Hour).Unix()}}
	assert.Equal(t, time.Duration(0), observedFor(future, now))
}

func TestObservedFor_UsesEarliestSample(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// Samples arrive slightly out of order; the gate still keys off the
	// earliest one retained.
	rec := models.ActivityRecord{
		Messages: []int64{
			now.Add(-10 * time.Hour).Unix(),
			now.Add(-50 * time.Hour).Unix(),
			now.Add(-20 * time.Hour).Unix(),
		},
	}
	assert.Equal(t, 50*time.Hour, observedFor(rec, now))
	assert.GreaterOrEqual(t, observedFor(rec, now), MinObservation)
}

func TestTargetUserID(t *testing.T) {
	id, err := targetUserID("123456", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(123456), id)

	_, err = targetUserID("not-a-number", nil)
	assert.Error(t, err)

	reply := &tgbotapi.Message{From: &tgbotapi.User{ID: 789}}
	id, err = targetUserID("", reply)
	require.NoError(t, err)
	assert.Equal(t, int64(789), id)

	// Explicit argument wins over the replied-to author.
	id, err = targetUserID("42", reply)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = targetUserID("", nil)
	assert.Error(t, err)
}

func TestPendingFlow(t *testing.T) {
	b := &Bot{pending: make(map[int64]pendingKind)}

	assert.Equal(t, pendingNone, b.takePending(5))

	b.setPending(5, pendingConfession)
	assert.Equal(t, pendingConfession, b.takePending(5))
	assert.Equal(t, pendingNone, b.takePending(5), "pending state is consumed once")

	b.setPending(5, pendingConfession)
	b.setPending(5, pendingReply)
	assert.Equal(t, pendingReply, b.takePending(5), "latest button press wins")
}
