package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/axz356574-a11y/Confession/internal/models"
)

func TestFormatRanges(t *testing.T) {
	assert.Equal(t, "none", formatRanges(nil))
	assert.Equal(t, "07:00 UTC", formatRanges([]models.HourRange{{Start: 7, End: 7}}))
	assert.Equal(t, "00:00-01:59 UTC, 23:00 UTC", formatRanges([]models.HourRange{
		{Start: 0, End: 1},
		{Start: 23, End: 23},
	}))
}

func TestFormatOffset(t *testing.T) {
	assert.Equal(t, "UTC+2", formatOffset(2))
	assert.Equal(t, "UTC-7", formatOffset(-7))
	assert.Equal(t, "UTC+0", formatOffset(0))
}

func TestFormatDevices(t *testing.T) {
	assert.Equal(t, "Unknown", formatDevices("Unknown", nil))
	assert.Equal(t, "Unknown", formatDevices("Unknown", map[string]int64{"mobile": 0}))
	assert.Equal(t, "mobile (3 of 4 signals)", formatDevices("mobile", map[string]int64{"mobile": 3, "desktop": 1}))
}

func TestFormatReport(t *testing.T) {
	report := &models.TimezoneReport{
		UserID:        1234,
		TopHours:      []models.HourCount{{Hour: 3, Count: 4}, {Hour: 20, Count: 2}, {Hour: 0, Count: 0}},
		ActiveWindow:  []models.HourRange{{Start: 3, End: 3}, {Start: 20, End: 20}},
		Candidates:    []models.OffsetCandidate{{Offset: -7, LocalHour: 20, Distance: 0}},
		PrimaryDevice: "mobile",
		DeviceCounts:  map[string]int64{"mobile": 3, "desktop": 1},
		Confidence:    40,
		TotalSamples:  6,
	}

	text := formatReport(report, 72*time.Hour)

	assert.Contains(t, text, "Timezone Estimate for 1234")
	assert.Contains(t, text, escapeMarkdown("03:00 — 4 messages"))
	assert.Contains(t, text, escapeMarkdown("UTC-7 → 20:00 local (distance 0)"))
	assert.Contains(t, text, escapeMarkdown("mobile (3 of 4 signals)"))
	assert.Contains(t, text, escapeMarkdown("40/100 (heuristic)"))
	assert.Contains(t, text, escapeMarkdown("72.0 hours"))
}

func TestFormatReport_NoCandidates(t *testing.T) {
	report := &models.TimezoneReport{
		UserID:        9,
		TopHours:      []models.HourCount{{Hour: 11, Count: 5}},
		PrimaryDevice: models.DeviceUnknown,
	}

	text := formatReport(report, 49*time.Hour)
	assert.Contains(t, text, escapeMarkdown("none (peak hour fits no evening window)"))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `a\_b\*c\(d\)e\.f\-g`, escapeMarkdown("a_b*c(d)e.f-g"))
	assert.Equal(t, "plain text", escapeMarkdown("plain text"))
}
