// Package inference turns a user's activity snapshot into a timezone and
// device-preference estimate. Analyze is a pure function: no shared state,
// safe to call concurrently for any users.
package inference

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/axz356574-a11y/Confession/internal/models"
)

// MinSamples is the smallest message count Analyze will work with. Below it
// the engine refuses to guess.
const MinSamples = 5

// ErrInsufficientData is returned when a record has fewer than MinSamples
// message timestamps.
var ErrInsufficientData = errors.New("not enough activity samples to estimate a timezone")

const (
	minOffset = -12
	maxOffset = 14

	// Local evening/night window the peak hour should land in: {18..23, 0, 1, 2}.
	eveningStart = 18
	eveningEnd   = 2

	// Candidates are scored by circular distance from 20:00 local.
	idealLocalHour = 20

	activeWindowRatio = 0.15
	maxTopHours       = 3
	maxCandidates     = 5

	// 9999-12-31T23:59:59Z. Timestamps outside (0, maxValidUnix] are skipped.
	maxValidUnix = 253402300799
)

// Analyze produces a TimezoneReport from one user's activity record.
// Malformed timestamps are skipped, not counted; they never abort the run.
func Analyze(rec models.ActivityRecord) (*models.TimezoneReport, error) {
	if len(rec.Messages) < MinSamples {
		return nil, ErrInsufficientData
	}

	report := &models.TimezoneReport{
		UserID:       rec.UserID,
		DeviceCounts: cloneCounts(rec.Devices),
	}

	for _, ts := range rec.Messages {
		if ts <= 0 || ts > maxValidUnix {
			report.SkippedSamples++
			continue
		}
		report.Histogram[time.Unix(ts, 0).UTC().Hour()]++
		report.TotalSamples++
	}

	report.TopHours = topHours(report.Histogram)
	peak := report.TopHours[0]
	report.ActiveWindow = activeWindow(report.Histogram, peak.Count)
	report.Candidates = offsetCandidates(peak.Hour)
	report.PrimaryDevice = primaryDevice(rec.Devices)
	report.Confidence = confidence(peak.Count, report.TotalSamples)

	return report, nil
}

// topHours sorts the 24 buckets by count descending. The stable sort over the
// 0..23 enumeration keeps the lower hour first on ties.
func topHours(hist [24]int) []models.HourCount {
	pairs := make([]models.HourCount, len(hist))
	for h, c := range hist {
		pairs[h] = models.HourCount{Hour: h, Count: c}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Count > pairs[j].Count
	})
	return pairs[:maxTopHours]
}

// activeWindow collapses all hours with at least 15% of the peak count into
// contiguous ranges. Ranges deliberately do not merge across the 23->0
// boundary; late-night activity is reported as two adjacent ranges.
func activeWindow(hist [24]int, peakCount int) []models.HourRange {
	if peakCount < 1 {
		peakCount = 1
	}
	threshold := int(math.Floor(float64(peakCount) * activeWindowRatio))
	if threshold < 1 {
		threshold = 1
	}

	var ranges []models.HourRange
	for h := 0; h < 24; h++ {
		if hist[h] < threshold {
			continue
		}
		if n := len(ranges); n > 0 && ranges[n-1].End == h-1 {
			ranges[n-1].End = h
		} else {
			ranges = append(ranges, models.HourRange{Start: h, End: h})
		}
	}
	return ranges
}

// offsetCandidates scans every whole-hour UTC offset and keeps those that
// place the peak hour in the local evening window, best-scored first.
func offsetCandidates(peakHour int) []models.OffsetCandidate {
	var out []models.OffsetCandidate
	for offset := minOffset; offset <= maxOffset; offset++ {
		local := mod24(peakHour + offset)
		if local < eveningStart && local > eveningEnd {
			continue
		}
		out = append(out, models.OffsetCandidate{
			Offset:    offset,
			LocalHour: local,
			Distance:  circularDistance(local, idealLocalHour),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out
}

// primaryDevice picks the strictly most-seen device. With no signals at all
// (empty map or all-zero counters) it reports Unknown rather than an
// arbitrary label. Exact ties fall back to lexicographic label order to keep
// reports deterministic.
func primaryDevice(devices map[string]int64) string {
	labels := make([]string, 0, len(devices))
	for label := range devices {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if devices[labels[i]] != devices[labels[j]] {
			return devices[labels[i]] > devices[labels[j]]
		}
		return labels[i] < labels[j]
	})
	if len(labels) == 0 || devices[labels[0]] == 0 {
		return models.DeviceUnknown
	}
	return labels[0]
}

// confidence is the replicated scoring heuristic: sample volume capped at
// 1000, scaled by how concentrated the peak is. Not a calibrated
// probability; it saturates at 100.
func confidence(peakCount, totalSamples int) int {
	prominence := float64(peakCount) / math.Max(1, float64(totalSamples))
	volume := math.Min(float64(totalSamples), 1000) / 10
	score := int(math.Floor(volume * prominence * 10))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

func mod24(h int) int {
	return ((h % 24) + 24) % 24
}

func circularDistance(a, b int) int {
	forward := mod24(a - b)
	backward := mod24(b - a)
	if backward < forward {
		return backward
	}
	return forward
}

func cloneCounts(devices map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(devices))
	for label, count := range devices {
		out[label] = count
	}
	return out
}
