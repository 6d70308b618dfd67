package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/axz356574-a11y/Confession/internal/models"
)

// formatReport renders a TimezoneReport as a MarkdownV2 message with both a
// terse estimate and the raw counts behind it.
func formatReport(report *models.TimezoneReport, observed time.Duration) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("*Timezone Estimate for %d*\n\n", report.UserID))

	sb.WriteString("*Top hours \\(UTC\\):*\n")
	for _, hc := range report.TopHours {
		sb.WriteString(escapeMarkdown(fmt.Sprintf("%02d:00 — %d messages", hc.Hour, hc.Count)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n*Active window:* ")
	sb.WriteString(escapeMarkdown(formatRanges(report.ActiveWindow)))
	sb.WriteString("\n")

	sb.WriteString("\n*Candidate offsets:*\n")
	if len(report.Candidates) == 0 {
		sb.WriteString(escapeMarkdown("none (peak hour fits no evening window)"))
		sb.WriteString("\n")
	}
	for _, c := range report.Candidates {
		sb.WriteString(escapeMarkdown(fmt.Sprintf("%s → %02d:00 local (distance %d)",
			formatOffset(c.Offset), c.LocalHour, c.Distance)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n*Preferred device:* ")
	sb.WriteString(escapeMarkdown(formatDevices(report.PrimaryDevice, report.DeviceCounts)))
	sb.WriteString("\n")

	sb.WriteString(escapeMarkdown(fmt.Sprintf(
		"\nConfidence: %d/100 (heuristic)\nSamples: %d used, %d skipped\nObserved for: %.1f hours",
		report.Confidence, report.TotalSamples, report.SkippedSamples, observed.Hours())))

	return sb.String()
}

func formatRanges(ranges []models.HourRange) string {
	if len(ranges) == 0 {
		return "none"
	}
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		if r.Start == r.End {
			parts[i] = fmt.Sprintf("%02d:00 UTC", r.Start)
		} else {
			parts[i] = fmt.Sprintf("%02d:00-%02d:59 UTC", r.Start, r.End)
		}
	}
	return strings.Join(parts, ", ")
}

func formatOffset(offset int) string {
	return fmt.Sprintf("UTC%+d", offset)
}

func formatDevices(primary string, counts map[string]int64) string {
	var total int64
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return primary
	}
	return fmt.Sprintf("%s (%d of %d signals)", primary, counts[primary], total)
}

// escapeMarkdown escapes the characters MarkdownV2 treats as syntax.
func escapeMarkdown(text string) string {
	specialChars := []string{"_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}
