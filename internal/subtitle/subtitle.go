package subtitle

import (
	"fmt"
	"strings"

	"vidscribe/models"
)

// FormatVTTTimestamp renders a position in seconds as HH:MM:SS.mmm.
func FormatVTTTimestamp(seconds float64) string {
	return formatTimestamp(seconds, '.')
}

// FormatSRTTimestamp renders a position in seconds as HH:MM:SS,mmm.
func FormatSRTTimestamp(seconds float64) string {
	return formatTimestamp(seconds, ',')
}

func formatTimestamp(seconds float64, sep byte) string {
	whole := int(seconds)
	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60
	millis := int((seconds - float64(whole)) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, secs, sep, millis)
}

// FormatVTT renders the segment list as a WebVTT document. Cues are numbered
// from 1 in list order.
func FormatVTT(segments []models.Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", FormatVTTTimestamp(seg.Start), FormatVTTTimestamp(seg.End))
		b.WriteString(strings.TrimSpace(seg.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// FormatSRT renders the segment list as an SRT document.
func FormatSRT(segments []models.Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", FormatSRTTimestamp(seg.Start), FormatSRTTimestamp(seg.End))
		b.WriteString(strings.TrimSpace(seg.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}
