package status

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	statusWidth = 12 // Width for status text
)

// 🎯 FormatFileOperation formats one source file for display
func FormatFileOperation(path string, status FileStatus) string {
	var prefix string
	switch status {
	case StatusTransferred:
		prefix = color.GreenString("✓")
	case StatusPending:
		prefix = color.YellowString("…")
	case StatusIgnored:
		prefix = color.HiBlackString("-")
	case StatusMissing:
		prefix = color.MagentaString("!")
	default:
		prefix = color.RedString("?")
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, path)
	statusPart := fmt.Sprintf("%-*s", statusWidth, status.String())

	return fmt.Sprintf("%s%s %s %s",
		strings.Repeat(" ", fileIndent),
		prefix,
		namePart,
		statusPart,
	)
}

// FormatProgress formats a progress message with percentage
func FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Transferred: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Transferred: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatMissing warns about recorded names absent from the target directory
func FormatMissing(count int, dir string) string {
	return fmt.Sprintf("⚠️  Missing from %s: %d recorded file(s)", dir, count)
}

// FormatError formats an error message with emoji
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
