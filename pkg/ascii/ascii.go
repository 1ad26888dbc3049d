// Package ascii lays out plain-text tables and boxes for terminal output.
package ascii

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Box builds a box containing the provided lines and returns it as a string.
// Lines are left-aligned with single-space padding on each side. Multi-width
// runes (emoji, CJK, etc.) are accounted for so the borders stay aligned.
func Box(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	trimmed := make([]string, len(lines))
	maxWidth := 0
	for i, line := range lines {
		trimmed[i] = strings.TrimRight(line, " ")
		if w := StringWidth(trimmed[i]); w > maxWidth {
			maxWidth = w
		}
	}

	innerWidth := maxWidth + 2
	border := strings.Repeat("─", innerWidth)

	var sb strings.Builder
	sb.WriteString("┌" + border + "┐\n")
	for _, line := range trimmed {
		sb.WriteString("│ " + runewidth.FillRight(line, maxWidth) + " │\n")
	}
	sb.WriteString("└" + border + "┘\n")
	return sb.String()
}

// Row is one key/value line of a Table.
type Row struct {
	Key   string
	Value string
}

// Table renders rows as "key  value" lines with the values aligned on the
// widest key. Keys keep their order.
func Table(rows []Row) []string {
	keyWidth := 0
	for _, r := range rows {
		if w := StringWidth(r.Key); w > keyWidth {
			keyWidth = w
		}
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Value == "" {
			lines = append(lines, strings.TrimRight(r.Key, " "))
			continue
		}
		lines = append(lines, runewidth.FillRight(r.Key, keyWidth)+"  "+r.Value)
	}
	return lines
}

// Truncate shortens value so that its display width fits within width. An
// ellipsis ("...") is appended when truncation occurs and there is space for it.
func Truncate(value string, width int) string {
	if width <= 0 {
		return ""
	}
	if StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

// StringWidth returns the display width of a string, accounting for
// multi-width Unicode characters (emoji, CJK, etc.).
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}
