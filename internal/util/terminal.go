package util

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// MakeHyperlink creates a terminal hyperlink using OSC 8 escape sequences.
// Terminals without OSC 8 support print only displayText.
func MakeHyperlink(target, displayText string) string {
	return fmt.Sprintf("\033]8;;%s\a%s\033]8;;\a", target, displayText)
}

// FileLink links displayText to a local file.
func FileLink(path, displayText string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return displayText
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return MakeHyperlink(u.String(), displayText)
}

// TruncateText truncates s to maxLen runes, appending "…" if truncated.
func TruncateText(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}

// Rule is a horizontal separator for plain CLI output.
func Rule(width int) string {
	if width <= 0 {
		width = 49
	}
	return strings.Repeat("─", width)
}
