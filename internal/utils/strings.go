package utils

import (
	"regexp"
	"strings"
)

const maxFilenameLength = 100

var (
	unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
)

// CleanFilename strips characters that are unsafe in file names, collapses
// whitespace and caps the result at 100 characters. An empty result becomes
// "download".
func CleanFilename(name string) string {
	cleaned := unsafeFilenameChars.ReplaceAllString(name, "")
	cleaned = strings.TrimSpace(whitespaceRun.ReplaceAllString(cleaned, " "))
	cleaned = Truncate(cleaned, maxFilenameLength)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "download"
	}
	return cleaned
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
