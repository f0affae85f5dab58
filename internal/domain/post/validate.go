package post

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinTitleLength   = 5
	MinContentLength = 50
)

var imageURLPattern = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|gif|webp)(\?.*)?$`)

// TrimmedLen counts runes after trimming surrounding whitespace.
func TrimmedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// ValidImageRef accepts an http(s) image URL or an embedded data:image blob.
// The content itself is never inspected.
func ValidImageRef(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	if strings.HasPrefix(strings.ToLower(s), "data:image/") {
		return true
	}

	return imageURLPattern.MatchString(s)
}
