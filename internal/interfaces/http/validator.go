package http

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString removes null bytes and invalid UTF-8 from inbound text.
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return s
}
