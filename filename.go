package coursedoc

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// SanitizeFileName turns a document title into a file name stem.
//
// The title is lowercased, every run of characters other than [a-z0-9]
// becomes a single underscore and leading/trailing underscores are dropped.
// A title without any letters or digits results in an empty string.
func SanitizeFileName(title string) string {
	s := strings.ToLower(title)
	s = nonAlnum.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// DefaultFileStem is used when a title sanitizes to an empty string.
const DefaultFileStem = "document"

// FileName builds the download name for a document with the given title
// and extension (without the dot).
func FileName(title, ext string) string {
	stem := SanitizeFileName(title)
	if stem == "" {
		stem = DefaultFileStem
	}
	return stem + "." + ext
}
