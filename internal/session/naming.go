package session

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxNameLen  = 40
	defaultName = "user"
	folderTime  = "02_01_2006_15_04"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Letters with a stroke do not decompose under NFKD
var strokeLetters = map[rune]rune{'đ': 'd', 'ø': 'o', 'ł': 'l', 'ħ': 'h'}

// Sanitize turns a display name into a folder-safe token: lower case, no diacritics,
// runs of other characters collapsed to "_", at most 40 characters, "user" when empty.
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(name string) string {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			if m, ok := strokeLetters[r]; ok {
				return m
			}
			return r
		}),
	)
	s := strings.ToLower(name)
	if out, _, err := transform.String(t, s); err == nil {
		s = strings.ToLower(out)
	}
	s = nonAlnum.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > maxNameLen {
		s = strings.TrimRight(s[:maxNameLen], "_")
	}
	if s == "" {
		return defaultName
	}
	return s
}

// FolderName is DD_MM_YYYY_HH_mm_<sanitized name> in the time zone of t
func FolderName(t time.Time, displayName string) string {
	return t.Format(folderTime) + "_" + Sanitize(displayName)
}
