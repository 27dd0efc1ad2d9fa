package stringutil

import "regexp"

var (
	unsafeFilenameChars = regexp.MustCompile(`[/\\?%*:|"<>]`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
)

// SanitizeFilename makes a display name safe for use in a storage path.
// It strips / \ ? % * : | " < > and collapses whitespace runs to a single
// underscore. Case and other characters are preserved.
func SanitizeFilename(name string) string {
	s := unsafeFilenameChars.ReplaceAllString(name, "")
	return whitespaceRun.ReplaceAllString(s, "_")
}
