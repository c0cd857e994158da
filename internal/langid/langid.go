// Package langid infers ISO 639-1 language codes from file content.
package langid

import (
	"github.com/abadojack/whatlanggo"
)

// Detect returns the ISO 639-1 code of the dominant language in content, or
// an empty string when there is nothing to detect.
func Detect(content []byte) string {
	text := string(content)
	if text == "" {
		return ""
	}
	return whatlanggo.DetectLang(text).Iso6391()
}
