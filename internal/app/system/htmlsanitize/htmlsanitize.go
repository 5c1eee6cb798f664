// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag and attribute. Script and style contents are
// dropped entirely.
var strict = bluemonday.StrictPolicy()

// PlainText strips all markup from user-supplied free text and trims it.
// Entities escaped by the policy are decoded again so stored text reads the
// way the user typed it ("R&D" stays "R&D").
func PlainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// PlainTextPtr applies PlainText to an optional value.
func PlainTextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := PlainText(*s)
	return &v
}
