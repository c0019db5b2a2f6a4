package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes all HTML tags and attributes. Event fields are plain text;
// anything resembling markup in a submission is stripped before storage.
var strict = bluemonday.StrictPolicy()

// Text strips all HTML from user-supplied text and trims whitespace.
func Text(input string) string {
	return strings.TrimSpace(strict.Sanitize(input))
}
