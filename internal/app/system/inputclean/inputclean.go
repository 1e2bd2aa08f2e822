// internal/app/system/inputclean/inputclean.go

// Package inputclean strips markup from participant-supplied text.
//
// Board names, rank names and card text are echoed back to every
// participant on the board, so they are sanitized on the way in rather
// than trusted on the way out.
package inputclean

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text removes all HTML from s and trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
