// Package templates provides a set of standard functions that can be used in notification templates.
package templates

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/isometry/gh-sponsor-relay/internal/helpers"
)

// StandardFuncs is a map of standard functions that can be used in notification templates.
var StandardFuncs = template.FuncMap{
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"replace": func(old, new, s string) string { //nolint:revive // false positive
		return strings.ReplaceAll(s, old, new)
	},
	"truncate": func(n int, s string) string {
		return helpers.Truncate(s, n)
	},
	// yearly renders a monthly dollar amount as a yearly one.
	"yearly": func(monthly int64) int64 {
		return monthly * 12
	},
	"plural": func(n int64, singular, plural string) string {
		if n == 1 {
			return fmt.Sprintf("%d %s", n, singular)
		}
		return fmt.Sprintf("%d %s", n, plural)
	},
}
