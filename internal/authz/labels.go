package authz

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// DisplayName renders a role tag for human display ("branch manager" →
// "Branch Manager"). The returned string is presentation only and must never
// be fed back into policy lookups.
func DisplayName(role string) string {
	role = normalize(role)
	if role == "" {
		return "Guest"
	}
	return titleCaser.String(role)
}
