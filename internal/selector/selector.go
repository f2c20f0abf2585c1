// Package selector turns a site's configured tag into a CSS query.
package selector

import "strings"

// reserved characters mark a token that is already a full query
const reserved = `.#:[>+~,*()"'=`

// Normalize returns the CSS query for a configured tag. A bare class name
// such as "posting" becomes ".posting"; anything containing a reserved
// character is returned as-is. ok is false for an empty or blank tag,
// meaning the site must not be scraped.
func Normalize(tag string) (query string, ok bool) {
	t := strings.TrimSpace(tag)
	if t == "" {
		return "", false
	}
	if strings.ContainsAny(t, reserved) {
		return t, true
	}
	return "." + t, true
}
