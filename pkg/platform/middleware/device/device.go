// Package device turns a User-Agent header into the short device label stored
// on audit and error rows.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknown = "unknown"

// Describe returns "Browser Version on OS", "bot: Name", or "unknown".
func Describe(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return unknown
	}
	ua := useragent.New(userAgent)
	name, version := ua.Browser()
	if ua.Bot() {
		return "bot: " + name
	}

	var b strings.Builder
	if name != "" {
		b.WriteString(name)
		if version != "" {
			b.WriteString(" " + version)
		}
	}
	if os := ua.OS(); os != "" {
		if b.Len() > 0 {
			b.WriteString(" on ")
		}
		b.WriteString(os)
	}
	if ua.Mobile() {
		b.WriteString(" (mobile)")
	}
	if b.Len() == 0 {
		return unknown
	}
	return b.String()
}
