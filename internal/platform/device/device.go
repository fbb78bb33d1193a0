// Package device summarises the User-Agent of the phone or tablet that
// scanned a credential, for the structured validation log.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Summary is a coarse, non-identifying description of a client device.
type Summary struct {
	Browser string
	OS      string
	Mobile  bool
}

// String renders the summary as "Browser on OS".
func (s Summary) String() string {
	return s.Browser + " on " + s.OS
}

// Describe parses a User-Agent header. Empty or unrecognised parts are
// reported as "unknown".
func Describe(userAgent string) Summary {
	if strings.TrimSpace(userAgent) == "" {
		return Summary{Browser: "unknown", OS: "unknown"}
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()
	if ua.Mobile() && ua.Platform() != "" && os == "" {
		os = ua.Platform()
	}

	return Summary{
		Browser: orUnknown(browser),
		OS:      orUnknown(os),
		Mobile:  ua.Mobile(),
	}
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}
