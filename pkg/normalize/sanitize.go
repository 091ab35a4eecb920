package normalize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// sanitizeText strips embedded markup from oracle-supplied display strings.
// Strings without markup pass through untouched so a clean schema survives a
// serialize/normalize round trip byte for byte.
func sanitizeText(raw string) string {
	if !strings.Contains(raw, "<") {
		return raw
	}
	policy := strictTextPolicy()
	return html.UnescapeString(policy.Sanitize(raw))
}

func strictTextPolicy() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
