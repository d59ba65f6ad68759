package services

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	previewPolicyOnce sync.Once
	previewPolicy     *bluemonday.Policy
)

// SanitizePreview strips scripts, event handlers and unknown markup from a
// rendered document before it is embedded in a page. The table fragments
// produced by Render survive unchanged.
func SanitizePreview(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return previewSanitizer().Sanitize(raw)
}

func previewSanitizer() *bluemonday.Policy {
	previewPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		policy.AllowAttrs("border", "cellpadding").OnElements("table")
		policy.AllowStyles("border-collapse", "width").OnElements("table")
		policy.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
		previewPolicy = policy
	})
	return previewPolicy
}
