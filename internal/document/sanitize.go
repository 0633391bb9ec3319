package document

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	contentPolicyOnce sync.Once
	contentPolicy     *bluemonday.Policy
)

// sanitizeField strips unsafe markup from the rich-text content option of
// heading and paragraph fields. Other field types carry plain values and are
// left alone.
func sanitizeField(field *Field) {
	if field.Type != FieldTypeHeading && field.Type != FieldTypeParagraph {
		return
	}
	raw, ok := field.Options["content"].(string)
	if !ok {
		return
	}
	field.Options["content"] = sanitizeContent(raw)
}

func sanitizeContent(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(sanitizer().Sanitize(trimmed))
}

func sanitizer() *bluemonday.Policy {
	contentPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements(
			"b", "i", "em", "strong", "u", "s", "br", "p", "span",
			"ul", "ol", "li", "blockquote", "h1", "h2", "h3",
		)
		policy.AllowAttrs("href", "title").OnElements("a")
		policy.AllowElements("a")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(true)
		contentPolicy = policy
	})
	return contentPolicy
}
