package security

import "github.com/microcosm-cc/bluemonday"

// ContentSanitizer strips dangerous markup from user-authored article
// content before it is stored.
type ContentSanitizer struct {
	policy *bluemonday.Policy
}

func NewContentSanitizer() *ContentSanitizer {
	return &ContentSanitizer{policy: bluemonday.UGCPolicy()}
}

func (s *ContentSanitizer) Sanitize(content string) string {
	return s.policy.Sanitize(content)
}
