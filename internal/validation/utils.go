package validation

import (
	"mime"
	"strings"
)

// IsJSONContentType reports whether a Content-Type header announces JSON:
// application/json or any application/*+json type, parameters ignored.
func IsJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	if mediaType == "application/json" {
		return true
	}
	return strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")
}
