package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateSessionID validates a session identifier for safety.
// Session IDs end up in file names and storage keys, so the rules are
// conservative:
//   - No empty IDs
//   - Maximum length of 128 characters
//   - No control characters or null bytes
//   - No path separators or traversal sequences
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "session id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "session id contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "session id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// featureIDRegex matches display IDs such as "polygon-3".
var featureIDRegex = regexp.MustCompile(`^(point|polyline|polygon)-[1-9][0-9]*$`)

// ValidateFeatureID validates a feature display ID.
func ValidateFeatureID(id string) error {
	if !featureIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid feature id: %q", id)
	}
	return nil
}

// ValidateLanguage validates a language tag against the message catalog.
// An empty tag is accepted and means the default language.
func ValidateLanguage(lang string) error {
	if lang == "" {
		return nil
	}
	if _, ok := catalog[strings.ToLower(lang)]; !ok {
		return New(ErrCodeInvalidInput, "unsupported language %q (must be %s)", lang, strings.Join(Languages(), " or "))
	}
	return nil
}
