package normalization

import "strings"

// frameAliases maps legacy frame type spellings onto their canonical name.
// Older web clients still register with "register" instead of "auth".
var frameAliases = map[string]string{
	"register": "auth",
	"login":    "auth",
	"msg":      "message",
	"chat":     "message",
}

// FrameType lowercases and trims a wire frame type and resolves legacy aliases.
func FrameType(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := frameAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// ID trims surrounding whitespace from user supplied identifiers.
func ID(raw string) string {
	return strings.TrimSpace(raw)
}

// FirstNonEmpty returns the first value with content after trimming.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
