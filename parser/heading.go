package parser

import "strings"

// RepairHeading restores a leading markdown heading dropped by an edit. When
// the original text began with a heading line and the replacement does not,
// the heading is re-prepended; otherwise the replacement is returned as-is.
// This prevents structural corruption of a document under edit.
func RepairHeading(original, replacement string) string {
	heading, ok := leadingHeading(original)
	if !ok {
		return replacement
	}

	if _, replaced := leadingHeading(replacement); replaced {
		return replacement
	}

	if strings.TrimSpace(replacement) == "" {
		return heading
	}

	return heading + "\n\n" + strings.TrimLeft(replacement, "\n")
}

// leadingHeading returns the first line when it is a markdown ATX heading.
func leadingHeading(text string) (string, bool) {
	trimmed := strings.TrimLeft(text, "\n")
	line := trimmed
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		line = trimmed[:idx]
	}

	line = strings.TrimRight(line, " \t\r")
	if !strings.HasPrefix(line, "#") {
		return "", false
	}

	// Valid ATX heading: 1-6 '#' followed by a space.
	hashes := 0
	for hashes < len(line) && line[hashes] == '#' {
		hashes++
	}
	if hashes > 6 || hashes == len(line) || line[hashes] != ' ' {
		return "", false
	}

	return line, true
}
