package utils

// Truncate returns s truncated to at most maxRunes runes, with "..." appended
// when truncation happened. If maxRunes is 0 or negative, s is returned
// unchanged. Truncation is rune-safe so multi-byte text is never cut mid
// character.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
