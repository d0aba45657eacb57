// Package text provides small string helpers shared by extraction, validation
// and generation.
package text

// CountRunes counts Unicode characters rather than bytes, so accented and
// non-Latin article text is measured the way a reader sees it.
//
//	CountRunes("hello")  // 5
//	CountRunes("café")   // 4
//	CountRunes("")       // 0
func CountRunes(text string) int {
	return len([]rune(text))
}

// Truncate returns at most limit runes of s. A non-positive limit returns s unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
