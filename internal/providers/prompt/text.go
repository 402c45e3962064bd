package prompt

import "unicode/utf8"

// TruncatedSuffix marks content cut by Truncate.
const TruncatedSuffix = "... [conteúdo truncado]"

// Truncate keeps the first max runes of s and appends TruncatedSuffix when it cut anything.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return cutRunes(s, max) + TruncatedSuffix
}

// Excerpt returns at most max runes of s without a suffix.
func Excerpt(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return cutRunes(s, max)
}

func cutRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
