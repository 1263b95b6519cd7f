package app

import (
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const ellipsis = "..."

// ExtractSnippet returns the part of text around the first case-insensitive occurrence of
// query, keeping about contextLength/2 runes on each side and marking truncated sides with
// an ellipsis. Without an occurrence it returns the first contextLength runes and an ellipsis.
func ExtractSnippet(text, query string, contextLength int) string {
	runes := []rune(norm.NFC.String(text))
	needle := []rune(norm.NFC.String(query))

	index := indexFold(runes, needle)
	if index < 0 {
		end := contextLength
		if end > len(runes) {
			end = len(runes)
		}
		if end < 0 {
			end = 0
		}
		return string(runes[:end]) + ellipsis
	}

	// odd lengths give the extra rune to the left side
	start := index - (contextLength+1)/2
	if start < 0 {
		start = 0
	}
	end := index + len(needle) + contextLength/2
	if end > len(runes) {
		end = len(runes)
	}

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = ellipsis + snippet
	}
	if end < len(runes) {
		snippet += ellipsis
	}
	return snippet
}

// indexFold is a rune-wise, lower-cased substring search.
func indexFold(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, r := range needle {
			if unicode.ToLower(haystack[i+j]) != unicode.ToLower(r) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
