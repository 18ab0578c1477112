package parser

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize collapses every run of whitespace (tabs and NBSP included) into a
// single space and trims the ends. Composed and decomposed accents produce the
// same output, so names compare equal across exports.
func Normalize(line string) string {
	return strings.Join(strings.Fields(norm.NFC.String(line)), " ")
}

// normalizeNewlines turns CRLF and lone CR line endings into LF.
func normalizeNewlines(text string) string {
	if !strings.ContainsRune(text, '\r') {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
