package grader

import "strings"

// cleaner strips the characters students and spreadsheet number formats
// commonly wrap around numeric answers.
var cleaner = strings.NewReplacer("$", "", ",", "")

// Normalize canonicalizes a raw cell value for comparison. Currency
// symbols and thousands separators are removed and surrounding
// whitespace is trimmed, so "$1,234.50" normalizes to "1234.50". A
// blank or whitespace-only value normalizes to the empty string, which
// marks the cell as having no answer.
//
// Normalize is idempotent: normalizing an already normalized value
// returns it unchanged.
func Normalize(value string) string {
	return strings.TrimSpace(cleaner.Replace(value))
}

// IsEmpty reports whether a normalized value is the no-answer marker.
// Only blank and whitespace-only cells normalize to it; "0" and "false"
// normalize to themselves and are real answers.
func IsEmpty(value string) bool {
	return value == ""
}
