package nlu

import "strings"

var punctReplacer = strings.NewReplacer(
	".", " ",
	",", " ",
	"!", " ",
	"?", " ",
	";", " ",
	":", " ",
)

// Normalize lowercases the text, replaces sentence punctuation with spaces
// and collapses runs of whitespace. It is idempotent, so every matching
// stage can call it without worrying about double application.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = punctReplacer.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}
