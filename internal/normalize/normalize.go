package normalize

import (
	"html"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	linkPattern     = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern      = regexp.MustCompile(`https?://\S+|www\.\S+`)
	mentionPattern  = regexp.MustCompile(`@\w+|#`)
	htmlTagPattern  = regexp.MustCompile(`<[^>]+>`)
	nonAlnumPattern = regexp.MustCompile(`[^a-zA-Z0-9\s]+`)
)

// Clean builds the canonical scoring text for a post: title and body joined
// by a single space, markdown rendered away, URLs, @mentions and '#' markers
// removed, anything outside the alphanumeric-and-whitespace set dropped,
// then lowercased and trimmed. Pure and idempotent; any input, including
// two empty strings, yields a (possibly empty) string.
func Clean(title, body string) string {
	text := title + " " + body

	// Markdown links first so the link text survives the URL strip.
	text = linkPattern.ReplaceAllString(text, "$1")
	text = markdownToText(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = nonAlnumPattern.ReplaceAllString(text, "")

	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// markdownToText renders Reddit-flavored markdown and strips the resulting
// HTML tags, leaving plain text.
func markdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := htmlTagPattern.ReplaceAllString(string(output), " ")
	return html.UnescapeString(plain)
}
