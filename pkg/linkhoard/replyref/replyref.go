// Package replyref recovers a canonical URL from a reply-style message
// context. Tagging and removal commands are issued as replies to an
// earlier message, which may present the URL as plain text, as a rich
// text entity, or as a raw prefix line.
package replyref

import (
	"net/url"
	"strings"
)

// Entity types as used by chat platforms for URL spans.
const (
	EntityURL      = "url"
	EntityTextLink = "text_link"
)

// Entity is a span annotation attached to a message.
type Entity struct {
	Type   string
	Offset int
	Length int
	URL    string
}

// Message is the reply context a command was issued against.
type Message struct {
	Text     string
	Entities []Entity
}

// IsValidURL reports whether s parses as an absolute URL with both a
// scheme and a host. Relative paths and bare words are rejected.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// ExtractURL resolves the URL a message refers to. Resolution order:
//
//  1. the whole text, if it is itself a valid URL
//  2. the first url/text_link entity, in entity order
//  3. the first line of the text, if the text starts with "http"
//
// The ordering matters: plain visible text beats annotations, which
// beat the raw-prefix heuristic. Returns "" when nothing matches.
func ExtractURL(msg Message) string {
	if IsValidURL(msg.Text) {
		return msg.Text
	}

	for _, e := range msg.Entities {
		switch e.Type {
		case EntityTextLink:
			return e.URL
		case EntityURL:
			return sliceText(msg.Text, e.Offset, e.Length)
		}
	}

	if strings.HasPrefix(msg.Text, "http") {
		line, _, _ := strings.Cut(msg.Text, "\n")
		return strings.TrimSpace(line)
	}

	return ""
}

// sliceText extracts [offset, offset+length) from text, clamped to its
// bounds.
func sliceText(text string, offset, length int) string {
	r := []rune(text)
	if offset < 0 || offset >= len(r) || length <= 0 {
		return ""
	}
	end := offset + length
	if end > len(r) {
		end = len(r)
	}
	return string(r[offset:end])
}
