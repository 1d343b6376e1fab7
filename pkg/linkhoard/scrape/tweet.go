package scrape

import (
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"linkhoard/pkg/linkhoard/models"
)

var (
	tweetIDRe   = regexp.MustCompile(`status/(\d+)`)
	tweetUserRe = regexp.MustCompile(`(?:twitter\.com|x\.com)/([^/]+)`)
)

// tweetContent synthesizes a record for tweet URLs from whatever meta
// tags the platform exposes. Twitter/X blocks generic scraping, so this
// never fails once the fetch itself succeeded.
func tweetContent(doc *goquery.Document, rawURL string) *Content {
	meta := metaTags(doc)

	username := "User"
	if m := tweetUserRe.FindStringSubmatch(rawURL); m != nil {
		username = m[1]
	}

	text := meta["description"]
	if text == "" {
		if id := tweetID(rawURL); id != "" {
			text = fmt.Sprintf("Tweet %s from @%s. Twitter/X content requires viewing on the platform.", id, username)
		} else {
			text = fmt.Sprintf("Tweet from @%s. Twitter/X content requires viewing on the platform.", username)
		}
	}

	return &Content{
		Title:     fmt.Sprintf("Tweet by @%s", username),
		Content:   text + "\n\nView original: " + rawURL,
		Excerpt:   truncate(text, 200),
		SiteName:  "Twitter/X",
		MediaType: models.MediaTweet,
	}
}

// tweetID extracts the numeric status ID from a tweet URL, if present.
func tweetID(rawURL string) string {
	if m := tweetIDRe.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}
