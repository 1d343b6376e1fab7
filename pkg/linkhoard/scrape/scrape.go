package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"linkhoard/pkg/linkhoard/models"
)

// ErrNoContent is returned when every extraction tier comes up empty.
var ErrNoContent = errors.New("could not parse article content")

// FetchError wraps a transport-level failure (timeout, DNS, non-2xx).
// It is distinct from ErrNoContent so callers can tell "page unreachable"
// from "page reachable but unparseable".
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Content is the normalized result of extracting a page.
type Content struct {
	Title     string
	Content   string
	Excerpt   string
	SiteName  string
	MediaType models.MediaType
}

// Config contains scraper configuration
type Config struct {
	Timeout    time.Duration
	UserAgent  string
	TweetHosts []string
	VideoHosts []string
}

// DefaultConfig returns the default scraper configuration
func DefaultConfig() Config {
	return Config{
		Timeout:    10 * time.Second,
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		TweetHosts: []string{"twitter.com", "x.com"},
		VideoHosts: []string{"youtube.com", "youtu.be", "vimeo.com"},
	}
}

// Scraper fetches pages and extracts their readable content.
type Scraper struct {
	config Config
	client *http.Client
}

// New creates a new Scraper
func New(config Config) *Scraper {
	return &Scraper{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// DetectMediaType classifies a URL by host. Unrecognized hosts are articles.
func (s *Scraper) DetectMediaType(rawURL string) models.MediaType {
	u, err := url.Parse(rawURL)
	if err != nil {
		return models.MediaOther
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, h := range s.config.TweetHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return models.MediaTweet
		}
	}
	for _, h := range s.config.VideoHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return models.MediaVideo
		}
	}
	return models.MediaArticle
}

// Extract fetches rawURL and runs the extraction strategy for its media
// type. Tweets get the meta-tag synthesis strategy; every other variant
// falls back to the generic article strategy.
func (s *Scraper) Extract(ctx context.Context, rawURL string) (*Content, error) {
	body, err := s.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	mediaType := s.DetectMediaType(rawURL)
	switch mediaType {
	case models.MediaTweet:
		return tweetContent(doc, rawURL), nil
	case models.MediaArticle, models.MediaVideo, models.MediaOther:
		return articleContent(doc, rawURL, body, mediaType)
	default:
		return articleContent(doc, rawURL, body, models.MediaArticle)
	}
}

func (s *Scraper) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	return string(b), nil
}

// articleContent runs readability over the page, falling back to meta
// tags when no main article can be found.
func articleContent(doc *goquery.Document, rawURL, body string, mediaType models.MediaType) (*Content, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL: %w", err)
	}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(body), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return &Content{
			Title:     article.Title,
			Content:   article.TextContent,
			Excerpt:   article.Excerpt,
			SiteName:  article.SiteName,
			MediaType: mediaType,
		}, nil
	}

	meta := metaTags(doc)
	if meta["description"] == "" && meta["title"] == "" {
		return nil, ErrNoContent
	}

	title := meta["title"]
	if title == "" {
		title = "Untitled"
	}
	desc := meta["description"]
	if desc == "" {
		desc = meta["title"]
	}
	siteName := meta["site_name"]
	if siteName == "" {
		siteName = "Website"
	}
	return &Content{
		Title:     title,
		Content:   desc,
		Excerpt:   truncate(desc, 200),
		SiteName:  siteName,
		MediaType: mediaType,
	}, nil
}

// metaTags collects Open Graph and Twitter Card meta values keyed by
// their property name minus the og:/twitter: prefix.
func metaTags(doc *goquery.Document) map[string]string {
	meta := make(map[string]string)
	doc.Find(`meta[property^="og:"]`).Each(func(i int, s *goquery.Selection) {
		prop, _ := s.Attr("property")
		content, _ := s.Attr("content")
		meta[strings.TrimPrefix(prop, "og:")] = content
	})
	doc.Find(`meta[name^="twitter:"]`).Each(func(i int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		content, _ := s.Attr("content")
		meta[strings.TrimPrefix(name, "twitter:")] = content
	})
	return meta
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
