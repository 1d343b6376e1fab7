// Package capture sequences the link ingestion pipeline: validate the
// URL, extract content, enrich it with an AI summary, persist with
// dedup by URL, then associate tags. It also hosts the reply-based tag
// and remove flows so both front-ends share one orchestration layer.
package capture

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"linkhoard/pkg/linkhoard/enrich"
	"linkhoard/pkg/linkhoard/models"
	"linkhoard/pkg/linkhoard/replyref"
	"linkhoard/pkg/linkhoard/repo"
	"linkhoard/pkg/linkhoard/scrape"
)

// ErrInvalidURL rejects input that does not parse as an absolute URL.
var ErrInvalidURL = errors.New("invalid URL")

// Extractor produces normalized content for a valid URL.
type Extractor interface {
	Extract(ctx context.Context, url string) (*scrape.Content, error)
}

// Enricher produces a best-effort summary and tag suggestions.
type Enricher interface {
	Summarize(ctx context.Context, text string) enrich.Result
}

// Result reports the outcome of a capture run.
type Result struct {
	Link          *models.Link
	AlreadyExists bool
	Tags          []string
	Enrichment    enrich.Result
}

// Service orchestrates the capture pipeline over injected dependencies.
type Service struct {
	repo      *repo.Repository
	extractor Extractor
	enricher  Enricher
	log       *logrus.Logger
}

// NewService creates a capture Service
func NewService(r *repo.Repository, extractor Extractor, enricher Enricher, log *logrus.Logger) *Service {
	return &Service{repo: r, extractor: extractor, enricher: enricher, log: log}
}

// Capture runs the full pipeline for rawURL. Extraction and validation
// failures abort before anything is persisted. Enrichment cannot fail
// the pipeline. When the URL is already stored, the existing record is
// returned untouched and tagging is skipped. Tag failures after a
// successful persist are logged, not propagated: the link is already
// saved and stays saved.
func (s *Service) Capture(ctx context.Context, rawURL string) (*Result, error) {
	if !replyref.IsValidURL(rawURL) {
		return nil, ErrInvalidURL
	}

	content, err := s.extractor.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	ai := s.enricher.Summarize(ctx, content.Content)

	link, created, err := s.repo.FindOrCreate(rawURL, models.Link{
		Title:       content.Title,
		Summary:     ai.Summary,
		ContentText: content.Content,
		MediaType:   content.MediaType,
	})
	if err != nil {
		return nil, err
	}

	if !created {
		return &Result{Link: link, AlreadyExists: true, Enrichment: ai}, nil
	}

	applied, err := s.repo.AddTags(link, ai.Tags)
	if err != nil {
		s.log.WithError(err).WithField("url", rawURL).Warn("tagging failed after save")
	}

	return &Result{Link: link, Tags: applied, Enrichment: ai}, nil
}

// ResolveURL recovers the target URL from a reply context.
func (s *Service) ResolveURL(msg replyref.Message) string {
	return replyref.ExtractURL(msg)
}

// TagLink attaches tags to the already-saved link for url. Returns
// repo.ErrNotFound when the URL was never captured.
func (s *Service) TagLink(url string, names []string) (*models.Link, []string, error) {
	link, err := s.repo.FindByURL(url)
	if err != nil {
		return nil, nil, err
	}
	applied, err := s.repo.AddTags(link, names)
	if err != nil {
		return nil, nil, err
	}
	return link, applied, nil
}

// Remove deletes the saved link for url, including tag associations.
// Returns repo.ErrNotFound when the URL was never captured.
func (s *Service) Remove(url string) (*models.Link, error) {
	link, err := s.repo.FindByURL(url)
	if err != nil {
		return nil, err
	}
	return s.repo.Delete(link.ID)
}
