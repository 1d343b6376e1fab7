package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"linkhoard/pkg/linkhoard/enrich"
	"linkhoard/pkg/linkhoard/models"
	"linkhoard/pkg/linkhoard/replyref"
	"linkhoard/pkg/linkhoard/repo"
	"linkhoard/pkg/linkhoard/scrape"
)

type stubExtractor struct {
	content *scrape.Content
	err     error
	calls   int
}

func (s *stubExtractor) Extract(ctx context.Context, url string) (*scrape.Content, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.content, nil
}

type stubEnricher struct {
	result enrich.Result
}

func (s *stubEnricher) Summarize(ctx context.Context, text string) enrich.Result {
	return s.result
}

func setupTestRepo(t *testing.T) *repo.Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return repo.New(db)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func storyContent() *scrape.Content {
	return &scrape.Content{
		Title:     "A Story",
		Content:   "Full body of the story.",
		Excerpt:   "Full body",
		SiteName:  "News Example",
		MediaType: models.MediaArticle,
	}
}

// Capture with no AI credential: one link, the fixed unavailable
// notice, zero tags.
func TestCaptureWithoutAPIKey(t *testing.T) {
	r := setupTestRepo(t)
	extractor := &stubExtractor{content: storyContent()}
	enricher := enrich.New("", "", "", testLogger())
	svc := NewService(r, extractor, enricher, testLogger())

	result, err := svc.Capture(context.Background(), "https://news.example/story")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if result.AlreadyExists {
		t.Error("first capture reported AlreadyExists")
	}
	if result.Link.Summary != "AI Summary unavailable (No API Key)" {
		t.Errorf("Summary = %q", result.Link.Summary)
	}
	if len(result.Tags) != 0 {
		t.Errorf("Tags = %v, want none", result.Tags)
	}
	if result.Link.Title != "A Story" || result.Link.ContentText != "Full body of the story." {
		t.Errorf("stored link = %+v", result.Link)
	}
}

// Re-capturing the same URL reports the existing record with its
// original fields and does not create a second link.
func TestCaptureExistingURL(t *testing.T) {
	r := setupTestRepo(t)
	extractor := &stubExtractor{content: storyContent()}
	enricher := &stubEnricher{result: enrich.Result{Summary: "first summary", Tags: []string{"news"}}}
	svc := NewService(r, extractor, enricher, testLogger())

	first, err := svc.Capture(context.Background(), "https://news.example/story")
	if err != nil {
		t.Fatalf("first capture: %v", err)
	}

	extractor.content = &scrape.Content{Title: "Changed Title", Content: "changed"}
	enricher.result = enrich.Result{Summary: "second summary", Tags: []string{"other"}}

	second, err := svc.Capture(context.Background(), "https://news.example/story")
	if err != nil {
		t.Fatalf("second capture: %v", err)
	}
	if !second.AlreadyExists {
		t.Error("second capture should report AlreadyExists")
	}
	if second.Link.ID != first.Link.ID {
		t.Errorf("second capture link id = %d, want %d", second.Link.ID, first.Link.ID)
	}
	if second.Link.Title != "A Story" || second.Link.Summary != "first summary" {
		t.Errorf("existing record was overwritten: %+v", second.Link)
	}
	if len(second.Tags) != 0 {
		t.Errorf("AlreadyExists branch must skip tagging, got %v", second.Tags)
	}
}

func TestCaptureInvalidURL(t *testing.T) {
	r := setupTestRepo(t)
	extractor := &stubExtractor{content: storyContent()}
	svc := NewService(r, extractor, &stubEnricher{}, testLogger())

	_, err := svc.Capture(context.Background(), "not a url")
	if !errors.Is(err, ErrInvalidURL) {
		t.Errorf("err = %v, want ErrInvalidURL", err)
	}
	if extractor.calls != 0 {
		t.Error("extraction must not run for invalid URLs")
	}
}

func TestCaptureExtractionFailureAbortsBeforePersist(t *testing.T) {
	r := setupTestRepo(t)
	extractor := &stubExtractor{err: scrape.ErrNoContent}
	svc := NewService(r, extractor, &stubEnricher{}, testLogger())

	_, err := svc.Capture(context.Background(), "https://news.example/story")
	if !errors.Is(err, scrape.ErrNoContent) {
		t.Errorf("err = %v, want ErrNoContent", err)
	}

	if _, lookupErr := svc.repo.FindByURL("https://news.example/story"); !errors.Is(lookupErr, repo.ErrNotFound) {
		t.Error("failed extraction must not persist a link")
	}
}

func TestCaptureAppliesEnrichmentTags(t *testing.T) {
	r := setupTestRepo(t)
	extractor := &stubExtractor{content: storyContent()}
	enricher := &stubEnricher{result: enrich.Result{Summary: "s", Tags: []string{"go", "#concurrency", " "}}}
	svc := NewService(r, extractor, enricher, testLogger())

	result, err := svc.Capture(context.Background(), "https://news.example/story")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(result.Tags) != 2 || result.Tags[0] != "go" || result.Tags[1] != "concurrency" {
		t.Errorf("Tags = %v, want [go concurrency]", result.Tags)
	}

	links, err := r.Search("", repo.StatusAll, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(links) != 1 || len(links[0].Tags) != 2 {
		t.Fatalf("stored link should carry 2 tags, got %+v", links)
	}
}

// A tagging failure after a successful persist is logged and swallowed:
// the capture still reports success and the link stays saved, with no
// compensating rollback.
func TestCaptureTaggingFailureKeepsLink(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	r := repo.New(db)

	extractor := &stubExtractor{content: storyContent()}
	enricher := &stubEnricher{result: enrich.Result{Summary: "s", Tags: []string{"go"}}}
	svc := NewService(r, extractor, enricher, testLogger())

	// Breaking the association table makes every tag attach fail while
	// leaving link persistence intact.
	if err := db.Migrator().DropTable("link_tags"); err != nil {
		t.Fatalf("DropTable: %v", err)
	}

	result, err := svc.Capture(context.Background(), "https://news.example/story")
	if err != nil {
		t.Fatalf("Capture must not fail when only tagging fails: %v", err)
	}
	if result.AlreadyExists {
		t.Error("capture reported AlreadyExists")
	}
	if len(result.Tags) != 0 {
		t.Errorf("Tags = %v, want none applied", result.Tags)
	}

	link, err := r.FindByURL("https://news.example/story")
	if err != nil {
		t.Fatalf("saved link must survive the tagging failure: %v", err)
	}
	if link.Title != "A Story" {
		t.Errorf("stored link = %+v", link)
	}
}

func TestTagLink(t *testing.T) {
	r := setupTestRepo(t)
	svc := NewService(r, &stubExtractor{content: storyContent()}, &stubEnricher{}, testLogger())

	if _, err := svc.Capture(context.Background(), "https://ex.com/a"); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	link, applied, err := svc.TagLink("https://ex.com/a", []string{"news", "science"})
	if err != nil {
		t.Fatalf("TagLink: %v", err)
	}
	if link.URL != "https://ex.com/a" {
		t.Errorf("link.URL = %q", link.URL)
	}
	if len(applied) != 2 {
		t.Errorf("applied = %v", applied)
	}

	if _, _, err := svc.TagLink("https://never-saved.com", []string{"x"}); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("TagLink on unknown URL err = %v, want ErrNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	r := setupTestRepo(t)
	svc := NewService(r, &stubExtractor{content: storyContent()}, &stubEnricher{}, testLogger())

	if _, err := svc.Capture(context.Background(), "https://ex.com/a"); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	link, err := svc.Remove("https://ex.com/a")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if link.Title != "A Story" {
		t.Errorf("removed link title = %q", link.Title)
	}

	if _, err := svc.Remove("https://ex.com/a"); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("second remove err = %v, want ErrNotFound", err)
	}
}

func TestResolveURL(t *testing.T) {
	svc := NewService(setupTestRepo(t), &stubExtractor{}, &stubEnricher{}, testLogger())

	got := svc.ResolveURL(replyref.Message{
		Text:     "Check this out",
		Entities: []replyref.Entity{{Type: replyref.EntityTextLink, URL: "https://ex.com/a"}},
	})
	if got != "https://ex.com/a" {
		t.Errorf("ResolveURL = %q", got)
	}
}
