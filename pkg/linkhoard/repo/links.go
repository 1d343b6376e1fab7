package repo

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"linkhoard/pkg/linkhoard/models"
)

// ErrNotFound is returned when an id or URL resolves to no stored link.
var ErrNotFound = errors.New("link not found")

// Status filter values for Search.
const (
	StatusAll    = "all"
	StatusRead   = "read"
	StatusUnread = "unread"
)

// PageSize caps how many links a search returns.
const PageSize = 50

// Repository handles database operations for links and tags
type Repository struct {
	db *gorm.DB
}

// New creates a new Repository
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindOrCreate looks a link up by URL, creating it from defaults when
// absent. The bool reports whether a new record was created. URL
// uniqueness is enforced by the database; a uniqueness violation during
// create (concurrent first capture of the same URL) is resolved by
// re-reading the winner.
func (r *Repository) FindOrCreate(url string, defaults models.Link) (*models.Link, bool, error) {
	var link models.Link
	err := r.db.Where("url = ?", url).First(&link).Error
	if err == nil {
		return &link, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	link = defaults
	link.URL = url
	if err := r.db.Create(&link).Error; err != nil {
		if isUniqueViolation(err) {
			var existing models.Link
			if lookupErr := r.db.Where("url = ?", url).First(&existing).Error; lookupErr == nil {
				return &existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("creating link: %w", err)
	}
	return &link, true, nil
}

// FindByURL returns the link stored for url, or ErrNotFound.
func (r *Repository) FindByURL(url string) (*models.Link, error) {
	var link models.Link
	if err := r.db.Where("url = ?", url).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// FindByID returns the link with the given id, or ErrNotFound.
func (r *Repository) FindByID(id uint) (*models.Link, error) {
	var link models.Link
	if err := r.db.First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// ToggleRead flips the read flag on a link and returns the updated
// record, or ErrNotFound.
func (r *Repository) ToggleRead(id uint) (*models.Link, error) {
	link, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	link.IsRead = !link.IsRead
	if err := r.db.Save(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

// Delete removes a link and its tag associations. The row is gone for
// good: the URL becomes capturable again. A second delete of the same
// id is ErrNotFound, not a no-op.
func (r *Repository) Delete(id uint) (*models.Link, error) {
	link, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := r.db.Model(link).Association("Tags").Clear(); err != nil {
		return nil, err
	}
	if err := r.db.Delete(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

// Search returns links whose title or summary contains query,
// optionally filtered by read status, newest first, capped at limit
// (PageSize when limit <= 0). Tags are preloaded.
func (r *Repository) Search(query, status string, limit int) ([]models.Link, error) {
	if limit <= 0 || limit > PageSize {
		limit = PageSize
	}

	q := r.db.Preload("Tags").Order("created_at DESC").Limit(limit)

	if query != "" {
		term := "%" + query + "%"
		q = q.Where("title LIKE ? OR summary LIKE ?", term, term)
	}

	switch status {
	case StatusRead:
		q = q.Where("is_read = ?", true)
	case StatusUnread:
		q = q.Where("is_read = ?", false)
	}

	var links []models.Link
	if err := q.Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// isUniqueViolation detects a unique-constraint rejection from the
// sqlite driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
