package repo

import (
	"strings"

	"linkhoard/pkg/linkhoard/models"
)

// NormalizeTag cleans a raw tag token: leading # stripped, surrounding
// whitespace trimmed. Returns "" for tokens that normalize to nothing.
func NormalizeTag(name string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "#"))
}

// AddTags normalizes names and attaches them to link. Tokens that
// normalize to empty are skipped, not errors. Attachment has set
// semantics: a (link, tag) pair already present is left alone. Returns
// the normalized names that were applied.
func (r *Repository) AddTags(link *models.Link, names []string) ([]string, error) {
	applied := make([]string, 0, len(names))
	for _, raw := range names {
		name := NormalizeTag(raw)
		if name == "" {
			continue
		}

		var tag models.Tag
		if err := r.db.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return applied, err
		}

		var count int64
		if err := r.db.Table("link_tags").
			Where("link_id = ? AND tag_id = ?", link.ID, tag.ID).
			Count(&count).Error; err != nil {
			return applied, err
		}
		if count == 0 {
			if err := r.db.Model(link).Association("Tags").Append(&tag); err != nil {
				return applied, err
			}
		}
		applied = append(applied, name)
	}
	return applied, nil
}
