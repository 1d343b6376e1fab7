// Package bot implements the chat-facing command handlers. Each handler
// takes the parsed pieces of an incoming message and returns the reply
// text; the transport shell that dispatches commands and delivers
// replies lives outside this package, so the handlers stay usable from
// any chat front-end.
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"linkhoard/pkg/linkhoard/capture"
	"linkhoard/pkg/linkhoard/replyref"
	"linkhoard/pkg/linkhoard/repo"
)

const searchLimit = 5

// Handler answers chat commands using the shared capture service.
type Handler struct {
	svc       *capture.Service
	repo      *repo.Repository
	webAppURL string
}

// NewHandler creates a new bot handler
func NewHandler(svc *capture.Service, r *repo.Repository, webAppURL string) *Handler {
	return &Handler{svc: svc, repo: r, webAppURL: webAppURL}
}

// Start greets the user and points at the web library.
func (h *Handler) Start() string {
	return "Welcome to Link Organizer! 📚\n\n" +
		"Send me any link to save it, or use /search to find saved links.\n\n" +
		"📱 Open your library: " + h.webAppURL
}

// SaveURL runs the capture pipeline for a message that looks like a
// URL and formats the outcome.
func (h *Handler) SaveURL(ctx context.Context, text string) string {
	rawURL := strings.TrimSpace(text)

	result, err := h.svc.Capture(ctx, rawURL)
	if err != nil {
		if errors.Is(err, capture.ErrInvalidURL) {
			return "Please send a valid URL."
		}
		return fmt.Sprintf("❌ Error processing link: %v", err)
	}

	if result.AlreadyExists {
		return fmt.Sprintf("⚠️ Link already exists!\n\n%s\n\n%s", result.Link.Title, result.Link.Summary)
	}

	return h.savedReply(result)
}

func (h *Handler) savedReply(result *capture.Result) string {
	link := result.Link

	var tags []string
	for _, t := range result.Tags {
		tags = append(tags, "#"+strings.ReplaceAll(t, " ", ""))
	}
	tagsStr := strings.Join(tags, ", ")
	if tagsStr == "" {
		tagsStr = "none"
	}

	hostname := ""
	if u, err := url.Parse(link.URL); err == nil {
		hostname = u.Hostname()
	}

	return fmt.Sprintf(
		"✅ Saved successfully!\n\n"+
			"📎 ID: %d\n\n"+
			"📄 %s\n\n"+
			"%s\n\n"+
			"🔗 %s\n🌐 %s\n\n"+
			"🏷️ Tags: %s\n\n"+
			"📅 %s",
		link.ID, link.Title, link.Summary, link.URL, hostname, tagsStr,
		link.CreatedAt.Format(time.RFC1123),
	)
}

// Search returns up to five title+url matches for a query.
func (h *Handler) Search(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "Usage: /search <keyword>"
	}

	links, err := h.repo.Search(query, repo.StatusAll, searchLimit)
	if err != nil {
		return fmt.Sprintf("❌ Error searching links: %v", err)
	}
	if len(links) == 0 {
		return "No links found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Search results for %q:\n\n", query)
	for _, link := range links {
		fmt.Fprintf(&b, "• %s\n  %s\n", link.Title, link.URL)
	}
	return b.String()
}

// Tag attaches tags to the link referenced by the replied-to message.
func (h *Handler) Tag(reply *replyref.Message, names []string) string {
	if reply == nil {
		return "⚠️ Reply to a link message to tag it."
	}
	if len(names) == 0 {
		return "Usage: /tag <tag1> <tag2> ..."
	}

	target := h.svc.ResolveURL(*reply)
	if target == "" {
		return "⚠️ Could not find a URL in the replied message."
	}

	_, applied, err := h.svc.TagLink(target, names)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "⚠️ Link not found in database. Ensure you are replying to a message with a saved link."
		}
		return fmt.Sprintf("❌ Error adding tags: %v", err)
	}
	if len(applied) == 0 {
		return "⚠️ No valid tags given."
	}

	var tags []string
	for _, t := range applied {
		tags = append(tags, "#"+t)
	}
	return "✅ Added tags: " + strings.Join(tags, " ")
}

// Remove deletes the link referenced by the replied-to message, or the
// one named by an explicit URL argument.
func (h *Handler) Remove(reply *replyref.Message, args []string) string {
	var target string
	if reply != nil {
		target = h.svc.ResolveURL(*reply)
	} else if len(args) > 0 && replyref.IsValidURL(args[0]) {
		target = args[0]
	}

	if target == "" {
		return "⚠️ To remove a link, reply to it with /remove, or use /remove <url>."
	}

	link, err := h.svc.Remove(target)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "⚠️ Link not found in database."
		}
		return fmt.Sprintf("❌ Error deleting link: %v", err)
	}

	return "🗑️ Deleted: " + link.Title
}
