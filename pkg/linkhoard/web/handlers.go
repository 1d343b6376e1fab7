package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"linkhoard/pkg/linkhoard/capture"
	"linkhoard/pkg/linkhoard/repo"
	"linkhoard/pkg/linkhoard/scrape"
)

// Handler handles the REST surface consumed by the mini-app front-end
type Handler struct {
	repo *repo.Repository
	svc  *capture.Service
}

// NewHandler creates a new web handler
func NewHandler(r *repo.Repository, svc *capture.Service) *Handler {
	return &Handler{repo: r, svc: svc}
}

// CaptureRequest represents the request to save a new link
type CaptureRequest struct {
	URL string `json:"url" binding:"required"`
}

// Capture runs the ingestion pipeline for a submitted URL. Responds 200
// with the existing record when the URL was already saved.
func (h *Handler) Capture(c *gin.Context) {
	var req CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.Capture(c.Request.Context(), req.URL)
	if err != nil {
		var fetchErr *scrape.FetchError
		switch {
		case errors.Is(err, capture.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL"})
		case errors.Is(err, scrape.ErrNoContent), errors.As(err, &fetchErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	status := http.StatusCreated
	if result.AlreadyExists {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"link":           result.Link,
		"tags":           result.Tags,
		"already_exists": result.AlreadyExists,
	})
}

// List returns saved links, newest first, optionally filtered by a
// search term (title/summary substring) and read status.
func (h *Handler) List(c *gin.Context) {
	search := c.Query("search")
	status := c.Query("status")

	links, err := h.repo.Search(search, status, repo.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, links)
}

// ToggleRead flips the read flag on a link
func (h *Handler) ToggleRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link ID"})
		return
	}

	link, err := h.repo.ToggleRead(uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": link.ID, "is_read": link.IsRead})
}

// Delete removes a link and its tag associations
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link ID"})
		return
	}

	if _, err := h.repo.Delete(uint(id)); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": uint(id)})
}

// RegisterRoutes registers the link API routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/links", h.Capture)
	rg.GET("/links", h.List)
	rg.PATCH("/links/:id/toggle-read", h.ToggleRead)
	rg.DELETE("/links/:id", h.Delete)
}
