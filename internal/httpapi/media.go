package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arcanaland/cardoracle/internal/logger"
	"github.com/arcanaland/cardoracle/internal/oracle"
)

// MediaSource looks up the published records whose images are served
type MediaSource interface {
	Reading(ctx context.Context, id uint) (*oracle.Reading, error)
	Card(ctx context.Context, id uint) (*oracle.Card, error)
}

// MediaHandler serves card images imported from local files
type MediaHandler struct {
	log *logger.Logger
	src MediaSource
}

func NewMediaHandler(log *logger.Logger, src MediaSource) *MediaHandler {
	return &MediaHandler{log: log.With("handler", "MediaHandler"), src: src}
}

// GET /media/cards/:id
func (h *MediaHandler) CardImage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		RespondError(c, http.StatusNotFound, "not_found", errors.New("card not found"))
		return
	}
	card, err := h.src.Card(c.Request.Context(), id)
	if err != nil {
		h.lookupFailed(c, err)
		return
	}
	h.serve(c, card.Image)
}

// GET /media/readings/:id/back
func (h *MediaHandler) BackImage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		RespondError(c, http.StatusNotFound, "not_found", errors.New("reading not found"))
		return
	}
	r, err := h.src.Reading(c.Request.Context(), id)
	if err != nil {
		h.lookupFailed(c, err)
		return
	}
	h.serve(c, r.BackImage)
}

// serve writes a local image. Remote images are never proxied.
func (h *MediaHandler) serve(c *gin.Context, image string) {
	path, ok := oracle.LocalImagePath(image)
	if !ok {
		RespondError(c, http.StatusNotFound, "not_found", errors.New("no local image"))
		return
	}
	c.File(path)
}

func (h *MediaHandler) lookupFailed(c *gin.Context, err error) {
	if errors.Is(err, oracle.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	h.log.Error("Media lookup failed", "path", c.Request.URL.Path, "error", err)
	RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
}
