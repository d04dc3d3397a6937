package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arcanaland/cardoracle/internal/logger"
	"github.com/arcanaland/cardoracle/internal/oracle"
	"github.com/arcanaland/cardoracle/internal/render"
	"github.com/arcanaland/cardoracle/internal/session"
)

const siteTitle = "Card Oracle"

// ReadingHandler serves the pick screen, results and single card draws
type ReadingHandler struct {
	log      *logger.Logger
	builder  *session.Builder
	renderer *render.Renderer
	now      func() time.Time
}

func NewReadingHandler(log *logger.Logger, builder *session.Builder, renderer *render.Renderer) *ReadingHandler {
	return &ReadingHandler{
		log:      log.With("handler", "ReadingHandler"),
		builder:  builder,
		renderer: renderer,
		now:      time.Now,
	}
}

// SubmitForm is the pick form as posted by the browser
type SubmitForm struct {
	Picks    string `form:"picks"`
	Reverse  string `form:"reverse"`
	Question string `form:"question"`
}

// GET /readings/:id
func (h *ReadingHandler) Show(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.missing(c, nil)
		return
	}

	s, err := h.builder.Build(c.Request.Context(), id)
	if err != nil {
		h.missing(c, err)
		return
	}

	var body bytes.Buffer
	if err := h.renderer.PickScreen(&body, s); err != nil {
		h.fail(c, err)
		return
	}
	h.page(c, http.StatusOK, s.Reading.Title, &body)
}

// POST /readings/:id
func (h *ReadingHandler) Submit(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.missing(c, nil)
		return
	}

	var form SubmitForm
	if err := c.ShouldBind(&form); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_form", err)
		return
	}

	res, err := h.builder.Submit(c.Request.Context(), session.Submission{
		ReadingID: id,
		Picks:     form.Picks,
		Reverse:   form.Reverse,
		Question:  form.Question,
	})
	var body bytes.Buffer
	switch {
	case errors.Is(err, oracle.ErrValidation):
		h.log.Warn("Rejected pick submission", "reading_id", id, "error", err)
		if err := h.renderer.Invalid(&body, err); err != nil {
			h.fail(c, err)
			return
		}
		h.page(c, http.StatusUnprocessableEntity, siteTitle, &body)
		return
	case err != nil:
		h.missing(c, err)
		return
	}

	if err := h.renderer.ResultScreen(&body, res); err != nil {
		h.fail(c, err)
		return
	}
	h.page(c, http.StatusOK, res.Reading.Title, &body)
}

// GET /readings/:id/card-of-day. With email=1 the bare email table is
// returned instead of a page.
func (h *ReadingHandler) CardOfDay(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.missing(c, nil)
		return
	}

	single, err := h.builder.CardOfDay(c.Request.Context(), id, h.now())
	if err != nil {
		h.missing(c, err)
		return
	}

	asEmail := c.Query("email") != ""
	var body bytes.Buffer
	if err := h.renderer.CardOfDay(&body, single, asEmail); err != nil {
		h.fail(c, err)
		return
	}
	if asEmail {
		RespondHTML(c, http.StatusOK, &body)
		return
	}
	h.page(c, http.StatusOK, single.Reading.Title, &body)
}

// GET /readings/:id/random
func (h *ReadingHandler) Random(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.missing(c, nil)
		return
	}

	single, err := h.builder.RandomCard(c.Request.Context(), id)
	if err != nil {
		h.missing(c, err)
		return
	}

	var body bytes.Buffer
	if err := h.renderer.RandomCard(&body, single); err != nil {
		h.fail(c, err)
		return
	}
	h.page(c, http.StatusOK, single.Reading.Title, &body)
}

// missing renders the placeholder for absent readings and empty pools.
// Other errors are logged as they point at the store rather than the visitor.
func (h *ReadingHandler) missing(c *gin.Context, err error) {
	if err != nil && !errors.Is(err, oracle.ErrNotFound) && !errors.Is(err, oracle.ErrEmptyPool) {
		h.log.Error("Reading lookup failed", "path", c.Request.URL.Path, "error", err)
	}

	var body bytes.Buffer
	if err := h.renderer.Missing(&body); err != nil {
		h.fail(c, err)
		return
	}
	h.page(c, http.StatusNotFound, siteTitle, &body)
}

func (h *ReadingHandler) page(c *gin.Context, status int, title string, body *bytes.Buffer) {
	var out bytes.Buffer
	if err := h.renderer.Page(&out, title, body.Bytes()); err != nil {
		h.fail(c, err)
		return
	}
	RespondHTML(c, status, &out)
}

func (h *ReadingHandler) fail(c *gin.Context, err error) {
	h.log.Error("Rendering failed", "path", c.Request.URL.Path, "error", err)
	c.String(http.StatusInternalServerError, "internal error")
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
