package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arcanaland/cardoracle/internal/logger"
	"github.com/arcanaland/cardoracle/internal/mailer"
	"github.com/arcanaland/cardoracle/internal/oracle"
)

type EmailHandler struct {
	log     *logger.Logger
	service *mailer.Service
	timeout time.Duration
}

func NewEmailHandler(log *logger.Logger, service *mailer.Service, timeout time.Duration) *EmailHandler {
	return &EmailHandler{
		log:     log.With("handler", "EmailHandler"),
		service: service,
		timeout: timeout,
	}
}

// POST /api/reading-email
func (h *EmailHandler) Send(c *gin.Context) {
	var req mailer.Request
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, mailer.Response{Message: "Invalid request."})
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	res, err := h.service.Send(ctx, req)
	switch {
	case err == nil:
		RespondOK(c, res)
	case errors.Is(err, mailer.ErrDisabled):
		c.JSON(http.StatusForbidden, mailer.Response{Message: "Emailing readings is not available."})
	case errors.Is(err, mailer.ErrBadRequest):
		c.JSON(http.StatusBadRequest, mailer.Response{Message: "Please enter a valid email address."})
	case errors.Is(err, oracle.ErrDelivery):
		h.log.Error("Reading email failed", "email", req.Email, "error", err)
		c.JSON(http.StatusBadGateway, mailer.Response{Message: "Your email could not be sent. Please try again later."})
	default:
		h.log.Error("Reading email failed", "email", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, mailer.Response{Message: "Your email could not be sent."})
	}
}
