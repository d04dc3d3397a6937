package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/arcanaland/cardoracle/internal/logger"
)

var (
	// ErrDisabled is returned when emailing readings is switched off
	ErrDisabled = errors.New("emailing readings is disabled")
	// ErrBadRequest is returned for an unusable address or email body
	ErrBadRequest = errors.New("bad email request")
)

// Request is what the result screen posts to the email endpoint.
// Content is the base64 encoded email body rendered with the results.
type Request struct {
	Email     string `json:"email"        form:"email"`
	Content   string `json:"emailContent" form:"emailcontent"`
	Subscribe bool   `json:"subscribe"    form:"subscribe"`
}

// Response is returned to the visitor
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Settings controls the email endpoint
type Settings struct {
	Allow       bool
	Subject     string
	SuccessText string
	// Stylesheet is prepended to the body, wrapped in a style element
	Stylesheet string
}

type Service struct {
	sender   Sender
	settings Settings
	log      *logger.Logger
}

func NewService(sender Sender, settings Settings, log *logger.Logger) *Service {
	return &Service{sender: sender, settings: settings, log: log}
}

// Send emails a reading to the requested address
func (s *Service) Send(ctx context.Context, req Request) (*Response, error) {
	if !s.settings.Allow {
		return nil, ErrDisabled
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil || addr.Name != "" {
		return nil, fmt.Errorf("%w: invalid email address", ErrBadRequest)
	}
	body, err := base64.StdEncoding.DecodeString(strings.TrimSpace(req.Content))
	if err != nil || len(body) == 0 {
		return nil, fmt.Errorf("%w: invalid email content", ErrBadRequest)
	}

	// newsletter signup is not wired to a list provider, only recorded
	if req.Subscribe {
		s.log.Info("reading email subscribe requested", "email", addr.Address)
	}

	err = s.sender.Send(ctx, Message{
		To:       addr.Address,
		Subject:  s.settings.Subject,
		HTMLBody: s.settings.Stylesheet + string(body),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("reading emailed", "email", addr.Address)
	return &Response{Success: true, Message: s.settings.SuccessText}, nil
}
