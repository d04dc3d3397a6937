// Package render turns sessions and results into HTML fragments.
//
// Card, description and footer text is authored by the site owner and is
// rendered as trusted HTML. Anything typed by a visitor is escaped.
package render

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/arcanaland/cardoracle/internal/oracle"
	"github.com/arcanaland/cardoracle/internal/session"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

// Settings are the site-wide display options
type Settings struct {
	PoweredBy        bool
	DefaultBackImage string
	AllowEmail       bool
	EmailFormText    string
	SubscribeText    string
	EmailEndpoint    string
	StaticPrefix     string
	MediaPrefix      string
}

type Renderer struct {
	tmpl     *template.Template
	settings Settings
}

func New(settings Settings) (*Renderer, error) {
	tmpl, err := template.New("cardoracle").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	if settings.StaticPrefix == "" {
		settings.StaticPrefix = "/static"
	}
	if settings.MediaPrefix == "" {
		settings.MediaPrefix = "/media"
	}
	if settings.DefaultBackImage == "" {
		settings.DefaultBackImage = settings.StaticPrefix + "/cardback.svg"
	}
	return &Renderer{tmpl: tmpl, settings: settings}, nil
}

// Assets holds the stylesheet, script and default card back served under StaticPrefix
func Assets() fs.FS {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// EmailStylesheet is prepended to every reading email
func EmailStylesheet() string {
	css, err := assetFS.ReadFile("assets/email.css")
	if err != nil {
		return ""
	}
	return "<style>" + string(css) + "</style>"
}

type pickCard struct {
	ID       uint
	Title    string
	Image    string
	Reversed bool
}

type pickView struct {
	Reading       oracle.Reading
	PositionCount int
	SelectText    string
	BackImage     string
	Cards         []pickCard
}

// PickScreen renders the face-down pool for a session
func (r *Renderer) PickScreen(w io.Writer, s *session.Session) error {
	view := pickView{
		Reading:       s.Reading,
		PositionCount: len(s.Positions),
		SelectText:    selectText(len(s.Positions)),
		BackImage:     r.backImage(s.Reading),
		Cards:         make([]pickCard, 0, len(s.Cards)),
	}
	for _, dealt := range s.Cards {
		c, ok := s.Card(dealt.CardID)
		if !ok {
			continue
		}
		view.Cards = append(view.Cards, pickCard{
			ID:       c.ID,
			Title:    c.Title,
			Image:    r.cardImage(c),
			Reversed: dealt.IsReversed,
		})
	}
	return r.tmpl.ExecuteTemplate(w, "pick", view)
}

type resultPick struct {
	Position string
	CardID   uint
	Title    string
	Image    string
	Reversed bool
	Text     template.HTML
}

type resultView struct {
	Reading       oracle.Reading
	Question      string
	Picks         []resultPick
	AllowEmail    bool
	FormText      string
	SubscribeText string
	EmailEndpoint string
	EmailContent  string
}

// ResultScreen renders a finished reading and, when email is allowed, the
// form that posts the email body back to the email endpoint.
func (r *Renderer) ResultScreen(w io.Writer, res *session.Result) error {
	view := resultView{
		Reading:       res.Reading,
		Question:      res.Question,
		Picks:         r.resultPicks(res),
		AllowEmail:    r.settings.AllowEmail,
		FormText:      r.settings.EmailFormText,
		SubscribeText: r.settings.SubscribeText,
		EmailEndpoint: r.settings.EmailEndpoint,
	}
	if view.AllowEmail {
		body, err := r.EmailBody(res)
		if err != nil {
			return err
		}
		view.EmailContent = base64.StdEncoding.EncodeToString([]byte(body))
	}
	return r.tmpl.ExecuteTemplate(w, "result", view)
}

// EmailBody renders the inline-styled table sent by email
func (r *Renderer) EmailBody(res *session.Result) (string, error) {
	var buf bytes.Buffer
	err := r.tmpl.ExecuteTemplate(&buf, "email", resultView{
		Question: res.Question,
		Picks:    r.resultPicks(res),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

type singleView struct {
	Title     string
	Body      template.HTML
	Image     string
	Footer    template.HTML
	PoweredBy bool
}

// CardOfDay renders a daily card, as a table when asEmail is set
func (r *Renderer) CardOfDay(w io.Writer, s *session.Single, asEmail bool) error {
	name := "single"
	if asEmail {
		name = "single-email"
	}
	return r.tmpl.ExecuteTemplate(w, name, r.single(s))
}

func (r *Renderer) RandomCard(w io.Writer, s *session.Single) error {
	return r.tmpl.ExecuteTemplate(w, "single", r.single(s))
}

// Missing renders the placeholder shown for unknown or unpublished readings
func (r *Renderer) Missing(w io.Writer) error {
	return r.tmpl.ExecuteTemplate(w, "missing", nil)
}

// Invalid renders the message shown instead of results for a bad submission
func (r *Renderer) Invalid(w io.Writer, err error) error {
	return r.tmpl.ExecuteTemplate(w, "invalid", struct{ Message string }{
		Message: "We could not read your cards: " + err.Error() + ".",
	})
}

// Page wraps a fragment in a complete HTML document
func (r *Renderer) Page(w io.Writer, title string, body []byte) error {
	return r.tmpl.ExecuteTemplate(w, "page", struct {
		Title        string
		Body         template.HTML
		StaticPrefix string
	}{
		Title:        title,
		Body:         template.HTML(body),
		StaticPrefix: r.settings.StaticPrefix,
	})
}

func (r *Renderer) single(s *session.Single) singleView {
	return singleView{
		Title:     s.Card.Title,
		Body:      template.HTML(s.Card.Body),
		Image:     r.cardImage(s.Card),
		Footer:    template.HTML(s.Reading.FooterText),
		PoweredBy: r.settings.PoweredBy,
	}
}

func (r *Renderer) resultPicks(res *session.Result) []resultPick {
	out := make([]resultPick, len(res.Picks))
	for i, p := range res.Picks {
		out[i] = resultPick{
			Position: p.Position.Title,
			CardID:   p.Card.ID,
			Title:    p.Card.Title,
			Image:    r.cardImage(p.Card),
			Reversed: p.Reversed,
			Text:     template.HTML(p.Text),
		}
	}
	return out
}

// cardImage is the src for a card image. Local images go through the media
// routes since their file paths mean nothing to a browser.
func (r *Renderer) cardImage(c oracle.Card) string {
	if _, ok := oracle.LocalImagePath(c.Image); ok {
		return fmt.Sprintf("%s/cards/%d", r.settings.MediaPrefix, c.ID)
	}
	return c.Image
}

func (r *Renderer) backImage(rd oracle.Reading) string {
	switch _, local := oracle.LocalImagePath(rd.BackImage); {
	case local:
		return fmt.Sprintf("%s/readings/%d/back", r.settings.MediaPrefix, rd.ID)
	case rd.BackImage == "":
		return r.settings.DefaultBackImage
	default:
		return rd.BackImage
	}
}

func selectText(n int) string {
	if n == 1 {
		return "Next select 1 card."
	}
	return fmt.Sprintf("Next select %d cards.", n)
}
