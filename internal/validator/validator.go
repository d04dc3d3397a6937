package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arcanaland/cardoracle/internal/deck"
	"github.com/arcanaland/cardoracle/internal/oracle"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether the deck can be imported
func (r ValidationResults) Valid() bool {
	return len(r.Errors) == 0
}

type Validator struct {
	DeckPath string
	Results  ValidationResults

	deck *deck.Deck
}

func NewValidator(deckPath string) *Validator {
	return &Validator{
		DeckPath: deckPath,
		Results:  ValidationResults{},
	}
}

// Validate checks a deck file. The returned error is only set when the file
// cannot be read at all; problems with its content are reported in the
// results.
func (v *Validator) Validate() (ValidationResults, error) {
	d, err := deck.Load(v.DeckPath)
	if err != nil {
		return v.Results, err
	}
	v.deck = d

	v.validateReadings()
	v.validatePositions()
	v.validateCards()
	v.validateDescriptions()
	v.validatePools()
	v.validateImages()

	return v.Results, nil
}

func (v *Validator) errorf(format string, args ...interface{}) {
	v.Results.Errors = append(v.Results.Errors, fmt.Sprintf(format, args...))
}

func (v *Validator) warnf(format string, args ...interface{}) {
	v.Results.Warnings = append(v.Results.Warnings, fmt.Sprintf(format, args...))
}

func (v *Validator) validateStatus(what, status string) {
	if status != "" && !oracle.Status(status).Valid() {
		v.errorf("%s has unknown status %q (expecting publish or draft)", what, status)
	}
}

func (v *Validator) validateReadings() {
	seen := map[string]bool{}
	for i, r := range v.deck.Readings {
		what := fmt.Sprintf("readings[%d]", i)
		if r.Key == "" {
			v.errorf("%s.key is required", what)
		} else {
			what = fmt.Sprintf("reading %q", r.Key)
			if seen[r.Key] {
				v.errorf("%s is defined more than once", what)
			}
			seen[r.Key] = true
		}

		if strings.TrimSpace(r.Title) == "" {
			v.errorf("%s: title is required", what)
		}
		if r.ReversePercent < 0 || r.ReversePercent > 100 {
			v.errorf("%s: reverse_percent %d out of range 0-100", what, r.ReversePercent)
		}
		if r.DisplayQuestion && r.QuestionText == "" {
			v.warnf("%s: display_question is set but question_text is empty", what)
		}
		v.validateStatus(what, r.Status)
	}

	if len(v.deck.Readings) == 0 {
		v.errorf("no readings defined")
	}
}

func (v *Validator) validatePositions() {
	readings := v.readingKeys()
	keys := map[string]bool{}
	orders := map[string]map[int]string{}

	for i, p := range v.deck.Positions {
		what := fmt.Sprintf("positions[%d]", i)
		if p.Key == "" {
			v.errorf("%s.key is required", what)
		} else {
			what = fmt.Sprintf("position %q", p.Key)
			if keys[p.Key] {
				v.errorf("%s is defined more than once", what)
			}
			keys[p.Key] = true
		}

		if strings.TrimSpace(p.Title) == "" {
			v.errorf("%s: title is required", what)
		}
		if !readings[p.Reading] {
			v.errorf("%s refers to unknown reading %q", what, p.Reading)
		}
		v.validateStatus(what, p.Status)

		if orders[p.Reading] == nil {
			orders[p.Reading] = map[int]string{}
		}
		if other, ok := orders[p.Reading][p.Order]; ok {
			v.warnf("%s shares order %d with %q in reading %q; ties fall back to file order", what, p.Order, other, p.Reading)
		} else {
			orders[p.Reading][p.Order] = p.Key
		}
	}
}

func (v *Validator) validateCards() {
	readings := v.readingKeys()
	keys := map[string]bool{}

	for i, c := range v.deck.Cards {
		what := fmt.Sprintf("cards[%d]", i)
		if c.Key == "" {
			v.errorf("%s.key is required", what)
		} else {
			what = fmt.Sprintf("card %q", c.Key)
			if keys[c.Key] {
				v.errorf("%s is defined more than once", what)
			}
			keys[c.Key] = true
		}

		if strings.TrimSpace(c.Title) == "" {
			v.errorf("%s: title is required", what)
		}
		if len(c.Readings) == 0 {
			v.warnf("%s is not part of any reading", what)
		}
		for _, r := range c.Readings {
			if !readings[r] {
				v.errorf("%s refers to unknown reading %q", what, r)
			}
		}
		v.validateStatus(what, c.Status)
	}
}

func (v *Validator) validateDescriptions() {
	positions := map[string]deck.PositionDef{}
	for _, p := range v.deck.Positions {
		positions[p.Key] = p
	}
	pairs := map[string]bool{}

	for i, d := range v.deck.Descriptions {
		what := fmt.Sprintf("descriptions[%d] (%s/%s)", i, d.Card, d.Position)

		card, ok := v.deck.Card(d.Card)
		if !ok {
			v.errorf("%s refers to unknown card %q", what, d.Card)
		}
		pos, posOK := positions[d.Position]
		if !posOK {
			v.errorf("%s refers to unknown position %q", what, d.Position)
		}
		if ok && posOK && !contains(card.Readings, pos.Reading) {
			v.errorf("%s: card %q is not in reading %q of position %q", what, d.Card, pos.Reading, d.Position)
		}

		pair := d.Card + "\x00" + d.Position
		if pairs[pair] {
			v.warnf("%s duplicates an earlier description; only the first is used", what)
		}
		pairs[pair] = true

		if d.Body == "" && d.ReverseBody == "" {
			v.warnf("%s has no text", what)
		}
		v.validateStatus(what, d.Status)
	}
}

// validatePools checks that every reading can be dealt
func (v *Validator) validatePools() {
	for _, r := range v.deck.Readings {
		var positions, cards int
		for _, p := range v.deck.Positions {
			if p.Reading == r.Key {
				positions++
			}
		}
		for _, c := range v.deck.Cards {
			if contains(c.Readings, r.Key) {
				cards++
			}
		}

		switch {
		case positions == 0:
			v.errorf("reading %q has no positions", r.Key)
		case cards < positions:
			v.errorf("reading %q has %d cards for %d positions", r.Key, cards, positions)
		}

		if positions > 0 && cards > 0 {
			v.checkCoverage(r.Key)
		}
	}
}

// checkCoverage warns when cards in a reading have no description for some
// position. Those picks render with an empty body.
func (v *Validator) checkCoverage(reading string) {
	described := map[string]bool{}
	for _, d := range v.deck.Descriptions {
		described[d.Card+"\x00"+d.Position] = true
	}

	missing := 0
	for _, p := range v.deck.Positions {
		if p.Reading != reading {
			continue
		}
		for _, c := range v.deck.Cards {
			if contains(c.Readings, reading) && !described[c.Key+"\x00"+p.Key] {
				missing++
			}
		}
	}
	if missing > 0 {
		v.warnf("reading %q is missing %d card/position descriptions", reading, missing)
	}
}

// validateImages checks that relative image paths exist next to the deck file
func (v *Validator) validateImages() {
	check := func(what, image string) {
		if !deck.IsLocalImage(image) {
			return
		}
		if _, err := os.Stat(filepath.Join(v.deck.Dir(), image)); os.IsNotExist(err) {
			v.warnf("%s: image not found: %s", what, image)
		}
	}

	for _, r := range v.deck.Readings {
		check(fmt.Sprintf("reading %q", r.Key), r.BackImage)
	}
	for _, c := range v.deck.Cards {
		check(fmt.Sprintf("card %q", c.Key), c.Image)
	}
}

func (v *Validator) readingKeys() map[string]bool {
	keys := map[string]bool{}
	for _, r := range v.deck.Readings {
		keys[r.Key] = true
	}
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
