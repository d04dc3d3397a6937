package oracle

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Status is the publish state of a catalog record
type Status string

const (
	StatusPublish Status = "publish"
	StatusDraft   Status = "draft"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return s == StatusPublish || s == StatusDraft
}

// Reading is a named spread: ordered positions plus a pool of eligible cards
type Reading struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"not null" json:"title"`
	BackImage       string    `json:"back_image,omitempty"`
	ReversePercent  int       `gorm:"not null;default:0" json:"reverse_percent"`
	DisplayQuestion bool      `gorm:"not null;default:false" json:"display_question"`
	QuestionText    string    `json:"question_text,omitempty"`
	FooterText      string    `gorm:"type:text" json:"footer_text,omitempty"`
	Status          Status    `gorm:"type:varchar(16);not null;default:publish;index" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Reading) TableName() string { return "readings" }

func (r *Reading) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("reading title is required")
	}
	if r.ReversePercent < 0 || r.ReversePercent > 100 {
		return fmt.Errorf("reading %q: reverse percent %d out of range 0-100", r.Title, r.ReversePercent)
	}
	return validStatus(&r.Status)
}

func (r *Reading) BeforeSave(*gorm.DB) error { return r.Validate() }

// Published reports whether visitors may see the reading
func (r *Reading) Published() bool { return r.Status == StatusPublish }

// Position is one slot of a reading, e.g. "Past"
type Position struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Order     int       `gorm:"column:card_order;not null;default:0;index" json:"order"`
	ReadingID uint      `gorm:"not null;index" json:"reading_id"`
	Status    Status    `gorm:"type:varchar(16);not null;default:publish;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Position) TableName() string { return "positions" }

func (p *Position) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("position title is required")
	}
	if p.ReadingID == 0 {
		return fmt.Errorf("position %q has no reading", p.Title)
	}
	return validStatus(&p.Status)
}

func (p *Position) BeforeSave(*gorm.DB) error { return p.Validate() }

// Card is a single tarot or oracle card
type Card struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body,omitempty"`
	Image     string    `json:"image,omitempty"`
	Status    Status    `gorm:"type:varchar(16);not null;default:publish;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ReadingIDs lists the readings whose pool contains the card.
	// Stored in the card_readings join table.
	ReadingIDs []uint `gorm:"-" json:"reading_ids,omitempty"`
}

func (Card) TableName() string { return "cards" }

func (c *Card) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("card title is required")
	}
	return validStatus(&c.Status)
}

func (c *Card) BeforeSave(*gorm.DB) error { return c.Validate() }

// CardReading links a card into a reading's pool
type CardReading struct {
	CardID    uint `gorm:"primaryKey;autoIncrement:false"`
	ReadingID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

func (CardReading) TableName() string { return "card_readings" }

// Description is the interpretive text for one (card, position) pair
type Description struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Body        string    `gorm:"type:text" json:"body"`
	ReverseBody string    `gorm:"type:text" json:"reverse_body"`
	CardID      uint      `gorm:"not null;index:idx_description_pair" json:"card_id"`
	PositionID  uint      `gorm:"not null;index:idx_description_pair" json:"position_id"`
	Status      Status    `gorm:"type:varchar(16);not null;default:publish;index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Description) TableName() string { return "descriptions" }

func (d *Description) Validate() error {
	if d.CardID == 0 || d.PositionID == 0 {
		return fmt.Errorf("description needs both a card and a position")
	}
	return validStatus(&d.Status)
}

func (d *Description) BeforeSave(*gorm.DB) error { return d.Validate() }

// Text returns the variant for the given orientation. A nil description has no text.
func (d *Description) Text(reversed bool) string {
	if d == nil {
		return ""
	}
	if reversed {
		return d.ReverseBody
	}
	return d.Body
}

// PickedCard is a card as dealt for one visitor render. Never stored.
type PickedCard struct {
	CardID     uint
	IsReversed bool
}

// validStatus defaults an empty status to published
func validStatus(s *Status) error {
	if *s == "" {
		*s = StatusPublish
	}
	if !s.Valid() {
		return fmt.Errorf("unknown status %q", *s)
	}
	return nil
}
