package deck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/arcanaland/cardoracle/internal/oracle"
)

// Deck is a catalog definition file. Records refer to each other by key
// rather than by database id so one file can be imported into any store.
type Deck struct {
	Readings     []ReadingDef     `toml:"readings"     yaml:"readings"`
	Positions    []PositionDef    `toml:"positions"    yaml:"positions"`
	Cards        []CardDef        `toml:"cards"        yaml:"cards"`
	Descriptions []DescriptionDef `toml:"descriptions" yaml:"descriptions"`

	// Path is the file the deck was loaded from
	Path string `toml:"-" yaml:"-"`
}

type ReadingDef struct {
	Key             string `toml:"key"              yaml:"key"`
	Title           string `toml:"title"            yaml:"title"`
	BackImage       string `toml:"back_image"       yaml:"back_image"`
	ReversePercent  int    `toml:"reverse_percent"  yaml:"reverse_percent"`
	DisplayQuestion bool   `toml:"display_question" yaml:"display_question"`
	QuestionText    string `toml:"question_text"    yaml:"question_text"`
	FooterText      string `toml:"footer_text"      yaml:"footer_text"`
	Status          string `toml:"status"           yaml:"status"`

	// Include the standard tarot cards in this reading's pool
	IncludeMajorArcana bool `toml:"include_major_arcana" yaml:"include_major_arcana"`
	IncludeMinorArcana bool `toml:"include_minor_arcana" yaml:"include_minor_arcana"`
}

type PositionDef struct {
	Key     string `toml:"key"     yaml:"key"`
	Reading string `toml:"reading" yaml:"reading"`
	Title   string `toml:"title"   yaml:"title"`
	Order   int    `toml:"order"   yaml:"order"`
	Status  string `toml:"status"  yaml:"status"`
}

type CardDef struct {
	Key      string   `toml:"key"      yaml:"key"`
	Title    string   `toml:"title"    yaml:"title"`
	Body     string   `toml:"body"     yaml:"body"`
	Image    string   `toml:"image"    yaml:"image"`
	Readings []string `toml:"readings" yaml:"readings"`
	Status   string   `toml:"status"   yaml:"status"`
}

type DescriptionDef struct {
	Card        string `toml:"card"         yaml:"card"`
	Position    string `toml:"position"     yaml:"position"`
	Body        string `toml:"body"         yaml:"body"`
	ReverseBody string `toml:"reverse_body" yaml:"reverse_body"`
	Status      string `toml:"status"       yaml:"status"`
}

// Load decodes a .toml, .yaml or .yml deck file and adds the standard
// arcana to readings that ask for them.
func Load(path string) (*Deck, error) {
	d, err := Decode(path)
	if err != nil {
		return nil, err
	}
	d.expandArcana()
	return d, nil
}

// Decode reads a deck file without expanding the standard arcana
func Decode(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading deck file: %w", err)
	}

	var d Deck
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &d); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", filepath.Base(path), err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", filepath.Base(path), err)
		}
	default:
		return nil, fmt.Errorf("unsupported deck file %s (expecting .toml, .yaml or .yml)", filepath.Base(path))
	}
	d.Path = path
	return &d, nil
}

// Dir is the directory relative image paths are resolved against
func (d *Deck) Dir() string {
	return filepath.Dir(d.Path)
}

// IsLocalImage is true for relative file paths, as opposed to URLs and
// site-absolute paths.
func IsLocalImage(image string) bool {
	return image != "" && !strings.HasPrefix(image, "/") && !strings.Contains(image, "://")
}

// ResolveImage turns a relative image path into a local image rooted at the
// deck directory. URLs and site paths are returned unchanged.
func (d *Deck) ResolveImage(image string) (string, error) {
	if !IsLocalImage(image) {
		return image, nil
	}
	abs, err := filepath.Abs(filepath.Join(d.Dir(), image))
	if err != nil {
		return "", fmt.Errorf("resolving image %s: %w", image, err)
	}
	return oracle.LocalImage(abs), nil
}

// Card looks a card up by key
func (d *Deck) Card(key string) (*CardDef, bool) {
	for i := range d.Cards {
		if d.Cards[i].Key == key {
			return &d.Cards[i], true
		}
	}
	return nil, false
}

func (d *Deck) expandArcana() {
	for _, r := range d.Readings {
		if r.IncludeMajorArcana {
			d.include(r.Key, MajorArcana())
		}
		if r.IncludeMinorArcana {
			d.include(r.Key, MinorArcana())
		}
	}
}

// include links the given standard cards to a reading, adding the ones the
// file does not already define.
func (d *Deck) include(reading string, cards []CardDef) {
	for _, std := range cards {
		c, ok := d.Card(std.Key)
		if !ok {
			std.Readings = nil
			d.Cards = append(d.Cards, std)
			c = &d.Cards[len(d.Cards)-1]
		}
		if !contains(c.Readings, reading) {
			c.Readings = append(c.Readings, reading)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
