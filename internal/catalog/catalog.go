// Package catalog reads published readings, positions, cards and
// descriptions out of a content store.
package catalog

import (
	"context"
	"fmt"

	"github.com/arcanaland/cardoracle/internal/oracle"
	"github.com/arcanaland/cardoracle/internal/store"
)

type Catalog struct {
	store store.ContentStore
}

func New(s store.ContentStore) *Catalog {
	return &Catalog{store: s}
}

// Reading returns a published reading or a *oracle.NotFoundError
func (c *Catalog) Reading(ctx context.Context, id uint) (*oracle.Reading, error) {
	r, err := c.store.GetReading(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.Published() {
		return nil, &oracle.NotFoundError{Kind: oracle.KindReading, ID: id}
	}
	return r, nil
}

// Positions returns the published positions of a reading in pick order
func (c *Catalog) Positions(ctx context.Context, readingID uint) ([]oracle.Position, error) {
	return c.store.FindPositions(ctx, store.Published().ForReading(readingID))
}

// Cards returns the published cards in a reading's pool, ordered by id
func (c *Catalog) Cards(ctx context.Context, readingID uint) ([]oracle.Card, error) {
	return c.store.FindCards(ctx, store.Published().ForReading(readingID))
}

// Card returns a published card or a *oracle.NotFoundError
func (c *Catalog) Card(ctx context.Context, id uint) (*oracle.Card, error) {
	found, err := c.store.FindCards(ctx, store.Query{Status: oracle.StatusPublish, IDs: []uint{id}})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, &oracle.NotFoundError{Kind: oracle.KindCard, ID: id}
	}
	return &found[0], nil
}

// Description returns the published description for a (card, position)
// pair, or nil when there is none.
func (c *Catalog) Description(ctx context.Context, cardID, positionID uint) (*oracle.Description, error) {
	found, err := c.store.FindDescriptions(ctx, store.Published().ForPair(cardID, positionID))
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// Summary is one row of the catalog overview
type Summary struct {
	Reading      oracle.Reading
	Positions    int
	Cards        int
	Descriptions int
}

// Summaries counts the published records belonging to every reading,
// drafts included for the readings themselves.
func (c *Catalog) Summaries(ctx context.Context) ([]Summary, error) {
	readings, err := c.store.FindReadings(ctx, store.Query{})
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(readings))
	for _, r := range readings {
		q := store.Published().ForReading(r.ID)
		positions, err := c.store.FindPositions(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("counting positions for reading %d: %w", r.ID, err)
		}
		cards, err := c.store.FindCards(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("counting cards for reading %d: %w", r.ID, err)
		}
		descriptions, err := c.store.FindDescriptions(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("counting descriptions for reading %d: %w", r.ID, err)
		}
		out = append(out, Summary{
			Reading:      r,
			Positions:    len(positions),
			Cards:        len(cards),
			Descriptions: len(descriptions),
		})
	}
	return out, nil
}
