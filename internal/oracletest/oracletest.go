// Package oracletest provides an in-memory catalog for tests
package oracletest

import (
	"context"
	"fmt"
	"sort"

	"github.com/arcanaland/cardoracle/internal/oracle"
)

// Catalog is an in-memory implementation of the catalog read methods
type Catalog struct {
	Readings        map[uint]oracle.Reading
	PositionRecords []oracle.Position
	CardRecords     []oracle.Card
	Descriptions    []oracle.Description
}

func (c *Catalog) Reading(_ context.Context, id uint) (*oracle.Reading, error) {
	r, ok := c.Readings[id]
	if !ok || !r.Published() {
		return nil, &oracle.NotFoundError{Kind: oracle.KindReading, ID: id}
	}
	return &r, nil
}

func (c *Catalog) Positions(_ context.Context, readingID uint) ([]oracle.Position, error) {
	var out []oracle.Position
	for _, p := range c.PositionRecords {
		if p.ReadingID == readingID && p.Status == oracle.StatusPublish {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (c *Catalog) Cards(_ context.Context, readingID uint) ([]oracle.Card, error) {
	var out []oracle.Card
	for _, card := range c.CardRecords {
		if card.Status != oracle.StatusPublish {
			continue
		}
		for _, id := range card.ReadingIDs {
			if id == readingID {
				out = append(out, card)
				break
			}
		}
	}
	return out, nil
}

func (c *Catalog) Card(_ context.Context, id uint) (*oracle.Card, error) {
	for _, card := range c.CardRecords {
		if card.ID == id && card.Status == oracle.StatusPublish {
			return &card, nil
		}
	}
	return nil, &oracle.NotFoundError{Kind: oracle.KindCard, ID: id}
}

func (c *Catalog) Description(_ context.Context, cardID, positionID uint) (*oracle.Description, error) {
	for _, d := range c.Descriptions {
		if d.CardID == cardID && d.PositionID == positionID && d.Status == oracle.StatusPublish {
			return &d, nil
		}
	}
	return nil, nil
}

const (
	ReadingID = 1
	PastID    = 101
	PresentID = 102
	FutureID  = 103
)

// PastPresentFuture returns a three position reading with a pool of 22
// cards numbered 1 to 22 and descriptions for cards 5, 12 and 3 in the
// Past, Present and Future positions respectively.
func PastPresentFuture(reversePercent int) *Catalog {
	c := &Catalog{
		Readings: map[uint]oracle.Reading{
			ReadingID: {
				ID:              ReadingID,
				Title:           "Past-Present-Future",
				ReversePercent:  reversePercent,
				DisplayQuestion: true,
				QuestionText:    "What would you like to know?",
				FooterText:      "Readings are for entertainment.",
				Status:          oracle.StatusPublish,
			},
		},
		PositionRecords: []oracle.Position{
			{ID: FutureID, Title: "Future", Order: 3, ReadingID: ReadingID, Status: oracle.StatusPublish},
			{ID: PastID, Title: "Past", Order: 1, ReadingID: ReadingID, Status: oracle.StatusPublish},
			{ID: PresentID, Title: "Present", Order: 2, ReadingID: ReadingID, Status: oracle.StatusPublish},
		},
	}
	for i := uint(1); i <= 22; i++ {
		c.CardRecords = append(c.CardRecords, oracle.Card{
			ID:         i,
			Title:      fmt.Sprintf("Card %d", i),
			Body:       fmt.Sprintf("Card %d front text", i),
			Image:      fmt.Sprintf("/images/%d.png", i),
			Status:     oracle.StatusPublish,
			ReadingIDs: []uint{ReadingID},
		})
	}
	c.Descriptions = []oracle.Description{
		{ID: 1, CardID: 5, PositionID: PastID, Body: "five past", ReverseBody: "five past reversed", Status: oracle.StatusPublish},
		{ID: 2, CardID: 12, PositionID: PresentID, Body: "twelve present", ReverseBody: "twelve present reversed", Status: oracle.StatusPublish},
		{ID: 3, CardID: 3, PositionID: FutureID, Body: "three future", ReverseBody: "three future reversed", Status: oracle.StatusPublish},
	}
	return c
}
