package store

import (
	"context"

	"github.com/arcanaland/cardoracle/internal/oracle"
)

// Query filters catalog records. Zero fields do not filter.
type Query struct {
	Status     oracle.Status
	IDs        []uint
	ReadingID  uint
	CardID     uint
	PositionID uint
}

// Published is a Query limited to published records
func Published() Query {
	return Query{Status: oracle.StatusPublish}
}

func (q Query) ForReading(id uint) Query {
	q.ReadingID = id
	return q
}

func (q Query) ForPair(cardID, positionID uint) Query {
	q.CardID = cardID
	q.PositionID = positionID
	return q
}

// ContentStore is typed record storage for the catalog.
//
// Positions come back ordered by Order then ID, readings by title, cards and
// descriptions by ID. Get methods return *oracle.NotFoundError for missing
// records regardless of status.
type ContentStore interface {
	GetReading(ctx context.Context, id uint) (*oracle.Reading, error)
	GetCard(ctx context.Context, id uint) (*oracle.Card, error)

	FindReadings(ctx context.Context, q Query) ([]oracle.Reading, error)
	FindPositions(ctx context.Context, q Query) ([]oracle.Position, error)
	FindCards(ctx context.Context, q Query) ([]oracle.Card, error)
	FindDescriptions(ctx context.Context, q Query) ([]oracle.Description, error)

	// Save creates the record when its ID is zero and updates it otherwise.
	// Saving a card also replaces its reading links with card.ReadingIDs.
	Save(ctx context.Context, record Record) error
	Delete(ctx context.Context, record Record) error

	// PurgeReading deletes a reading with its positions and their
	// descriptions, and unlinks its cards. Cards left in no reading are
	// deleted with their descriptions.
	PurgeReading(ctx context.Context, id uint) error

	// WithTx runs fn against a store bound to one transaction
	WithTx(ctx context.Context, fn func(ContentStore) error) error
}

// Record is one of *oracle.Reading, *oracle.Position, *oracle.Card or *oracle.Description
type Record interface {
	Validate() error
}
