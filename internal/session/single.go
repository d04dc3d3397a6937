package session

import (
	"context"
	"time"

	"github.com/arcanaland/cardoracle/internal/oracle"
)

// Single is a one-card draw together with the reading it came from
type Single struct {
	Reading oracle.Reading
	Card    oracle.Card
}

// CardOfDay picks the card at index dayOfYear mod poolSize, with the day
// counted from zero. The same day and pool always give the same card.
func (b *Builder) CardOfDay(ctx context.Context, readingID uint, date time.Time) (*Single, error) {
	reading, pool, err := b.pool(ctx, readingID)
	if err != nil {
		return nil, err
	}
	idx := (date.YearDay() - 1) % max(len(pool), 1)
	return &Single{Reading: *reading, Card: pool[idx]}, nil
}

// RandomCard picks a card uniformly from the reading's pool
func (b *Builder) RandomCard(ctx context.Context, readingID uint) (*Single, error) {
	reading, pool, err := b.pool(ctx, readingID)
	if err != nil {
		return nil, err
	}
	return &Single{Reading: *reading, Card: pool[b.rnd.IntN(len(pool))]}, nil
}

func (b *Builder) pool(ctx context.Context, readingID uint) (*oracle.Reading, []oracle.Card, error) {
	reading, err := b.src.Reading(ctx, readingID)
	if err != nil {
		return nil, nil, err
	}
	pool, err := b.src.Cards(ctx, readingID)
	if err != nil {
		return nil, nil, err
	}
	if len(pool) == 0 {
		return nil, nil, &oracle.EmptyPoolError{ReadingID: readingID}
	}
	return reading, pool, nil
}
