// Package session deals cards for a reading and turns a visitor's picks
// into a resolved reading.
package session

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/arcanaland/cardoracle/internal/oracle"
)

// Source is the read side of the catalog the builder needs
type Source interface {
	Reading(ctx context.Context, id uint) (*oracle.Reading, error)
	Positions(ctx context.Context, readingID uint) ([]oracle.Position, error)
	Cards(ctx context.Context, readingID uint) ([]oracle.Card, error)
	Description(ctx context.Context, cardID, positionID uint) (*oracle.Description, error)
}

// Session is one render of the pick screen
type Session struct {
	Reading   oracle.Reading
	Positions []oracle.Position
	// Cards is the shuffled pool with each card's orientation
	Cards []oracle.PickedCard
	Pool  []oracle.Card
}

// Card returns the pool card with the given id
func (s *Session) Card(id uint) (oracle.Card, bool) {
	return findCard(s.Pool, id)
}

type Builder struct {
	src Source
	rnd *lockedRand
}

type Option func(*Builder)

// WithRand makes the builder draw from r, for reproducible tests
func WithRand(r *rand.Rand) Option {
	return func(b *Builder) { b.rnd = &lockedRand{r: r} }
}

func NewBuilder(src Source, opts ...Option) *Builder {
	b := &Builder{
		src: src,
		rnd: &lockedRand{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build loads the reading's positions and card pool, draws an orientation
// for every card and shuffles the pool.
func (b *Builder) Build(ctx context.Context, readingID uint) (*Session, error) {
	reading, err := b.src.Reading(ctx, readingID)
	if err != nil {
		return nil, err
	}
	positions, err := b.src.Positions(ctx, readingID)
	if err != nil {
		return nil, err
	}
	pool, err := b.src.Cards(ctx, readingID)
	if err != nil {
		return nil, err
	}

	dealt := make([]oracle.PickedCard, len(pool))
	for i, c := range pool {
		dealt[i] = oracle.PickedCard{
			CardID: c.ID,
			// a draw below the threshold lands the card upside down
			IsReversed: b.rnd.IntN(100) < reading.ReversePercent,
		}
	}
	b.rnd.Shuffle(len(dealt), func(i, j int) { dealt[i], dealt[j] = dealt[j], dealt[i] })

	return &Session{
		Reading:   *reading,
		Positions: positions,
		Cards:     dealt,
		Pool:      pool,
	}, nil
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

func findCard(pool []oracle.Card, id uint) (oracle.Card, bool) {
	for _, c := range pool {
		if c.ID == id {
			return c, true
		}
	}
	return oracle.Card{}, false
}
