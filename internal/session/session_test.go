package session

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/arcanaland/cardoracle/internal/oracle"
	"github.com/arcanaland/cardoracle/internal/oracletest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newBuilder(c *oracletest.Catalog) *Builder {
	return NewBuilder(c, WithRand(rand.New(rand.NewPCG(1, 2))))
}

func TestBuildDealsWholePoolOnce(t *testing.T) {
	b := newBuilder(oracletest.PastPresentFuture(50))

	s, err := b.Build(context.Background(), oracletest.ReadingID)
	require.NoError(t, err)

	require.Len(t, s.Positions, 3)
	assert.Equal(t, "Past", s.Positions[0].Title)
	assert.Equal(t, "Present", s.Positions[1].Title)
	assert.Equal(t, "Future", s.Positions[2].Title)

	require.Len(t, s.Cards, 22)
	seen := map[uint]bool{}
	for _, c := range s.Cards {
		assert.False(t, seen[c.CardID], "card %d dealt twice", c.CardID)
		seen[c.CardID] = true
		_, ok := s.Card(c.CardID)
		assert.True(t, ok)
	}
	assert.Len(t, seen, 22)
}

func TestBuildReshufflesEachRender(t *testing.T) {
	b := newBuilder(oracletest.PastPresentFuture(0))
	ctx := context.Background()

	first, err := b.Build(ctx, oracletest.ReadingID)
	require.NoError(t, err)
	second, err := b.Build(ctx, oracletest.ReadingID)
	require.NoError(t, err)

	assert.NotEqual(t, first.Cards, second.Cards)
}

func TestBuildMissingReading(t *testing.T) {
	c := oracletest.PastPresentFuture(0)
	draft := c.Readings[oracletest.ReadingID]
	draft.Status = oracle.StatusDraft
	c.Readings[oracletest.ReadingID] = draft

	b := newBuilder(c)
	_, err := b.Build(context.Background(), oracletest.ReadingID)
	assert.True(t, errors.Is(err, oracle.ErrNotFound))

	_, err = b.Build(context.Background(), 404)
	assert.True(t, errors.Is(err, oracle.ErrNotFound))
}

func TestReversalFrequencyTracksPercent(t *testing.T) {
	for _, percent := range []int{10, 30, 75} {
		b := newBuilder(oracletest.PastPresentFuture(percent))

		var reversed, total int
		for i := 0; i < 500; i++ {
			s, err := b.Build(context.Background(), oracletest.ReadingID)
			require.NoError(t, err)
			for _, c := range s.Cards {
				total++
				if c.IsReversed {
					reversed++
				}
			}
		}

		got := float64(reversed) / float64(total)
		assert.InDelta(t, float64(percent)/100, got, 0.05, "percent=%d", percent)
	}
}

func TestReversalBoundaries(t *testing.T) {
	tests := []struct {
		percent int
		want    bool
	}{
		{0, false},
		{100, true},
	}

	for _, tt := range tests {
		b := newBuilder(oracletest.PastPresentFuture(tt.percent))
		for i := 0; i < 50; i++ {
			s, err := b.Build(context.Background(), oracletest.ReadingID)
			require.NoError(t, err)
			for _, c := range s.Cards {
				require.Equal(t, tt.want, c.IsReversed, "percent=%d card=%d", tt.percent, c.CardID)
			}
		}
	}
}

func TestCardOfDay(t *testing.T) {
	b := newBuilder(oracletest.PastPresentFuture(0))
	ctx := context.Background()

	tests := []struct {
		date time.Time
		want uint
	}{
		{time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC), 1},
		{time.Date(2026, time.January, 22, 9, 0, 0, 0, time.UTC), 22},
		{time.Date(2026, time.January, 23, 9, 0, 0, 0, time.UTC), 1},
		{time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC), 10},
	}
	for _, tt := range tests {
		got, err := b.CardOfDay(ctx, oracletest.ReadingID, tt.date)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Card.ID, tt.date.Format(time.DateOnly))
	}
}

func TestCardOfDayIsIdempotent(t *testing.T) {
	b := newBuilder(oracletest.PastPresentFuture(0))
	ctx := context.Background()
	morning := time.Date(2026, time.October, 15, 6, 0, 0, 0, time.UTC)

	first, err := b.CardOfDay(ctx, oracletest.ReadingID, morning)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := b.CardOfDay(ctx, oracletest.ReadingID, morning.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, first.Card.ID, again.Card.ID)
	}
}

func TestRandomCardIsUniform(t *testing.T) {
	b := newBuilder(oracletest.PastPresentFuture(0))
	ctx := context.Background()

	const perCard = 1000
	counts := map[uint]int{}
	for i := 0; i < 22*perCard; i++ {
		got, err := b.RandomCard(ctx, oracletest.ReadingID)
		require.NoError(t, err)
		counts[got.Card.ID]++
	}
	require.Len(t, counts, 22)

	var chi2 float64
	for _, n := range counts {
		d := float64(n - perCard)
		chi2 += d * d / perCard
	}
	// critical value for 21 degrees of freedom at p = 0.001
	assert.Less(t, chi2, 46.8)
	assert.False(t, math.IsNaN(chi2))
}

func TestSingleCardEmptyPool(t *testing.T) {
	c := oracletest.PastPresentFuture(0)
	c.CardRecords = nil
	b := newBuilder(c)
	ctx := context.Background()

	_, err := b.CardOfDay(ctx, oracletest.ReadingID, time.Now())
	assert.True(t, errors.Is(err, oracle.ErrEmptyPool))

	_, err = b.RandomCard(ctx, oracletest.ReadingID)
	var empty *oracle.EmptyPoolError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, uint(oracletest.ReadingID), empty.ReadingID)
}
