package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/cardoracle/internal/logger"
	"github.com/arcanaland/cardoracle/internal/oracle"
)

func openTestStore(t *testing.T) *GormStore {
	t.Helper()
	s, err := Open("sqlite", filepath.Join(t.TempDir(), "oracle.db"), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fixture struct {
	reading  *oracle.Reading
	past     *oracle.Position
	present  *oracle.Position
	future   *oracle.Position
	fool     *oracle.Card
	magician *oracle.Card
	draft    *oracle.Card
}

func seed(t *testing.T, s *GormStore) fixture {
	t.Helper()
	ctx := context.Background()

	f := fixture{reading: &oracle.Reading{Title: "Past-Present-Future", ReversePercent: 25}}
	require.NoError(t, s.Save(ctx, f.reading))

	// saved out of order on purpose
	f.future = &oracle.Position{Title: "Future", Order: 3, ReadingID: f.reading.ID}
	f.past = &oracle.Position{Title: "Past", Order: 1, ReadingID: f.reading.ID}
	f.present = &oracle.Position{Title: "Present", Order: 2, ReadingID: f.reading.ID}
	for _, p := range []*oracle.Position{f.future, f.past, f.present} {
		require.NoError(t, s.Save(ctx, p))
	}

	f.fool = &oracle.Card{Title: "The Fool", ReadingIDs: []uint{f.reading.ID}}
	f.magician = &oracle.Card{Title: "The Magician", ReadingIDs: []uint{f.reading.ID}}
	f.draft = &oracle.Card{Title: "Unfinished", Status: oracle.StatusDraft, ReadingIDs: []uint{f.reading.ID}}
	for _, c := range []*oracle.Card{f.fool, f.magician, f.draft} {
		require.NoError(t, s.Save(ctx, c))
	}

	require.NoError(t, s.Save(ctx, &oracle.Description{
		CardID: f.fool.ID, PositionID: f.past.ID, Body: "B", ReverseBody: "R",
	}))
	return f
}

func TestFindPositionsOrdersByOrder(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)

	positions, err := s.FindPositions(context.Background(), Published().ForReading(f.reading.ID))
	require.NoError(t, err)

	var titles []string
	for _, p := range positions {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"Past", "Present", "Future"}, titles)
}

func TestFindPositionsTiesKeepInsertionOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	r := &oracle.Reading{Title: "Ties"}
	require.NoError(t, s.Save(ctx, r))
	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, s.Save(ctx, &oracle.Position{Title: title, Order: 1, ReadingID: r.ID}))
	}

	positions, err := s.FindPositions(ctx, Query{ReadingID: r.ID})
	require.NoError(t, err)
	require.Len(t, positions, 3)
	assert.Equal(t, "first", positions[0].Title)
	assert.Equal(t, "third", positions[2].Title)
}

func TestFindCardsFiltersByReadingAndStatus(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	other := &oracle.Reading{Title: "Other"}
	require.NoError(t, s.Save(ctx, other))
	require.NoError(t, s.Save(ctx, &oracle.Card{Title: "Elsewhere", ReadingIDs: []uint{other.ID}}))

	cards, err := s.FindCards(ctx, Published().ForReading(f.reading.ID))
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "The Fool", cards[0].Title)
	assert.Equal(t, []uint{f.reading.ID}, cards[0].ReadingIDs)

	all, err := s.FindCards(ctx, Query{ReadingID: f.reading.ID})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCardInMultipleReadings(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	second := &oracle.Reading{Title: "Single Card"}
	require.NoError(t, s.Save(ctx, second))
	f.fool.ReadingIDs = []uint{f.reading.ID, second.ID, second.ID}
	require.NoError(t, s.Save(ctx, f.fool))

	card, err := s.GetCard(ctx, f.fool.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{f.reading.ID, second.ID}, card.ReadingIDs)

	cards, err := s.FindCards(ctx, Published().ForReading(second.ID))
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, f.fool.ID, cards[0].ID)
}

func TestFindDescriptionsByPair(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	found, err := s.FindDescriptions(ctx, Published().ForPair(f.fool.ID, f.past.ID))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "R", found[0].ReverseBody)

	none, err := s.FindDescriptions(ctx, Published().ForPair(f.fool.ID, f.future.ID))
	require.NoError(t, err)
	assert.Empty(t, none)

	forReading, err := s.FindDescriptions(ctx, Query{ReadingID: f.reading.ID})
	require.NoError(t, err)
	assert.Len(t, forReading, 1)
}

func TestGetReadingNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetReading(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oracle.ErrNotFound))

	var nf *oracle.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, oracle.KindReading, nf.Kind)
}

func TestSaveRejectsInvalidRecords(t *testing.T) {
	s := openTestStore(t)
	err := s.Save(context.Background(), &oracle.Reading{Title: "x", ReversePercent: 150})
	assert.Error(t, err)
}

func TestDeleteReadingKeepsDependents(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, f.reading))

	positions, err := s.FindPositions(ctx, Query{ReadingID: f.reading.ID})
	require.NoError(t, err)
	assert.Len(t, positions, 3, "plain delete does not cascade")

	cards, err := s.FindCards(ctx, Query{ReadingID: f.reading.ID})
	require.NoError(t, err)
	assert.Empty(t, cards, "links are removed with the reading")
}

func TestPurgeReading(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	keep := &oracle.Reading{Title: "Keep"}
	require.NoError(t, s.Save(ctx, keep))
	f.magician.ReadingIDs = []uint{f.reading.ID, keep.ID}
	require.NoError(t, s.Save(ctx, f.magician))

	require.NoError(t, s.PurgeReading(ctx, f.reading.ID))

	_, err := s.GetReading(ctx, f.reading.ID)
	assert.True(t, errors.Is(err, oracle.ErrNotFound))

	_, err = s.GetCard(ctx, f.fool.ID)
	assert.True(t, errors.Is(err, oracle.ErrNotFound), "orphaned card is purged")

	magician, err := s.GetCard(ctx, f.magician.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{keep.ID}, magician.ReadingIDs)

	descriptions, err := s.FindDescriptions(ctx, Query{})
	require.NoError(t, err)
	assert.Empty(t, descriptions)

	assert.True(t, errors.Is(s.PurgeReading(ctx, f.reading.ID), oracle.ErrNotFound))
}

func TestWithTxRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx ContentStore) error {
		if err := tx.Save(ctx, &oracle.Reading{Title: "Rolled back"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	readings, err := s.FindReadings(ctx, Query{})
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "dsn", logger.NewNop())
	assert.Error(t, err)
}
