package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/cardoracle/internal/logger"
	"github.com/arcanaland/cardoracle/internal/oracle"
	"github.com/arcanaland/cardoracle/internal/store"
)

func newCatalog(t *testing.T) (*Catalog, *store.GormStore) {
	t.Helper()
	s, err := store.Open("sqlite", filepath.Join(t.TempDir(), "oracle.db"), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s), s
}

func TestReadingHidesDrafts(t *testing.T) {
	c, s := newCatalog(t)
	ctx := context.Background()

	draft := &oracle.Reading{Title: "Coming soon", Status: oracle.StatusDraft}
	require.NoError(t, s.Save(ctx, draft))

	_, err := c.Reading(ctx, draft.ID)
	assert.True(t, errors.Is(err, oracle.ErrNotFound))

	_, err = c.Reading(ctx, draft.ID+100)
	assert.True(t, errors.Is(err, oracle.ErrNotFound))
}

func TestDescriptionLookup(t *testing.T) {
	c, s := newCatalog(t)
	ctx := context.Background()

	r := &oracle.Reading{Title: "One Card"}
	require.NoError(t, s.Save(ctx, r))
	p := &oracle.Position{Title: "Today", Order: 1, ReadingID: r.ID}
	require.NoError(t, s.Save(ctx, p))
	card := &oracle.Card{Title: "The Star", ReadingIDs: []uint{r.ID}}
	require.NoError(t, s.Save(ctx, card))
	require.NoError(t, s.Save(ctx, &oracle.Description{CardID: card.ID, PositionID: p.ID, Body: "hope"}))
	require.NoError(t, s.Save(ctx, &oracle.Description{CardID: card.ID, PositionID: p.ID, Body: "second", Status: oracle.StatusDraft}))

	d, err := c.Description(ctx, card.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "hope", d.Body)

	d, err = c.Description(ctx, card.ID, p.ID+1)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestSummaries(t *testing.T) {
	c, s := newCatalog(t)
	ctx := context.Background()

	r := &oracle.Reading{Title: "Two Card"}
	require.NoError(t, s.Save(ctx, r))
	empty := &oracle.Reading{Title: "Empty", Status: oracle.StatusDraft}
	require.NoError(t, s.Save(ctx, empty))

	a := &oracle.Position{Title: "A", Order: 1, ReadingID: r.ID}
	b := &oracle.Position{Title: "B", Order: 2, ReadingID: r.ID}
	require.NoError(t, s.Save(ctx, a))
	require.NoError(t, s.Save(ctx, b))
	card := &oracle.Card{Title: "Death", ReadingIDs: []uint{r.ID}}
	require.NoError(t, s.Save(ctx, card))
	require.NoError(t, s.Save(ctx, &oracle.Description{CardID: card.ID, PositionID: a.ID}))
	require.NoError(t, s.Save(ctx, &oracle.Description{CardID: card.ID, PositionID: b.ID}))

	summaries, err := c.Summaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "Empty", summaries[0].Reading.Title)
	assert.Zero(t, summaries[0].Cards)

	assert.Equal(t, "Two Card", summaries[1].Reading.Title)
	assert.Equal(t, 2, summaries[1].Positions)
	assert.Equal(t, 1, summaries[1].Cards)
	assert.Equal(t, 2, summaries[1].Descriptions)
}

func TestCardHidesDrafts(t *testing.T) {
	c, s := newCatalog(t)
	ctx := context.Background()

	star := &oracle.Card{Title: "The Star"}
	draft := &oracle.Card{Title: "Unfinished", Status: oracle.StatusDraft}
	require.NoError(t, s.Save(ctx, star))
	require.NoError(t, s.Save(ctx, draft))

	card, err := c.Card(ctx, star.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Star", card.Title)

	_, err = c.Card(ctx, draft.ID)
	assert.True(t, errors.Is(err, oracle.ErrNotFound))

	_, err = c.Card(ctx, draft.ID+100)
	assert.True(t, errors.Is(err, oracle.ErrNotFound))
}
