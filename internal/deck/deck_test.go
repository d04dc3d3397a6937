package deck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/cardoracle/internal/logger"
	"github.com/arcanaland/cardoracle/internal/oracle"
	"github.com/arcanaland/cardoracle/internal/store"
)

func TestLoadTOMLExpandsArcana(t *testing.T) {
	d, err := Load("testdata/three-card.toml")
	require.NoError(t, err)

	require.Len(t, d.Readings, 2)
	assert.Equal(t, 25, d.Readings[0].ReversePercent)
	assert.True(t, d.Readings[0].DisplayQuestion)
	require.Len(t, d.Positions, 4)
	assert.Len(t, d.Cards, 22)

	fool, ok := d.Card("major_arcana.00")
	require.True(t, ok)
	assert.Equal(t, "<p>New beginnings.</p>", fool.Body)
	assert.ElementsMatch(t, []string{"daily", "ppf"}, fool.Readings)

	world, ok := d.Card("major_arcana.21")
	require.True(t, ok)
	assert.Equal(t, "The World", world.Title)
	assert.Equal(t, []string{"ppf"}, world.Readings)
}

func TestDecodeLeavesArcanaAlone(t *testing.T) {
	d, err := Decode("testdata/three-card.toml")
	require.NoError(t, err)
	assert.Len(t, d.Cards, 1)
}

func TestLoadYAML(t *testing.T) {
	d, err := Load("testdata/three-card.yaml")
	require.NoError(t, err)

	require.Len(t, d.Readings, 1)
	assert.Equal(t, "What would you like to know?", d.Readings[0].QuestionText)
	require.Len(t, d.Positions, 3)
	assert.Equal(t, "Present", d.Positions[1].Title)
	assert.Len(t, d.Cards, 3)
	require.Len(t, d.Descriptions, 1)
	assert.Equal(t, "A cloudy day.", d.Descriptions[0].ReverseBody)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("testdata/missing.toml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "deck.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "unsupported deck file")

	path = filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[readings]\n"), 0644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "error parsing bad.toml")
}

func TestStandardArcana(t *testing.T) {
	major := MajorArcana()
	require.Len(t, major, 22)
	assert.Equal(t, "The Fool", major[0].Title)
	assert.Equal(t, "major_arcana.00", major[0].Key)

	minor := MinorArcana()
	require.Len(t, minor, 56)
	assert.Equal(t, "Ace of Wands", minor[0].Title)
	assert.Equal(t, "minor_arcana.pentacles.king", minor[55].Key)
	assert.Equal(t, "King of Pentacles", minor[55].Title)
}

func openStore(t *testing.T) *store.GormStore {
	t.Helper()
	s, err := store.Open("sqlite", filepath.Join(t.TempDir(), "oracle.db"), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestImport(t *testing.T) {
	d, err := Load("testdata/three-card.toml")
	require.NoError(t, err)
	s := openStore(t)
	ctx := context.Background()

	res, err := d.Import(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Readings)
	assert.Equal(t, 4, res.Positions)
	assert.Equal(t, 22, res.Cards)
	assert.Equal(t, 2, res.Descriptions)

	ppf := res.ReadingIDs["ppf"]
	reading, err := s.GetReading(ctx, ppf)
	require.NoError(t, err)
	assert.Equal(t, "Past-Present-Future", reading.Title)
	assert.Equal(t, oracle.StatusPublish, reading.Status)

	daily, err := s.GetReading(ctx, res.ReadingIDs["daily"])
	require.NoError(t, err)
	assert.Equal(t, oracle.StatusDraft, daily.Status)

	positions, err := s.FindPositions(ctx, store.Published().ForReading(ppf))
	require.NoError(t, err)
	require.Len(t, positions, 3)
	assert.Equal(t, "Past", positions[0].Title)

	cards, err := s.FindCards(ctx, store.Published().ForReading(ppf))
	require.NoError(t, err)
	assert.Len(t, cards, 22)

	cards, err = s.FindCards(ctx, store.Published().ForReading(res.ReadingIDs["daily"]))
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "The Fool", cards[0].Title)

	descs, err := s.FindDescriptions(ctx, store.Published().ForReading(ppf))
	require.NoError(t, err)
	assert.Len(t, descs, 2)
}

func TestImportRollsBackOnBadReference(t *testing.T) {
	d, err := Load("testdata/broken.toml")
	require.NoError(t, err)
	s := openStore(t)
	ctx := context.Background()

	_, err = d.Import(ctx, s)
	assert.ErrorContains(t, err, `unknown reading "nope"`)

	readings, err := s.FindReadings(ctx, store.Query{})
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestImportRejectsInvalidRecord(t *testing.T) {
	d := &Deck{Readings: []ReadingDef{{Key: "x", Title: "Too Many", ReversePercent: 150}}}
	_, err := d.Import(context.Background(), openStore(t))
	assert.ErrorContains(t, err, "out of range")
}

func TestImportResolvesLocalImages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "art"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "art", "fool.png"), []byte("png"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "art", "back.png"), []byte("png"), 0644))

	path := filepath.Join(dir, "deck.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[readings]]
key = "one"
title = "One Card"
back_image = "art/back.png"

[[positions]]
key = "now"
reading = "one"
title = "Now"

[[cards]]
key = "fool"
title = "The Fool"
image = "art/fool.png"
readings = ["one"]

[[cards]]
key = "star"
title = "The Star"
image = "https://example.com/star.png"
readings = ["one"]
`), 0644))

	d, err := Load(path)
	require.NoError(t, err)
	s := openStore(t)
	ctx := context.Background()

	// Resolution must not depend on the working directory
	t.Chdir(t.TempDir())

	res, err := d.Import(ctx, s)
	require.NoError(t, err)

	reading, err := s.GetReading(ctx, res.ReadingIDs["one"])
	require.NoError(t, err)
	back, ok := oracle.LocalImagePath(reading.BackImage)
	require.True(t, ok, reading.BackImage)
	assert.FileExists(t, back)

	cards, err := s.FindCards(ctx, store.Published().ForReading(res.ReadingIDs["one"]))
	require.NoError(t, err)
	require.Len(t, cards, 2)

	fool, ok := oracle.LocalImagePath(cards[0].Image)
	require.True(t, ok, cards[0].Image)
	assert.True(t, filepath.IsAbs(fool))
	assert.FileExists(t, fool)
	assert.Equal(t, "https://example.com/star.png", cards[1].Image)
}
