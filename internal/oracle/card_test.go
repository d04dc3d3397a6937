package oracle

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingValidate(t *testing.T) {
	tests := []struct {
		name    string
		reading Reading
		wantErr bool
	}{
		{"defaults status", Reading{Title: "Three Card"}, false},
		{"missing title", Reading{Title: "  "}, true},
		{"percent too high", Reading{Title: "x", ReversePercent: 101}, true},
		{"percent negative", Reading{Title: "x", ReversePercent: -1}, true},
		{"boundary 100", Reading{Title: "x", ReversePercent: 100}, false},
		{"bad status", Reading{Title: "x", Status: "trash"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.reading
			err := r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, r.Status.Valid())
		})
	}
}

func TestReadingValidateDefaultsToPublished(t *testing.T) {
	r := Reading{Title: "Celtic Cross"}
	require.NoError(t, r.Validate())
	assert.True(t, r.Published())
}

func TestDescriptionText(t *testing.T) {
	d := &Description{Body: "B", ReverseBody: "R"}
	assert.Equal(t, "B", d.Text(false))
	assert.Equal(t, "R", d.Text(true))

	var missing *Description
	assert.Equal(t, "", missing.Text(true))
}

func TestDescriptionValidateNeedsPair(t *testing.T) {
	assert.Error(t, (&Description{CardID: 1}).Validate())
	assert.Error(t, (&Description{PositionID: 1}).Validate())
	assert.NoError(t, (&Description{CardID: 1, PositionID: 2}).Validate())
}

func TestErrorTaxonomy(t *testing.T) {
	err := fmt.Errorf("loading: %w", &NotFoundError{Kind: KindReading, ID: 7})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.EqualError(t, err, "loading: reading 7 not found")

	assert.True(t, errors.Is(&EmptyPoolError{ReadingID: 1}, ErrEmptyPool))

	var verr *ValidationError
	err = fmt.Errorf("submit: %w", &ValidationError{Kind: CountMismatch, Want: 3, Got: 2})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, CountMismatch, verr.Kind)
	assert.True(t, errors.Is(err, ErrValidation))

	cause := errors.New("connection refused")
	derr := &DeliveryError{To: "a@example.com", Err: cause}
	assert.True(t, errors.Is(derr, ErrDelivery))
	assert.True(t, errors.Is(derr, cause))
}

func TestLocalImagePath(t *testing.T) {
	image := LocalImage("/srv/decks/art/fool.png")
	assert.Equal(t, "file:///srv/decks/art/fool.png", image)

	path, ok := LocalImagePath(image)
	require.True(t, ok)
	assert.Equal(t, "/srv/decks/art/fool.png", filepath.ToSlash(path))

	for _, image := range []string{"", "https://example.com/fool.png", "/wp-content/fool.png", "art/fool.png", "file://"} {
		_, ok := LocalImagePath(image)
		assert.False(t, ok, image)
	}
}
