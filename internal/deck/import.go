package deck

import (
	"context"
	"fmt"

	"github.com/arcanaland/cardoracle/internal/oracle"
	"github.com/arcanaland/cardoracle/internal/store"
)

// ImportResult counts the records created by an import
type ImportResult struct {
	Readings     int
	Positions    int
	Cards        int
	Descriptions int

	// ReadingIDs maps reading keys to their new ids
	ReadingIDs map[string]uint
}

// Import creates every record of the deck in one transaction. Nothing is
// written if any record fails to save or refers to an unknown key.
func (d *Deck) Import(ctx context.Context, s store.ContentStore) (*ImportResult, error) {
	res := &ImportResult{ReadingIDs: map[string]uint{}}

	err := s.WithTx(ctx, func(tx store.ContentStore) error {
		positionIDs := map[string]uint{}
		cardIDs := map[string]uint{}

		for _, def := range d.Readings {
			back, err := d.ResolveImage(def.BackImage)
			if err != nil {
				return fmt.Errorf("reading %q: %w", def.Key, err)
			}
			r := &oracle.Reading{
				Title:           def.Title,
				BackImage:       back,
				ReversePercent:  def.ReversePercent,
				DisplayQuestion: def.DisplayQuestion,
				QuestionText:    def.QuestionText,
				FooterText:      def.FooterText,
				Status:          oracle.Status(def.Status),
			}
			if err := tx.Save(ctx, r); err != nil {
				return fmt.Errorf("reading %q: %w", def.Key, err)
			}
			res.ReadingIDs[def.Key] = r.ID
			res.Readings++
		}

		for _, def := range d.Positions {
			readingID, ok := res.ReadingIDs[def.Reading]
			if !ok {
				return fmt.Errorf("position %q: unknown reading %q", def.Key, def.Reading)
			}
			p := &oracle.Position{
				Title:     def.Title,
				Order:     def.Order,
				ReadingID: readingID,
				Status:    oracle.Status(def.Status),
			}
			if err := tx.Save(ctx, p); err != nil {
				return fmt.Errorf("position %q: %w", def.Key, err)
			}
			positionIDs[def.Key] = p.ID
			res.Positions++
		}

		for _, def := range d.Cards {
			image, err := d.ResolveImage(def.Image)
			if err != nil {
				return fmt.Errorf("card %q: %w", def.Key, err)
			}
			c := &oracle.Card{
				Title:  def.Title,
				Body:   def.Body,
				Image:  image,
				Status: oracle.Status(def.Status),
			}
			for _, key := range def.Readings {
				id, ok := res.ReadingIDs[key]
				if !ok {
					return fmt.Errorf("card %q: unknown reading %q", def.Key, key)
				}
				c.ReadingIDs = append(c.ReadingIDs, id)
			}
			if err := tx.Save(ctx, c); err != nil {
				return fmt.Errorf("card %q: %w", def.Key, err)
			}
			cardIDs[def.Key] = c.ID
			res.Cards++
		}

		for _, def := range d.Descriptions {
			cardID, ok := cardIDs[def.Card]
			if !ok {
				return fmt.Errorf("description for %s/%s: unknown card %q", def.Card, def.Position, def.Card)
			}
			positionID, ok := positionIDs[def.Position]
			if !ok {
				return fmt.Errorf("description for %s/%s: unknown position %q", def.Card, def.Position, def.Position)
			}
			desc := &oracle.Description{
				Body:        def.Body,
				ReverseBody: def.ReverseBody,
				CardID:      cardID,
				PositionID:  positionID,
				Status:      oracle.Status(def.Status),
			}
			if err := tx.Save(ctx, desc); err != nil {
				return fmt.Errorf("description for %s/%s: %w", def.Card, def.Position, err)
			}
			res.Descriptions++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
