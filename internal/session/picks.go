package session

import (
	"context"
	"strconv"
	"strings"

	"github.com/arcanaland/cardoracle/internal/oracle"
)

// Submission is what the pick form posts back
type Submission struct {
	ReadingID uint
	// Picks and Reverse are comma-joined card ids in click order
	Picks    string
	Reverse  string
	Question string
}

// Pick pairs a submitted card with the position it was drawn for
type Pick struct {
	Position oracle.Position
	CardID   uint
	Reversed bool
}

// ResolvedPick is a pick with its card and the description text for its orientation
type ResolvedPick struct {
	Pick
	Card           oracle.Card
	Text           string
	HasDescription bool
}

// Result is a finished reading
type Result struct {
	Reading  oracle.Reading
	Question string
	Picks    []ResolvedPick
}

// SplitIDs splits a comma-joined list, trimming items and dropping empties
func SplitIDs(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate pairs the i-th pick with the i-th position. It fails with a
// *oracle.ValidationError unless there is exactly one distinct pool card per
// position. Orientation comes from membership in sub.Reverse.
func Validate(sub Submission, positions []oracle.Position, pool []oracle.Card) ([]Pick, error) {
	ids := SplitIDs(sub.Picks)
	if len(ids) != len(positions) {
		return nil, &oracle.ValidationError{Kind: oracle.CountMismatch, Want: len(positions), Got: len(ids)}
	}

	reversed := make(map[uint]bool)
	for _, raw := range SplitIDs(sub.Reverse) {
		if id, err := parseID(raw); err == nil {
			reversed[id] = true
		}
	}

	seen := make(map[uint]bool, len(ids))
	picks := make([]Pick, len(ids))
	for i, raw := range ids {
		id, err := parseID(raw)
		if err != nil {
			return nil, &oracle.ValidationError{Kind: oracle.MalformedPick, Pick: raw}
		}
		if seen[id] {
			return nil, &oracle.ValidationError{Kind: oracle.DuplicatePick, Pick: raw}
		}
		if _, ok := findCard(pool, id); !ok {
			return nil, &oracle.ValidationError{Kind: oracle.UnknownCard, Pick: raw}
		}
		seen[id] = true
		picks[i] = Pick{Position: positions[i], CardID: id, Reversed: reversed[id]}
	}
	return picks, nil
}

// Resolve looks up the card and description of every pick. A missing
// description leaves the text empty.
func (b *Builder) Resolve(ctx context.Context, picks []Pick, pool []oracle.Card) ([]ResolvedPick, error) {
	out := make([]ResolvedPick, len(picks))
	for i, p := range picks {
		card, ok := findCard(pool, p.CardID)
		if !ok {
			return nil, &oracle.NotFoundError{Kind: oracle.KindCard, ID: p.CardID}
		}
		d, err := b.src.Description(ctx, p.CardID, p.Position.ID)
		if err != nil {
			return nil, err
		}
		out[i] = ResolvedPick{
			Pick:           p,
			Card:           card,
			Text:           d.Text(p.Reversed),
			HasDescription: d != nil,
		}
	}
	return out, nil
}

// Submit validates a submission against the reading's current positions and
// pool and resolves it.
func (b *Builder) Submit(ctx context.Context, sub Submission) (*Result, error) {
	reading, err := b.src.Reading(ctx, sub.ReadingID)
	if err != nil {
		return nil, err
	}
	positions, err := b.src.Positions(ctx, sub.ReadingID)
	if err != nil {
		return nil, err
	}
	pool, err := b.src.Cards(ctx, sub.ReadingID)
	if err != nil {
		return nil, err
	}

	picks, err := Validate(sub, positions, pool)
	if err != nil {
		return nil, err
	}
	resolved, err := b.Resolve(ctx, picks, pool)
	if err != nil {
		return nil, err
	}
	return &Result{
		Reading:  *reading,
		Question: strings.TrimSpace(sub.Question),
		Picks:    resolved,
	}, nil
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, strconv.ErrSyntax
	}
	return uint(n), nil
}
