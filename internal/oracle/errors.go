package oracle

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmptyPool  = errors.New("reading has no eligible cards")
	ErrValidation = errors.New("invalid pick submission")
	ErrDelivery   = errors.New("email delivery failed")
)

// Kind names a catalog entity
type Kind string

const (
	KindReading     Kind = "reading"
	KindPosition    Kind = "position"
	KindCard        Kind = "card"
	KindDescription Kind = "description"
)

// NotFoundError is returned when a record is absent or not published
type NotFoundError struct {
	Kind Kind
	ID   uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// EmptyPoolError is returned when a reading has no cards to choose from
type EmptyPoolError struct {
	ReadingID uint
}

func (e *EmptyPoolError) Error() string {
	return fmt.Sprintf("reading %d has no eligible cards", e.ReadingID)
}

func (e *EmptyPoolError) Is(target error) bool { return target == ErrEmptyPool }

type ValidationKind string

const (
	CountMismatch ValidationKind = "count_mismatch"
	DuplicatePick ValidationKind = "duplicate_pick"
	UnknownCard   ValidationKind = "unknown_card"
	MalformedPick ValidationKind = "malformed_pick"
)

// ValidationError describes a pick submission that cannot be turned into a reading
type ValidationError struct {
	Kind ValidationKind
	Want int
	Got  int
	Pick string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case CountMismatch:
		return fmt.Sprintf("expected %d cards, got %d", e.Want, e.Got)
	case DuplicatePick:
		return fmt.Sprintf("card %s was picked more than once", e.Pick)
	case UnknownCard:
		return fmt.Sprintf("card %s is not part of this reading", e.Pick)
	default:
		return fmt.Sprintf("malformed card id %q", e.Pick)
	}
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DeliveryError wraps an email transport failure
type DeliveryError struct {
	To  string
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("sending reading email: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (e *DeliveryError) Is(target error) bool { return target == ErrDelivery }
