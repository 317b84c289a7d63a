// Package identity generates and classifies the 8-character identifiers used
// for events and guests.
//
// The first character is a type tag ('e' for events, 'g' for guests); the
// remaining 7 are drawn uniformly from [A-Za-z0-9]. The tag makes an ID
// self-routing, so guest-facing code never needs to know the event namespace.
package identity

import (
	"crypto/rand"
	"math/big"
	"regexp"

	"commondays/internal/domain"
)

// Kind is the namespace an identifier belongs to.
type Kind int

const (
	KindUnknown Kind = iota
	KindEvent
	KindGuest
)

const (
	eventTag   = 'e'
	guestTag   = 'g'
	randomLen  = 7
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var idRegex = regexp.MustCompile(`^[eg][A-Za-z0-9]{7}$`)

// NewEventID returns a fresh event identifier.
func NewEventID() (string, error) {
	return newID(eventTag)
}

// NewGuestID returns a fresh guest identifier.
func NewGuestID() (string, error) {
	return newID(guestTag)
}

func newID(tag byte) (string, error) {
	b := make([]byte, randomLen+1)
	b[0] = tag
	max := big.NewInt(int64(len(idAlphabet)))
	for i := 1; i <= randomLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = idAlphabet[n.Int64()]
	}
	return string(b), nil
}

// KindOf classifies an identifier. Malformed identifiers are KindUnknown.
func KindOf(id string) Kind {
	if !idRegex.MatchString(id) {
		return KindUnknown
	}
	switch id[0] {
	case eventTag:
		return KindEvent
	case guestTag:
		return KindGuest
	}
	return KindUnknown
}

// ValidateEventID rejects identifiers that are not well-formed event IDs.
// It runs before any record is addressed.
func ValidateEventID(id string) error {
	if KindOf(id) != KindEvent {
		return domain.ErrInvalidID
	}
	return nil
}

// ValidateGuestID rejects identifiers that are not well-formed guest IDs.
func ValidateGuestID(id string) error {
	if KindOf(id) != KindGuest {
		return domain.ErrInvalidID
	}
	return nil
}
