package utils // package utils provides helper functions for ticket token creation and parsing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ticketType is the "typ" claim carried by every ticket token so that a
// token signed for another purpose with the same secret is not accepted.
const ticketType = "ticket"

// ErrInvalidTicketToken is returned for any token that fails to parse,
// verify or carry a booking reference.
var ErrInvalidTicketToken = errors.New("invalid ticket token")

// TicketToken is a signed JWT that lets the holder read one booking.
type TicketToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewTicketToken builds and signs an HS256 JWT for a booking reference.
// The subject claim is the reference.
func NewTicketToken(secret, reference string, ttl time.Duration) (TicketToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub": reference,
		"typ": ticketType,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return TicketToken{}, err
	}
	return TicketToken{Token: signed, Exp: exp}, nil
}

// ParseTicketToken verifies raw and returns the booking reference it was
// issued for.
func ParseTicketToken(secret, raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return "", ErrInvalidTicketToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != ticketType {
		return "", ErrInvalidTicketToken
	}
	ref, err := claims.GetSubject()
	if err != nil || ref == "" {
		return "", ErrInvalidTicketToken
	}
	return ref, nil
}
