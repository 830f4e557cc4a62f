package protocol

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedNumber is returned when a numeric field cannot be parsed.
var ErrMalformedNumber = errors.New("protocol: malformed number")

// Pair is a two-component numeric value such as a location
// (latitude, longitude) or a satellite count (tracked, visible).
type Pair struct {
	A float64
	B float64
}

// String renders the pair in its unwrapped wire form "a,b".
func (p Pair) String() string {
	return FormatNumber(p.A) + "," + FormatNumber(p.B)
}

// ParseNumber parses a numeric field value.
func ParseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
	}
	return v, nil
}

// ParsePair parses "a,b" or "(a,b)"; whitespace around components is ignored.
func ParsePair(s string) (Pair, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")

	left, right, ok := strings.Cut(s, ",")
	if !ok {
		return Pair{}, fmt.Errorf("%w: %q is not a pair", ErrMalformedNumber, s)
	}
	a, err := ParseNumber(left)
	if err != nil {
		return Pair{}, err
	}
	b, err := ParseNumber(right)
	if err != nil {
		return Pair{}, err
	}
	return Pair{A: a, B: b}, nil
}

// FormatNumber renders v with the fewest digits that represent it exactly.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatRounded renders v rounded to the given number of decimals.
func FormatRounded(v float64, decimals int) string {
	scale := math.Pow(10, float64(decimals))
	return FormatNumber(math.Round(v*scale) / scale)
}
