package protocol

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	kindSeparator  = " | "
	fieldSeparator = "; "
	nameSeparator  = ": "
)

// ErrForbiddenChar is returned by Validate when a value contains a
// character the wire format cannot carry.
var ErrForbiddenChar = errors.New("protocol: forbidden character in value")

// Encode renders kind and fields to wire text in the given order.
//
// Values of pair fields (Location, Satellites) are wrapped in parentheses
// unless already wrapped. A message without fields encodes to its kind.
func Encode(kind string, fields ...Field) string {
	var b strings.Builder
	b.WriteString(kind)
	for i, f := range fields {
		if i == 0 {
			b.WriteString(kindSeparator)
		} else {
			b.WriteString(fieldSeparator)
		}
		b.WriteString(f.Name)
		b.WriteString(nameSeparator)
		if IsPairField(f.Name) {
			b.WriteString(wrapPair(f.Value))
		} else {
			b.WriteString(f.Value)
		}
	}
	return b.String()
}

// Decode parses wire text into a Message.
//
// The kind is the trimmed text before the first '|', or the whole trimmed
// text when there is none. Each known field whose "<Name>: " marker is
// present is extracted; its value runs to the next ';' (pair fields: from
// '(' to the next ')'), or to the end of the text when the terminator is
// missing. Only the kind is trimmed; values keep their surrounding
// whitespace. Fields keep their order of appearance. Decode never fails.
func Decode(text string) Message {
	kind := text
	if i := strings.IndexByte(text, '|'); i >= 0 {
		kind = text[:i]
	}
	msg := Message{Kind: strings.TrimSpace(kind)}

	type hit struct {
		pos   int
		field Field
	}
	var hits []hit
	for _, name := range KnownFields {
		marker := name + nameSeparator
		pos := findMarker(text, marker)
		if pos < 0 {
			continue
		}
		value := extractValue(text[pos+len(marker):], IsPairField(name))
		hits = append(hits, hit{pos: pos, field: Field{Name: name, Value: value}})
	}

	slices.SortFunc(hits, func(a, b hit) int { return cmp.Compare(a.pos, b.pos) })
	for _, h := range hits {
		msg.fields = append(msg.fields, h.field)
	}
	return msg
}

// Validate checks that no value contains ';', ')' or '|'.
func Validate(fields ...Field) error {
	for _, f := range fields {
		if i := strings.IndexAny(f.Value, ";)|"); i >= 0 {
			return fmt.Errorf("%w: %q in %s", ErrForbiddenChar, f.Value[i], f.Name)
		}
	}
	return nil
}

// findMarker returns the index of the first occurrence of marker that is
// not the tail of a longer word, or -1.
func findMarker(text, marker string) int {
	from := 0
	for from <= len(text) {
		i := strings.Index(text[from:], marker)
		if i < 0 {
			return -1
		}
		pos := from + i
		if pos == 0 || !isWordByte(text[pos-1]) {
			return pos
		}
		from = pos + 1
	}
	return -1
}

func extractValue(rest string, pair bool) string {
	if pair {
		trimmed := strings.TrimLeft(rest, " ")
		if strings.HasPrefix(trimmed, "(") {
			inner := trimmed[1:]
			if end := strings.IndexByte(inner, ')'); end >= 0 {
				return inner[:end]
			}
			return inner
		}
	}
	if end := strings.IndexByte(rest, ';'); end >= 0 {
		return rest[:end]
	}
	return rest
}

func wrapPair(v string) string {
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		return v
	}
	return "(" + v + ")"
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
