// Package protocol implements the SMS text protocol spoken between a
// tracking device and its controller.
//
// Wire format:
//
//	MESSAGE := KIND " | " FIELD ("; " FIELD)*
//	FIELD   := NAME ": " VALUE
//
// Location and Satellites values are pairs wrapped in parentheses, for
// example "Location: (48.8566,2.3522)".
//
// Decoding is partial and order-independent: every known field whose
// marker is present is extracted, everything else is ignored. Numeric
// values are returned as text and parsed on demand with ParseNumber and
// ParsePair, so a malformed number never prevents other fields from being
// read.
//
// There is no escaping. Values must not contain ';', ')' or '|'.
package protocol
