package logger

import (
	"log/slog"
	"strings"
)

// Key fragments whose values are always fully redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"key",
	"credential",
}

// Keys redacted only on exact match. "code" is the pairing secret on the
// wire, but "error_code" must stay readable.
var sensitiveExactKeys = []string{
	"code",
}

// Key fragments that hold phone numbers.
var phoneKeyPatterns = []string{
	"number",
	"sender",
	"recipient",
}

// Keys that hold raw SMS text.
var smsKeys = []string{
	"sms",
	"body",
	"text",
}

// codeMarker starts the secret-bearing field of a protocol message.
const codeMarker = "CODE: "

// phoneVisibleDigits is how many trailing characters of a phone number
// stay readable.
const phoneVisibleDigits = 4

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}
	val := a.Value.String()
	if val == "" {
		return a
	}
	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, redactedValue)
	}
	if isPhoneKey(a.Key) {
		return slog.String(a.Key, MaskNumber(val))
	}
	if isSMSKey(a.Key) {
		return slog.String(a.Key, ScrubSMS(val))
	}
	return a
}

// ScrubSMS replaces the value of every CODE field in protocol text.
func ScrubSMS(text string) string {
	var b strings.Builder
	for {
		i := strings.Index(text, codeMarker)
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:i+len(codeMarker)])
		b.WriteString(redactedValue)
		text = text[i+len(codeMarker):]
		if end := strings.IndexByte(text, ';'); end >= 0 {
			text = text[end:]
		} else {
			text = ""
		}
	}
}

// MaskNumber hides all but the last digits of a phone number.
func MaskNumber(number string) string {
	if len(number) <= phoneVisibleDigits {
		return strings.Repeat("*", len(number))
	}
	return strings.Repeat("*", len(number)-phoneVisibleDigits) + number[len(number)-phoneVisibleDigits:]
}

// IsSensitiveKey checks if a key name suggests secret content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, k := range sensitiveExactKeys {
		if keyLower == k {
			return true
		}
	}
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

func isPhoneKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range phoneKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

func isSMSKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, k := range smsKeys {
		if keyLower == k {
			return true
		}
	}
	return false
}
