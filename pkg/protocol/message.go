package protocol

// Message kinds observed on the wire.
const (
	KindAuth                = "AUTH"
	KindWrongID             = "WRONG ID"
	KindVolt                = "VOLT"
	KindLowBattery          = "LOW BAT"
	KindInit                = "INIT"
	KindDeviceAuthenticated = "DEVICE AUTHENTICATED"
	KindDeviceRestart       = "DEVICE RESTART"
	KindDeviceInit          = "DEVICE INITIALISATION"
	KindLowVoltageDevice    = "LOW VOLTAGE DEVICE"
)

// Known field names.
const (
	FieldID         = "ID"
	FieldCode       = "CODE"
	FieldIMEI       = "IMEI"
	FieldTime       = "Time"
	FieldVoltage    = "Voltage"
	FieldLocation   = "Location"
	FieldSatellites = "Satellites"
)

// KnownFields lists every field name the decoder looks for.
var KnownFields = []string{
	FieldID,
	FieldCode,
	FieldIMEI,
	FieldTime,
	FieldVoltage,
	FieldLocation,
	FieldSatellites,
}

// IsPairField reports whether values of the named field are parenthesized pairs.
func IsPairField(name string) bool {
	return name == FieldLocation || name == FieldSatellites
}

// Field is a single name/value entry of a message.
type Field struct {
	Name  string
	Value string
}

// F is shorthand for building a Field.
func F(name, value string) Field {
	return Field{Name: name, Value: value}
}

// Message is a decoded or to-be-encoded protocol message.
//
// Field names are unique; fields keep insertion order, which for decoded
// messages is the order of appearance in the wire text.
type Message struct {
	Kind   string
	fields []Field
}

// NewMessage creates an empty message of the given kind.
func NewMessage(kind string) *Message {
	return &Message{Kind: kind}
}

// Set adds a field, or replaces the value of an existing one in place.
// It returns the message for chaining.
func (m *Message) Set(name, value string) *Message {
	for i := range m.fields {
		if m.fields[i].Name == name {
			m.fields[i].Value = value
			return m
		}
	}
	m.fields = append(m.fields, Field{Name: name, Value: value})
	return m
}

// Get returns the value of the named field.
func (m Message) Get(name string) (string, bool) {
	for _, f := range m.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Has reports whether the named field is present.
func (m Message) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Len returns the number of fields.
func (m Message) Len() int {
	return len(m.fields)
}

// Fields returns a copy of the fields in order.
func (m Message) Fields() []Field {
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Names returns the field names in order.
func (m Message) Names() []string {
	names := make([]string, len(m.fields))
	for i, f := range m.fields {
		names[i] = f.Name
	}
	return names
}

// Equal reports whether two messages have the same kind and the same
// fields in the same order.
func (m Message) Equal(other Message) bool {
	if m.Kind != other.Kind || len(m.fields) != len(other.fields) {
		return false
	}
	for i := range m.fields {
		if m.fields[i] != other.fields[i] {
			return false
		}
	}
	return true
}

// String encodes the message to its wire form.
func (m Message) String() string {
	return Encode(m.Kind, m.fields...)
}
