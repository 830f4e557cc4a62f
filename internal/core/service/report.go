package service

import (
	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/pkg/protocol"
)

// voltageField renders the Voltage field. It carries the charge
// percentage, rounded to two decimals.
func voltageField(r domain.Reading) protocol.Field {
	return protocol.F(protocol.FieldVoltage, protocol.FormatRounded(r.Percent, 2))
}

// statusFields builds "ID; Voltage; Location; Satellites", the body shared
// by LOW BAT, VOLT and INIT reports.
func statusFields(deviceID string, r domain.Reading, f domain.Fix) []protocol.Field {
	fields := make([]protocol.Field, 0, 5)
	fields = append(fields, protocol.F(protocol.FieldID, deviceID), voltageField(r))
	return append(fields, f.Fields()...)
}
