package command

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/yndnr/tracklink-go/pkg/protocol"
)

func TestEncodeCommand(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "fields in order",
			args: []string{"VOLT", "ID=" + testID, "Voltage=40", "Location=48.85,2.35"},
			want: "VOLT | ID: " + testID + "; Voltage: 40; Location: (48.85,2.35)",
		},
		{
			name: "pair given wrapped",
			args: []string{"INIT", "Satellites=(5,9)"},
			want: "INIT | Satellites: (5,9)",
		},
		{
			name: "kind only",
			args: []string{"DEVICE INITIALISATION"},
			want: "DEVICE INITIALISATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := env.mustRun(t, append([]string{"encode"}, tt.args...)...)
			if strings.TrimSpace(out) != tt.want {
				t.Errorf("encode = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestEncodeCommand_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "", "encode", "VOLT", "ID=1;2")
	if !errors.Is(err, protocol.ErrForbiddenChar) {
		t.Errorf("forbidden char: error = %v", err)
	}
	if _, err := env.run(t, "", "encode", "VOLT", "ID"); err == nil {
		t.Error("field without '=' should fail")
	}
	if _, err := env.run(t, "", "encode", "VOLT", "ID=1", "ID=2"); err == nil {
		t.Error("repeated field should fail")
	}
	if _, err := env.run(t, "", "encode"); err == nil {
		t.Error("missing kind should fail")
	}
}

func TestDecodeCommand(t *testing.T) {
	env := newTestEnv(t)
	text := "LOW BAT | ID: " + testID + "; Voltage: 12; Location: (1.5,-2)"

	out := env.mustRun(t, "-o", "json", "decode", text)

	var got decodedMessage
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output is not JSON: %v\n%s", err, out)
	}
	want := decodedMessage{
		Kind: "LOW BAT",
		Fields: []decodedField{
			{Name: "ID", Value: testID},
			{Name: "Voltage", Value: "12"},
			{Name: "Location", Value: "1.5,-2"},
		},
	}
	if got.Kind != want.Kind || len(got.Fields) != len(want.Fields) {
		t.Fatalf("decode = %+v, want %+v", got, want)
	}
	for i := range want.Fields {
		if got.Fields[i] != want.Fields[i] {
			t.Errorf("field %d = %+v, want %+v", i, got.Fields[i], want.Fields[i])
		}
	}
}

func TestDecodeCommand_Table(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "decode", "AUTH", "|", "CODE:", "hunter2;", "ID:", testID)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header, kind and two fields:\n%s", len(lines), out)
	}
	if f := strings.Fields(lines[2]); len(f) != 2 || f[0] != "CODE" || f[1] != testSecret {
		t.Errorf("line %q, want the CODE field first", lines[2])
	}
}
