package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tracklink-go/internal/cli/output"
	"github.com/yndnr/tracklink-go/pkg/protocol"
)

// EncodeCommand renders a message to wire text.
func EncodeCommand() *cli.Command {
	return &cli.Command{
		Name:  "encode",
		Usage: "Render a message to wire text",
		Description: "Fields are NAME=VALUE pairs kept in the given order, e.g.\n" +
			"   tracklink-cli encode VOLT ID=991462421015 Voltage=40 Location=48.85,2.35",
		ArgsUsage: "KIND [NAME=VALUE...]",
		Action:    encodeAction,
	}
}

func encodeAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("message kind required")
	}
	kind := c.Args().First()

	fields, err := parseFields(c.Args().Tail())
	if err != nil {
		return err
	}
	if err := protocol.Validate(fields...); err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, protocol.Encode(kind, fields...))
	return nil
}

// parseFields parses NAME=VALUE arguments. Pair values may be given with
// or without their parentheses.
func parseFields(args []string) ([]protocol.Field, error) {
	fields := make([]protocol.Field, 0, len(args))
	seen := make(map[string]bool, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("field %q: want NAME=VALUE", arg)
		}
		if seen[name] {
			return nil, fmt.Errorf("field %s given twice", name)
		}
		seen[name] = true

		if protocol.IsPairField(name) {
			value = strings.TrimSuffix(strings.TrimPrefix(value, "("), ")")
		}
		fields = append(fields, protocol.F(name, value))
	}
	return fields, nil
}

// DecodeCommand parses wire text.
func DecodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Parse wire text into its kind and fields",
		ArgsUsage: "TEXT",
		Action:    decodeAction,
	}
}

type decodedField struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

type decodedMessage struct {
	Kind   string         `json:"kind" yaml:"kind"`
	Fields []decodedField `json:"fields" yaml:"fields"`
}

func decodeAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("message text required")
	}
	msg := protocol.Decode(strings.Join(c.Args().Slice(), " "))

	format, err := outputFormat(c)
	if err != nil {
		return err
	}
	if format == output.FormatTable {
		table := &output.Table{Headers: []string{"FIELD", "VALUE"}}
		table.AddRow("kind", msg.Kind)
		for _, f := range msg.Fields() {
			table.AddRow(f.Name, f.Value)
		}
		return printResult(c, table)
	}

	out := decodedMessage{Kind: msg.Kind, Fields: []decodedField{}}
	for _, f := range msg.Fields() {
		out.Fields = append(out.Fields, decodedField{Name: f.Name, Value: f.Value})
	}
	return printResult(c, out)
}
