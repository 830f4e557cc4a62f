package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tracklink-go/pkg/identity"
	"github.com/yndnr/tracklink-go/pkg/protocol"
)

var errIDMismatch = errors.New("device id does not match serial and secret")

// identityFlags select a device either by profile or explicitly.
func identityFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "device",
			Aliases: []string{"d"},
			Usage:   "Device profile from the CLI configuration",
		},
		&cli.StringFlag{
			Name:  "serial",
			Usage: "Device serial (IMEI)",
		},
		&cli.StringFlag{
			Name:  "secret",
			Usage: "Shared pairing secret",
		},
	}
}

// resolveIdentity returns the serial and secret selected by the identity
// flags. Explicit --serial and --secret override the profile.
func resolveIdentity(c *cli.Context) (identity.Identity, error) {
	var id identity.Identity
	if name := c.String("device"); name != "" {
		p, err := GetCLIConfig(c).Device(name)
		if err != nil {
			return id, err
		}
		id = identity.New(p.Serial).WithSecret(p.Secret)
	}
	if s := c.String("serial"); s != "" {
		id = identity.New(s).WithSecret(id.Secret)
	}
	if s := c.String("secret"); s != "" {
		id = id.WithSecret(s)
	}

	if id.Serial == "" {
		return id, fmt.Errorf("serial required (--serial or --device)")
	}
	if !id.HasSecret() {
		return id, fmt.Errorf("secret required (--secret or --device)")
	}
	return id, nil
}

// IDCommand prints the device id for a serial and secret.
func IDCommand() *cli.Command {
	return &cli.Command{
		Name:   "id",
		Usage:  "Compute the device id for a serial and secret",
		Flags:  identityFlags(),
		Action: idAction,
	}
}

type idResult struct {
	Serial string `json:"serial" yaml:"serial"`
	ID     string `json:"id" yaml:"id"`
}

func idAction(c *cli.Context) error {
	id, err := resolveIdentity(c)
	if err != nil {
		return err
	}
	return printResult(c, idResult{Serial: id.Serial, ID: id.ID()})
}

// VerifyCommand checks a claimed device id.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check that a device id matches a serial and secret",
		ArgsUsage: "ID",
		Flags:     identityFlags(),
		Action:    verifyAction,
	}
}

func verifyAction(c *cli.Context) error {
	claimed := c.Args().First()
	if claimed == "" {
		return fmt.Errorf("device id required")
	}
	if !identity.Valid(claimed) {
		return fmt.Errorf("%q is not a device id", claimed)
	}

	id, err := resolveIdentity(c)
	if err != nil {
		return err
	}
	if !identity.Verify(id.Serial, id.Secret, claimed) {
		return errIDMismatch
	}
	fmt.Fprintf(c.App.Writer, "ok: %s matches %s\n", claimed, id.Serial)
	return nil
}

// ReplyCommand builds the controller's answer to a pairing request.
func ReplyCommand() *cli.Command {
	return &cli.Command{
		Name:  "reply",
		Usage: "Build the AUTH reply that pairs a device",
		Description: "The serial is taken from the request text when given, e.g.\n" +
			"   tracklink-cli reply --secret hunter2 'AUTH | IMEI: 356938035643809; Voltage: 80'",
		ArgsUsage: "[REQUEST]",
		Flags:     identityFlags(),
		Action:    replyAction,
	}
}

func replyAction(c *cli.Context) error {
	if text := c.Args().First(); text != "" {
		req := protocol.Decode(text)
		if req.Kind != protocol.KindAuth {
			return fmt.Errorf("not a pairing request: kind %q", req.Kind)
		}
		imei, ok := req.Get(protocol.FieldIMEI)
		if !ok || imei == "" {
			return fmt.Errorf("pairing request carries no IMEI")
		}
		if err := c.Set("serial", imei); err != nil {
			return err
		}
	}

	id, err := resolveIdentity(c)
	if err != nil {
		return err
	}

	reply := protocol.Encode(protocol.KindAuth,
		protocol.F(protocol.FieldID, id.ID()),
		protocol.F(protocol.FieldCode, id.Secret),
	)
	fmt.Fprintln(c.App.Writer, reply)
	return nil
}
