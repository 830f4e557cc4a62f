package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/internal/storage"
	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
)

// JournalCommand returns the journal subcommand group.
func JournalCommand() *cli.Command {
	return &cli.Command{
		Name:  "journal",
		Usage: "Inspect the outbound message journal",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the most recent outbound messages",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Journal directory (default: storage.journal_dir from --config)",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of entries, 0 for all",
						Value:   20,
					},
					&cli.BoolFlag{
						Name:  "failed",
						Usage: "Only show failed sends",
					},
				},
				Action: journalList,
			},
		},
	}
}

type journalRow struct {
	ID     string `json:"id" yaml:"id" table:"wide"`
	At     string `json:"at" yaml:"at"`
	Number string `json:"number" yaml:"number"`
	Kind   string `json:"kind" yaml:"kind"`
	Text   string `json:"text" yaml:"text" table:"wide"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

func journalList(c *cli.Context) error {
	dir := c.String("dir")
	if dir == "" {
		cfg, err := loadDaemonConfig(c)
		if err != nil {
			return err
		}
		dir = cfg.Storage.JournalDir
	}
	if dir == "" {
		return fmt.Errorf("journal disabled: storage.journal_dir is empty")
	}

	entries, err := readJournal(c.Context, dir, c.Int("limit"), c.Bool("failed"))
	if err != nil {
		return err
	}

	rows := make([]journalRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, journalRow{
			ID:     e.ID,
			At:     e.At.Local().Format("2006-01-02 15:04:05"),
			Number: logger.MaskNumber(e.Number),
			Kind:   e.Kind,
			Text:   e.Text,
			Error:  e.Error,
		})
	}
	return printResult(c, rows)
}

// readJournal opens the journal read-only. It fails while the daemon holds
// the directory.
func readJournal(ctx context.Context, dir string, limit int, failedOnly bool) ([]domain.SentMessage, error) {
	cfg := storage.DefaultBadgerConfig(dir)
	cfg.ReadOnly = true

	kv, err := storage.NewBadgerEngine(cfg, logger.Discard())
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", dir, err)
	}
	defer kv.Close()

	j, err := storage.NewJournal(ctx, kv, 0)
	if err != nil {
		return nil, err
	}

	if !failedOnly {
		return j.List(ctx, limit)
	}
	all, err := j.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	var failed []domain.SentMessage
	for _, e := range all {
		if !e.Delivered() {
			failed = append(failed, e)
		}
	}
	if limit > 0 && len(failed) > limit {
		failed = failed[len(failed)-limit:]
	}
	return failed, nil
}
