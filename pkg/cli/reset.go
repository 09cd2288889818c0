package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mchmarny/tradepulse/pkg/data"
	"github.com/urfave/cli/v3"
)

const yesFlag = "yes"

func resetCommand() *cli.Command {
	return &cli.Command{
		Name:            "reset",
		Usage:           "Delete all imported data and start fresh",
		HideHelpCommand: true,
		Action:          cmdReset,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    yesFlag,
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
	}
}

func cmdReset(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	w := cmd.Root().Writer

	if !cmd.Bool(yesFlag) {
		fmt.Fprintf(w, "This will permanently delete all data in %s\n", cfg.DBPath)
		fmt.Fprint(w, "Are you sure? [y/N]: ")

		answer, err := bufio.NewReader(cmd.Root().Reader).ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(w, "Aborted.")
			return nil
		}
	}

	if err := data.Reset(cfg.DB); err != nil {
		return fmt.Errorf("resetting database: %w", err)
	}

	slog.Info("database reset", "path", cfg.DBPath)
	fmt.Fprintln(w, "Reset complete.")
	return nil
}
