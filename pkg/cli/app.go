package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mchmarny/tradepulse/pkg/config"
	"github.com/mchmarny/tradepulse/pkg/data"
	"github.com/mchmarny/tradepulse/pkg/logging"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName = "tradepulse"

	debugFlag      = "debug"
	dbFilePathFlag = "db"
	configFlag     = "config"
	formatFlag     = "format"

	dirMode      = 0700
	appConfigKey = "app-config"

	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger(config.DefaultLogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		stop()
		os.Exit(1)
	}
}

type appConfig struct {
	Config *config.Config
	DBPath string
	Format string
	Debug  bool
	DB     *sql.DB
}

func getConfig(cmd *cli.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Rank the best trade partners for an exporter or a buyer",
		Metadata:              map[string]any{},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  debugFlag,
				Usage: "Prints verbose logs (optional, default: false)",
			},
			&cli.StringFlag{
				Name:  dbFilePathFlag,
				Usage: fmt.Sprintf("Path to the Sqlite database file (default: $HOME/.%s/%s)", appName, data.DataFileName),
			},
			&cli.StringFlag{
				Name:  configFlag,
				Usage: fmt.Sprintf("Path to the config file (default: $HOME/.%s/%s)", appName, config.FileName),
			},
			&cli.StringFlag{
				Name:  formatFlag,
				Usage: "Output format [json, yaml, table]",
				Value: formatJSON,
			},
		},
		Commands: []*cli.Command{
			importCommand(),
			matchCommand(),
			batchCommand(),
			riskCommand(),
			geoCommand(),
			estimateCommand(),
			basisCommand(),
			infoCommand(),
			resetCommand(),
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := loadConfig(cmd.String(configFlag))
			if err != nil {
				return ctx, err
			}

			level := cfg.LogLevel
			if cmd.Bool(debugFlag) {
				level = "debug"
			}
			logging.SetDefaultCLILogger(level)

			format, err := parseFormat(cmd.String(formatFlag))
			if err != nil {
				return ctx, err
			}

			dbPath := cmd.String(dbFilePathFlag)
			if dbPath == "" {
				dbPath = cfg.DBPath
			}
			if dbPath == "" {
				dbPath = filepath.Join(getHomeDir(), data.DataFileName)
			}

			if err := data.Init(dbPath); err != nil {
				return ctx, fmt.Errorf("initializing database: %w", err)
			}

			db, err := data.GetDB(dbPath)
			if err != nil {
				return ctx, fmt.Errorf("opening database: %w", err)
			}

			cmd.Root().Metadata[appConfigKey] = &appConfig{
				Config: cfg,
				DBPath: dbPath,
				Format: format,
				Debug:  cmd.Bool(debugFlag),
				DB:     db,
			}
			return ctx, nil
		},
		After: func(_ context.Context, cmd *cli.Command) error {
			if cfg, ok := cmd.Root().Metadata[appConfigKey].(*appConfig); ok && cfg.DB != nil {
				cfg.DB.Close()
			}
			return nil
		},
	}
}

// loadConfig reads the file at path, or the default file in the app home
// dir (created on first run) when path is empty.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg  *config.Config
		errs []error
	)
	if path != "" {
		cfg, errs = config.Load(path)
	} else {
		cfg, errs = config.ReadOrCreate(getHomeDir())
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func parseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	case formatTable:
		return formatTable, nil
	default:
		return "", fmt.Errorf("unsupported format %q, expected one of [%s, %s, %s]", s, formatJSON, formatYAML, formatTable)
	}
}

func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Debug("error getting home dir, using current dir instead", "error", err)
		return "."
	}

	dirPath := filepath.Join(home, "."+appName)
	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dirPath)
		if err := os.Mkdir(dirPath, dirMode); err != nil {
			slog.Debug("error creating dir", "path", dirPath, "home", home, "error", err)
			return home
		}
	}
	return dirPath
}

// output writes v in the selected format. Table output is delegated to
// table, v is encoded as json when table is nil.
func output(cmd *cli.Command, v any, table func(*renderer)) error {
	cfg := getConfig(cmd)
	w := cmd.Root().Writer

	if cfg.Format == formatTable && table != nil {
		table(newRenderer(w))
		return nil
	}

	format := cfg.Format
	if format == formatTable {
		format = formatJSON
	}
	if err := encode(w, format, v); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
