package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/houseval/pkg/config"
	"github.com/mchmarny/houseval/pkg/data"
	"github.com/mchmarny/houseval/pkg/housing"
	"github.com/mchmarny/houseval/pkg/logging"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "houseval"
	appConfigKey = "app-config"
	dirMode      = 0700

	formatJSON = "json"
	formatYAML = "yaml"

	debugFlagName        = "debug"
	configDirFlagName    = "config"
	dbFlagName           = "db"
	formatFlagName       = "format"
	coefficientsFlagName = "coefficients"
	baselineFlagName     = "baseline"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

// Execute creates and runs the CLI application.
func Execute() {
	initLogging("info")

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Dir     string
	Config  *config.Config
	Format  string
	Encoder *housing.Encoder

	store *data.Store
}

// Store opens the prediction history on first use.
func (a *appConfig) Store() (*data.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	if a.Driver() == data.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(a.Config.DB), dirMode); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}

	s, err := data.Open(a.Config.DB)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.store = s
	return s, nil
}

// Driver returns the history database driver.
func (a *appConfig) Driver() string {
	return data.Driver(a.Config.DB)
}

func (a *appConfig) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Debug("error closing database", "error", err)
		}
		a.store = nil
	}
}

func getConfig(cmd *urfave.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.Command {
	return &urfave.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Estimate California median house values with a linear price model",
		Metadata:              map[string]any{},
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:    debugFlagName,
				Usage:   "Prints verbose logs (optional, default: false)",
				Sources: urfave.EnvVars("HOUSEVAL_DEBUG"),
			},
			&urfave.StringFlag{
				Name:  configDirFlagName,
				Usage: "Path to the config directory (default: $HOME/.houseval)",
			},
			&urfave.StringFlag{
				Name:  dbFlagName,
				Usage: "Sqlite file path or postgres:// URL of the prediction history",
			},
			&urfave.StringFlag{
				Name:  formatFlagName,
				Usage: "Output format [json, yaml]",
				Value: formatJSON,
			},
			&urfave.StringFlag{
				Name:  coefficientsFlagName,
				Usage: "Path or URL of a coefficient document (default: embedded model)",
			},
			&urfave.StringFlag{
				Name: baselineFlagName,
				Usage: fmt.Sprintf("Ocean proximity without an indicator [%s]; its fitted weight is dropped, "+
					"so a baseline other than %q changes estimates for that value",
					strings.Join(housing.ProximityValues, ", "), housing.DefaultBaseline),
			},
		},
		Commands: []*urfave.Command{
			predictCommand(),
			batchCommand(),
			coefficientCommand(),
			historyCommand(),
			serverCommand(),
			resetCommand(),
		},
		Before: setup,
		After: func(_ context.Context, cmd *urfave.Command) error {
			if cfg, ok := cmd.Metadata[appConfigKey].(*appConfig); ok {
				cfg.close()
			}
			return nil
		},
	}
}

// setup resolves the config (file, then environment, then flags), loads
// the coefficient table and stores the result in the root metadata.
func setup(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
	if cmd.Bool(debugFlagName) {
		initLogging("debug")
	}

	dir := cmd.String(configDirFlagName)
	if dir == "" {
		d, _, err := config.GetOrCreateHomeDir(appName)
		if err != nil {
			return ctx, fmt.Errorf("resolving config dir: %w", err)
		}
		dir = d
	}

	cfg, err := config.ReadOrCreate(dir)
	if err != nil {
		return ctx, fmt.Errorf("reading config: %w", err)
	}
	if err := config.ApplyEnv(dir, cfg); err != nil {
		return ctx, fmt.Errorf("reading environment: %w", err)
	}

	if cmd.IsSet(coefficientsFlagName) {
		cfg.Coefficients = cmd.String(coefficientsFlagName)
	}
	if cmd.IsSet(baselineFlagName) {
		cfg.Baseline = cmd.String(baselineFlagName)
	}
	if cmd.IsSet(dbFlagName) {
		cfg.DB = cmd.String(dbFlagName)
	}
	if cmd.Bool(debugFlagName) {
		cfg.LogLevel = "debug"
	}
	if cfg.DB == "" {
		cfg.DB = filepath.Join(dir, data.DataFileName)
	}

	if err := cfg.Validate(); err != nil {
		return ctx, err
	}
	initLogging(cfg.LogLevel)

	format, err := parseFormat(cmd.String(formatFlagName))
	if err != nil {
		return ctx, err
	}

	enc, err := config.NewEncoder(ctx, cfg)
	if err != nil {
		return ctx, fmt.Errorf("loading model: %w", err)
	}

	cmd.Metadata[appConfigKey] = &appConfig{
		Dir:     dir,
		Config:  cfg,
		Format:  format,
		Encoder: enc,
	}
	return ctx, nil
}

func parseFormat(f string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "", formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %q", f)
	}
}

func initLogging(level string) {
	logging.SetDefaultCLILogger(level)
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

func (a *appConfig) print(cmd *urfave.Command, v any) error {
	if err := encode(cmd.Root().Writer, a.Format, v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
