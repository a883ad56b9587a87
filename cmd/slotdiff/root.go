package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hazyhaar/slotdiff/internal/config"
	"github.com/hazyhaar/slotdiff/schedule"
)

// app carries what every sub-command needs once flags are parsed.
type app struct {
	configPath string
	envFile    string
	logLevel   string
	locale     string

	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "slotdiff",
		Short: "Snapshot a schedule page twice and highlight what changed",
		Long: `slotdiff reads a production schedule (gantt chart, planning table) off a
web page, stores it as snapshot A or B, compares the two slot by slot and
paints the differences back onto the page.

Examples:
  slotdiff serve                        # browser + panel API on server.addr
  slotdiff save a && slotdiff save b    # capture both snapshots
  slotdiff compare                      # diff and highlight
  slotdiff extract --file plan.html     # offline extraction
  slotdiff diff a.json b.json --json    # offline comparison`,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.init(cmd) },
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before SLOTDIFF_* overrides")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	pf.StringVar(&a.locale, "locale", "", "en or zh (overrides config)")

	root.AddCommand(
		a.serveCmd(),
		a.agentCmd(),
		a.saveCmd(),
		a.compareCmd(),
		a.clearHighlightCmd(),
		a.clearAllCmd(),
		a.statusCmd(),
		a.extractCmd(),
		a.diffCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if err := godotenv.Load(a.envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("env-file") {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.locale != "" {
		cfg.Locale = a.locale
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(a.stderr, cfg.LogLevel)
	slog.SetDefault(a.logger)
	return nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func (a *app) labels() schedule.Labels { return schedule.LabelsFor(a.cfg.Locale) }

// colorOutput reports whether stdout is a terminal that wants ANSI colours.
func (a *app) colorOutput() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := a.stdout.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (a *app) printJSON(v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "%s\n", out)
	return err
}
