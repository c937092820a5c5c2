package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"storymap/internal/config"
	"storymap/internal/engine"
	"storymap/internal/format"
	"storymap/internal/store"

	"github.com/spf13/cobra"
)

type App struct {
	Records    string
	ConfigPath string
	Format     string
	Pretty     bool

	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "storymap",
		Short:        "Story map ordering engine: apply drops and renames to a snapshot of host records",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Draw the grid
  storymap --records map.json show

  # Drop feature f3 onto feature f2
  storymap --records map.json drop f3 --surface features --onto f2

  # Move a story into another feature x release cell
  storymap --records map.json drop s9 --surface stories --feature f2 --release r1

  # Replay a scripted drag session
  storymap --records map.json replay session.jsonl
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("format") || os.Getenv("STORYMAP_FORMAT") != "" {
			cfg.Format = app.Format
		}
		if cmd.Flags().Changed("pretty") {
			cfg.Pretty = app.Pretty
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		app.cfg = cfg
		return app.out(cmd).Validate()
	}

	cmd.PersistentFlags().StringVar(&app.Records, "records", envOr("STORYMAP_RECORDS", ""), "Path to a JSON snapshot of host records")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("STORYMAP_CONFIG", "storymap.yaml"), "Path to YAML config (missing file = defaults)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("STORYMAP_FORMAT", config.FormatJSON), "Output format (json|edn)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print output")

	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newDropCmd(app))
	cmd.AddCommand(newRenameCmd(app))
	cmd.AddCommand(newReplayCmd(app))

	return cmd
}

func (app *App) logger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: app.cfg.LogLevel}))
}

// newEngine builds an engine over the records snapshot.
func (app *App) newEngine(cmd *cobra.Command, opts ...engine.Option) (*engine.Engine, error) {
	b, err := readBatch(app.Records)
	if err != nil {
		return nil, err
	}
	base := []engine.Option{
		engine.WithLogger(app.logger(cmd)),
		engine.WithDebounce(app.cfg.Debounce),
	}
	e := engine.New(append(base, opts...)...)
	e.Load(b)
	return e, nil
}

func readBatch(path string) (store.Batch, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return store.Batch{}, errors.New("missing --records (or STORYMAP_RECORDS)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Batch{}, fmt.Errorf("read records: %w", err)
	}
	var b store.Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return store.Batch{}, fmt.Errorf("parse records %s: %w", path, err)
	}
	return b, nil
}

func (app *App) out(cmd *cobra.Command) format.Writer {
	return format.Writer{W: cmd.OutOrStdout(), Format: app.cfg.Format, Pretty: app.cfg.Pretty}
}

// outcomeOut is the printed shape of an engine outcome.
func outcomeOut(o engine.Outcome) map[string]any {
	out := map[string]any{"status": o.Status}
	if o.Change != nil {
		out["change"] = o.Change
	}
	if o.Reason != nil {
		out["reason"] = o.Reason.Error()
	}
	return out
}

// virtualClock lets scripted sessions control the time seen by the drop guards.
type virtualClock struct{ t time.Time }

func (c *virtualClock) now() time.Time { return c.t }

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
