package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"storymap/internal/engine"
	"storymap/internal/mutate"
	"storymap/internal/render"

	"github.com/spf13/cobra"
)

// replayOp is one line of a scripted session. DelayMs advances the guards'
// clock before the op; when absent the clock moves past the debounce interval.
type replayOp struct {
	Op      string         `json:"op"`
	DelayMs *int64         `json:"delayMs,omitempty"`
	Drop    *mutate.Drop   `json:"drop,omitempty"`
	Rename  *mutate.Rename `json:"rename,omitempty"`
}

func newReplayCmd(app *App) *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "replay <session.jsonl>",
		Short: "Apply a JSONL script of drops and renames, printing one outcome per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := readOps(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			clk := &virtualClock{t: time.Unix(0, 0).UTC()}
			feed := mutate.NewFeed(len(ops))
			e, err := app.newEngine(cmd, engine.WithClock(clk.now), engine.WithListener(feed))
			if err != nil {
				return writeErr(cmd, err)
			}
			w := app.out(cmd)
			for _, op := range ops {
				step := app.cfg.Debounce + time.Millisecond
				if op.DelayMs != nil {
					step = time.Duration(*op.DelayMs) * time.Millisecond
				}
				clk.t = clk.t.Add(step)

				var o engine.Outcome
				switch {
				case op.Op == "drop" && op.Drop != nil:
					o = e.Drop(*op.Drop)
				case op.Op == "rename" && op.Rename != nil:
					o = e.Rename(*op.Rename)
				default:
					return writeErr(cmd, fmt.Errorf("%w: %q", errUnknownOp, op.Op))
				}
				if err := w.Write(outcomeOut(o)); err != nil {
					return err
				}
			}
			app.logger(cmd).Info("replay finished",
				slog.Int("ops", len(ops)),
				slog.Int("changes", len(feed.C())),
				slog.Int64("dropped", feed.Dropped()))
			if show {
				return render.Grid(cmd.OutOrStdout(), e.View(), render.Options{})
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "Print the grid after the session")
	return cmd
}

func readOps(path string) ([]replayOp, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer f.Close()

	var ops []replayOp
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		var op replayOp
		if err := json.Unmarshal([]byte(raw), &op); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return ops, nil
}
