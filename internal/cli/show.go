package cli

import (
	"storymap/internal/render"

	"github.com/spf13/cobra"
)

func newShowCmd(app *App) *cobra.Command {
	var asData bool
	var width int
	var color bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the ordered story map (grid, or --data for the ordered lists)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.newEngine(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if asData {
				return app.out(cmd).Write(map[string]any{"data": e.View()})
			}
			return render.Grid(cmd.OutOrStdout(), e.View(), render.Options{CardWidth: width, Color: color})
		},
	}
	cmd.Flags().BoolVar(&asData, "data", false, "Print ordered entity lists instead of the grid")
	cmd.Flags().IntVar(&width, "width", 22, "Card width in cells")
	cmd.Flags().BoolVar(&color, "color", false, "Colorize the grid")
	return cmd
}
