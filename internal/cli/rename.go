package cli

import (
	"strings"

	"storymap/internal/model"
	"storymap/internal/mutate"

	"github.com/spf13/cobra"
)

func newRenameCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <journey|feature|story|release|persona> <id> <text...>",
		Short: "Rename a card and print the change record",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.newEngine(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			o := e.Rename(mutate.Rename{
				Kind:    model.Kind(strings.ToLower(args[0])),
				ID:      args[1],
				NewText: strings.Join(args[2:], " "),
			})
			return app.out(cmd).Write(outcomeOut(o))
		},
	}
	return cmd
}
