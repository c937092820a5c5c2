package cli

import (
	"fmt"

	"storymap/internal/engine"
	"storymap/internal/mutate"
	"storymap/internal/render"
	"storymap/internal/store"
	"storymap/internal/surface"

	"github.com/spf13/cobra"
)

func newDropCmd(app *App) *cobra.Command {
	var (
		surf      string
		onto      string
		end       bool
		journeyID string
		featureID string
		releaseID string
		show      bool
	)
	cmd := &cobra.Command{
		Use:   "drop <dragged-id>",
		Short: "Drop a card onto another card or into a container and print the change record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !surface.Name(surf).Valid() {
				return writeErr(cmd, fmt.Errorf("%w: %q", errSurface, surf))
			}
			target, err := dropTarget(onto, end, journeyID, featureID, releaseID)
			if err != nil {
				return writeErr(cmd, err)
			}
			e, err := app.newEngine(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if end {
				target.Container = ownContainer(e, surface.Name(surf), args[0])
			}
			o := e.Drop(mutate.Drop{Surface: surface.Name(surf), DraggedID: args[0], Target: target})
			if err := app.out(cmd).Write(outcomeOut(o)); err != nil {
				return err
			}
			if show {
				return render.Grid(cmd.OutOrStdout(), e.View(), render.Options{})
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&surf, "surface", string(surface.Features), "Drag surface (journeys|features|stories)")
	cmd.Flags().StringVar(&onto, "onto", "", "Drop onto this card id")
	cmd.Flags().BoolVar(&end, "end", false, "Drop into the dragged card's own container (append)")
	cmd.Flags().StringVar(&journeyID, "journey", "", "Drop into this journey's feature container")
	cmd.Flags().StringVar(&featureID, "feature", "", "Drop into this feature's story container")
	cmd.Flags().StringVar(&releaseID, "release", "", "Release of the story container (with --feature)")
	cmd.Flags().BoolVar(&show, "show", false, "Print the grid after the drop")
	return cmd
}

func dropTarget(onto string, end bool, journeyID, featureID, releaseID string) (mutate.Target, error) {
	n := 0
	for _, set := range []bool{onto != "", end, journeyID != "", featureID != ""} {
		if set {
			n++
		}
	}
	if n != 1 {
		return mutate.Target{}, errTargetFlags
	}
	switch {
	case onto != "":
		return mutate.Target{CardID: onto}, nil
	case journeyID != "":
		return mutate.Target{Container: &mutate.Container{JourneyID: journeyID}}, nil
	case featureID != "":
		return mutate.Target{Container: &mutate.Container{FeatureID: featureID, ReleaseID: releaseID}}, nil
	default:
		return mutate.Target{Container: &mutate.Container{}}, nil
	}
}

// ownContainer is the placeholder of the group the dragged card sits in now.
func ownContainer(eng *engine.Engine, s surface.Name, id string) *mutate.Container {
	kind, ok := mutate.KindFor(s)
	if !ok {
		return &mutate.Container{}
	}
	e, ok := eng.Get(kind, id)
	if !ok {
		return &mutate.Container{}
	}
	g := store.GroupOf(e)
	return &mutate.Container{JourneyID: g.JourneyID, FeatureID: g.FeatureID, ReleaseID: g.ReleaseID}
}
