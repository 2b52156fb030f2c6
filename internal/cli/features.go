package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchmap/pkg/panel"
	"github.com/matzehuels/sketchmap/pkg/session"
)

// featuresCommand creates the interactive feature browser.
func (c *CLI) featuresCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "features <session>",
		Short: "Browse and select the features of a session",
		Long:  `Browse the features of a stored session. Selecting a feature shows it in the session's attributes panel. Without a terminal the features are printed instead.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, store session.Store) error {
				return c.runFeatures(ctx, store, args[0])
			})
		},
	}
}

func (c *CLI) runFeatures(ctx context.Context, store session.Store, id string) error {
	sess, err := session.Load(ctx, store, id)
	if err != nil {
		return err
	}
	e, err := sess.Editor(loggerFromContext(ctx))
	if err != nil {
		return err
	}

	features := e.Layer()
	if !isTerminal() {
		for _, f := range features {
			fmt.Print(panel.FieldsText(panel.Attributes(f)))
			fmt.Println()
		}
		return nil
	}

	final, err := tea.NewProgram(NewFeatureListModel("Features · "+sess.ID, features), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("feature browser: %w", err)
	}
	m, ok := final.(FeatureListModel)
	if !ok || m.Selected == nil {
		return nil
	}

	if _, err := e.Select(m.Selected.ID); err != nil {
		return err
	}
	sess.Capture(e)
	if err := store.Set(ctx, sess); err != nil {
		return err
	}
	printSuccess("Selected %s", StyleHighlight.Render(m.Selected.ID))
	fmt.Print(e.Panel().Text())
	return nil
}
