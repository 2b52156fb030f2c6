package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchmap/pkg/panel"
	"github.com/matzehuels/sketchmap/pkg/session"
)

// sessionsCommand creates the session management command.
func (c *CLI) sessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Manage stored drawing sessions",
	}

	cmd.AddCommand(c.sessionsListCommand())
	cmd.AddCommand(c.sessionsShowCommand())
	cmd.AddCommand(c.sessionsRemoveCommand())
	cmd.AddCommand(c.sessionsCleanupCommand())

	return cmd
}

// sessionsListCommand creates the "sessions list" subcommand.
func (c *CLI) sessionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sessions, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, store session.Store) error {
				list, err := store.List(ctx)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					printInfo("No sessions")
					return nil
				}
				fmt.Println(sessionTable(list, time.Now()))
				return nil
			})
		},
	}
}

// sessionTable renders sessions as a bordered table.
func sessionTable(list []*session.Session, now time.Time) string {
	rows := make([][]string, len(list))
	for i, s := range list {
		rows[i] = []string{s.ID, strconv.Itoa(len(s.State.Features)), s.State.Engine, formatAge(now, s.UpdatedAt)}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Session", "Features", "Engine", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 1:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})
	return t.Render()
}

// sessionsShowCommand creates the "sessions show" subcommand.
func (c *CLI) sessionsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session>",
		Short: "Print the view, tool state and features of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, store session.Store) error {
				sess, err := session.Load(ctx, store, args[0])
				if err != nil {
					return err
				}
				e, err := sess.Editor(loggerFromContext(ctx))
				if err != nil {
					return err
				}

				v := e.View()
				printKeyValue("Session", sess.ID)
				printKeyValue("Basemap", v.Basemap)
				printKeyValue("Center", fmt.Sprintf("%g, %g", v.Center[0], v.Center[1]))
				printKeyValue("Zoom", strconv.Itoa(v.Zoom))
				printKeyValue("Color", e.Color().Hex())
				if tool := e.Tool().Active(); tool != "" {
					printKeyValue("Tool", tool)
				}
				printKeyValue("Updated", sess.UpdatedAt.Format(time.RFC3339))

				for _, f := range e.Layer() {
					printNewline()
					fmt.Println(StyleTitle.Render(f.ID))
					for _, field := range panel.Attributes(f) {
						printKeyValue(field.Label, field.Value)
					}
				}
				return nil
			})
		},
	}
}

// sessionsRemoveCommand creates the "sessions rm" subcommand.
func (c *CLI) sessionsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <session>...",
		Aliases: []string{"remove"},
		Short:   "Delete sessions",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, store session.Store) error {
				for _, id := range args {
					if _, err := session.Load(ctx, store, id); err != nil {
						return err
					}
					if err := store.Delete(ctx, id); err != nil {
						return err
					}
					printSuccess("Removed %s", id)
				}
				return nil
			})
		},
	}
}

// sessionsCleanupCommand creates the "sessions cleanup" subcommand.
func (c *CLI) sessionsCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, store session.Store) error {
				if err := store.Cleanup(ctx); err != nil {
					return err
				}
				printSuccess("Expired sessions removed")
				return nil
			})
		},
	}
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(context.Context, session.Store) error) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}

// formatAge renders the time since t relative to now.
func formatAge(now, t time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
