package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/export"
	"github.com/matzehuels/sketchmap/pkg/session"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var formatsStr, out string

	cmd := &cobra.Command{
		Use:   "export <session>",
		Short: "Write a stored session as GeoJSON, CSV or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			return c.runExport(cmd.Context(), args[0], formats, out)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): geojson, csv, html (comma-separated, default all)")
	cmd.Flags().StringVarP(&out, "output", "o", ".", "output directory")

	return cmd
}

// parseFormats parses the --format flag. Empty selects every format.
func parseFormats(s string) ([]export.Format, error) {
	if s == "" {
		return export.Formats, nil
	}
	var formats []export.Format
	for _, name := range strings.Split(s, ",") {
		f, err := export.ParseFormat(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func (c *CLI) runExport(ctx context.Context, id string, formats []export.Format, out string) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	sess, err := session.Load(ctx, store, id)
	if err != nil {
		return err
	}
	e, err := sess.Editor(loggerFromContext(ctx))
	if err != nil {
		return err
	}

	arts := make([]export.Artifact, 0, len(formats))
	for _, f := range formats {
		a, err := e.Export(f)
		if err != nil {
			if errors.Is(err, errors.ErrCodeEmptyFeatureSet) {
				printWarning("%s", errors.UserMessageIn(err, c.Config.UI.Lang))
				return nil
			}
			return err
		}
		arts = append(arts, a)
	}

	files, err := writeArtifacts(arts, out)
	if err != nil {
		return err
	}
	printSuccess("Exported %d features", e.Registry().Len())
	for _, f := range files {
		printFile(f)
	}
	return nil
}
