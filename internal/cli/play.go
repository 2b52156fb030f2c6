package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchmap/pkg/export"
	"github.com/matzehuels/sketchmap/pkg/session"
)

// playOpts holds the command-line flags for the play command.
type playOpts struct {
	session string // existing session to continue
	out     string // directory for exported artifacts
	noSave  bool   // leave the store untouched
}

// playCommand creates the play command, which runs a script of toolbar
// commands and pointer input against a session.
func (c *CLI) playCommand() *cobra.Command {
	var opts playOpts

	cmd := &cobra.Command{
		Use:   "play <script|->",
		Short: "Run a drawing script against a session",
		Long: `Run a drawing script against a new or stored session.

Each line is a toolbar command (draw-point, draw-polyline, draw-polygon
[subtype], edit-graphic, undo, redo, zoom-in, zoom-out, clear-graphics,
export-geojson, export-table, color-picker <#rrggbb>) or pointer input
(vertex <lon> <lat>, move <part> <index> <lon> <lat>, complete, cancel,
select <feature-id>). Exported files are written to --out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlay(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.session, "session", "s", "", "continue a stored session instead of starting a new one")
	cmd.Flags().StringVarP(&opts.out, "out", "o", ".", "directory for exported files")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "do not store the session afterwards")

	return cmd
}

func (c *CLI) runPlay(ctx context.Context, path string, opts playOpts) error {
	logger := loggerFromContext(ctx)

	steps, err := readScript(path)
	if err != nil {
		return err
	}

	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	sess, err := c.loadOrCreate(ctx, store, opts.session)
	if err != nil {
		return err
	}
	e, err := sess.Editor(logger)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	res, runErr := runScript(ctx, e, steps, c.Config.UI.Lang)
	prog.done(fmt.Sprintf("Ran %d of %d steps", res.Steps, len(steps)))

	for _, msg := range res.Alerts {
		printWarning("%s", msg)
	}
	files, err := writeArtifacts(res.Artifacts, opts.out)
	if err != nil {
		return err
	}

	if !opts.noSave {
		sess.Capture(e)
		if err := store.Set(ctx, sess); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	printSuccess("Session %s: %d features", StyleHighlight.Render(sess.ID), e.Registry().Len())
	for _, id := range res.Added {
		printDetail("added %s", id)
	}
	for _, f := range files {
		printFile(f)
	}
	if text := e.Panel().Text(); text != "" {
		printNewline()
		fmt.Print(text)
	}
	if !opts.noSave {
		printNextStep("Browse it", appName+" features "+sess.ID)
	}
	return nil
}

func readScript(path string) ([]step, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		r = f
	}
	return parseScript(r)
}

// loadOrCreate loads session id, or starts a new one when id is empty.
func (c *CLI) loadOrCreate(ctx context.Context, store session.Store, id string) (*session.Session, error) {
	if id != "" {
		return session.Load(ctx, store, id)
	}
	engine, err := c.engine()
	if err != nil {
		return nil, err
	}
	return session.NewWithEngine(c.Config.Store.TTL, engine), nil
}

// writeArtifacts writes each artifact into dir and returns the paths.
func writeArtifacts(arts []export.Artifact, dir string) ([]string, error) {
	if len(arts) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	paths := make([]string, 0, len(arts))
	for _, a := range arts {
		p, err := a.WriteTo(dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
