package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/matzehuels/sketchmap/pkg/editor"
	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/export"
)

// Pointer verbs accepted in scripts next to the toolbar commands.
const (
	verbVertex   = "vertex"   // vertex <lon> <lat>
	verbMove     = "move"     // move <part> <index> <lon> <lat>
	verbComplete = "complete" // double click
	verbCancel   = "cancel"   // escape
	verbSelect   = "select"   // select <feature-id>
)

// step is one parsed script line.
type step struct {
	line  int
	verb  string
	arg   string
	point orb.Point
	part  int
	index int
}

// parseScript reads one action per line. Blank lines and lines starting
// with "#" are skipped; "#" elsewhere is literal so colors work:
//
//	draw-polygon residential
//	vertex 31.20 30.00
//	vertex 31.21 30.00
//	vertex 31.21 30.01
//	complete
//	color-picker #00ff00
//	export-table
func parseScript(r io.Reader) ([]step, error) {
	var steps []step
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s, err := parseStep(strings.Fields(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		s.line = n
		steps = append(steps, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return steps, nil
}

func parseStep(fields []string) (step, error) {
	s := step{verb: fields[0]}
	args := fields[1:]

	switch s.verb {
	case verbVertex:
		if len(args) != 2 {
			return s, errors.New(errors.ErrCodeInvalidInput, "vertex needs <lon> <lat>")
		}
		p, err := parsePoint(args[0], args[1])
		if err != nil {
			return s, err
		}
		s.point = p
		return s, nil
	case verbMove:
		if len(args) != 4 {
			return s, errors.New(errors.ErrCodeInvalidInput, "move needs <part> <index> <lon> <lat>")
		}
		part, err1 := strconv.Atoi(args[0])
		index, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			return s, errors.New(errors.ErrCodeInvalidInput, "move: part and index must be integers")
		}
		p, err := parsePoint(args[2], args[3])
		if err != nil {
			return s, err
		}
		s.part, s.index, s.point = part, index, p
		return s, nil
	case verbComplete, verbCancel:
		return s, noArgs(s.verb, args)
	case verbSelect:
		if len(args) != 1 {
			return s, errors.New(errors.ErrCodeInvalidInput, "select needs <feature-id>")
		}
		s.arg = args[0]
		return s, errors.ValidateFeatureID(s.arg)
	}

	cmd, err := editor.ParseCommand(s.verb)
	if err != nil {
		return s, err
	}
	switch cmd {
	case editor.CmdColorPicker:
		if len(args) != 1 {
			return s, errors.New(errors.ErrCodeInvalidInput, "color-picker needs <#rrggbb>")
		}
		s.arg = args[0]
	case editor.CmdDrawPolygon:
		if len(args) > 1 {
			return s, errors.New(errors.ErrCodeInvalidInput, "draw-polygon takes at most a subtype")
		}
		if len(args) == 1 {
			s.arg = args[0]
		}
	default:
		return s, noArgs(s.verb, args)
	}
	return s, nil
}

func noArgs(verb string, args []string) error {
	if len(args) != 0 {
		return errors.New(errors.ErrCodeInvalidInput, "%s takes no arguments", verb)
	}
	return nil
}

func parsePoint(lon, lat string) (orb.Point, error) {
	x, err1 := strconv.ParseFloat(lon, 64)
	y, err2 := strconv.ParseFloat(lat, 64)
	if err1 != nil || err2 != nil {
		return orb.Point{}, errors.New(errors.ErrCodeInvalidGeometry, "invalid coordinate %q %q", lon, lat)
	}
	return orb.Point{x, y}, nil
}

// =============================================================================
// Execution
// =============================================================================

// playResult collects what a script run produced.
type playResult struct {
	Steps     int
	Added     []string
	Alerts    []string
	Artifacts []export.Artifact
}

// isAlert reports whether err is shown to the user as an alert while the
// session carries on, the way the toolbar handles an empty export.
func isAlert(err error) bool {
	return errors.Is(err, errors.ErrCodeEmptyFeatureSet) || errors.Is(err, errors.ErrCodeNoActiveTool)
}

// runScript applies steps to e. Alerts are collected in lang; any other
// error stops the run.
func runScript(ctx context.Context, e *editor.Editor, steps []step, lang string) (playResult, error) {
	var res playResult
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		err := applyStep(ctx, e, s, &res)
		if err != nil {
			if !isAlert(err) {
				return res, fmt.Errorf("line %d: %s: %w", s.line, s.verb, err)
			}
			res.Alerts = append(res.Alerts, errors.UserMessageIn(err, lang))
		}
		res.Steps++
	}
	return res, nil
}

func applyStep(ctx context.Context, e *editor.Editor, s step, res *playResult) error {
	switch s.verb {
	case verbVertex:
		f, err := e.AddVertex(ctx, s.point)
		if f != nil {
			res.Added = append(res.Added, f.ID)
		}
		return err
	case verbMove:
		return e.MoveVertex(s.part, s.index, s.point)
	case verbComplete:
		f, err := e.Complete(ctx)
		if f != nil {
			res.Added = append(res.Added, f.ID)
		}
		return err
	case verbCancel:
		e.Cancel()
		return nil
	case verbSelect:
		_, err := e.Select(s.arg)
		return err
	}

	cmd, _ := editor.ParseCommand(s.verb)
	args := editor.Args{}
	switch cmd {
	case editor.CmdColorPicker:
		args.Color = s.arg
	case editor.CmdDrawPolygon:
		args.Subtype = s.arg
	}
	out, err := e.Run(ctx, cmd, args)
	if err != nil {
		return err
	}
	res.Artifacts = append(res.Artifacts, out.Artifacts...)
	return nil
}
