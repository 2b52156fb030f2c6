package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sketchmap/pkg/editor"
	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/export"
)

func mustParse(t *testing.T, script string) []step {
	t.Helper()
	steps, err := parseScript(strings.NewReader(script))
	if err != nil {
		t.Fatalf("parseScript() error: %v", err)
	}
	return steps
}

func newTestEditor() *editor.Editor {
	return editor.New(editor.Options{SessionID: "test", Logger: log.New(io.Discard)})
}

func TestParseScript(t *testing.T) {
	steps := mustParse(t, `
# a residential block
draw-polygon residential
vertex 31.20 30.00

color-picker #00ff00
move 0 1 31.5 30.5
select polygon-1
complete
`)

	want := []struct {
		line int
		verb string
		arg  string
	}{
		{3, "draw-polygon", "residential"},
		{4, "vertex", ""},
		{6, "color-picker", "#00ff00"},
		{7, "move", ""},
		{8, "select", "polygon-1"},
		{9, "complete", ""},
	}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(steps), len(want))
	}
	for i, w := range want {
		if s := steps[i]; s.line != w.line || s.verb != w.verb || s.arg != w.arg {
			t.Errorf("step %d = {%d %s %q}, want {%d %s %q}", i, s.line, s.verb, s.arg, w.line, w.verb, w.arg)
		}
	}
	if p := steps[1].point; p[0] != 31.20 || p[1] != 30.00 {
		t.Errorf("vertex point = %v", p)
	}
	if s := steps[3]; s.part != 0 || s.index != 1 || s.point[0] != 31.5 {
		t.Errorf("move step = %+v", s)
	}
}

func TestParseScriptErrors(t *testing.T) {
	tests := []struct {
		line string
		code errors.Code
	}{
		{"vertex 1", errors.ErrCodeInvalidInput},
		{"vertex a b", errors.ErrCodeInvalidGeometry},
		{"move 0 x 1 2", errors.ErrCodeInvalidInput},
		{"complete now", errors.ErrCodeInvalidInput},
		{"select circle-1", errors.ErrCodeInvalidInput},
		{"fly", errors.ErrCodeInvalidCommand},
		{"color-picker", errors.ErrCodeInvalidInput},
		{"draw-polygon green other", errors.ErrCodeInvalidInput},
		{"zoom-in 2", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := parseScript(strings.NewReader("draw-point\n" + tt.line + "\n"))
			if !errors.Is(err, tt.code) {
				t.Fatalf("parseScript(%q) error = %v, want %s", tt.line, err, tt.code)
			}
			if !strings.HasPrefix(err.Error(), "line 2:") {
				t.Errorf("error %q should name line 2", err)
			}
		})
	}
}

func TestRunScriptPointCSV(t *testing.T) {
	e := newTestEditor()
	res, err := runScript(context.Background(), e, mustParse(t, "draw-point\nvertex 31.2357 30.0444\nexport-table\n"), "en")
	if err != nil {
		t.Fatalf("runScript() error: %v", err)
	}
	if res.Steps != 3 {
		t.Errorf("Steps = %d, want 3", res.Steps)
	}
	if len(res.Added) != 1 || res.Added[0] != "point-1" {
		t.Errorf("Added = %v, want [point-1]", res.Added)
	}
	if len(res.Artifacts) != 2 || res.Artifacts[0].Format != export.FormatCSV || res.Artifacts[1].Format != export.FormatHTML {
		t.Fatalf("Artifacts = %+v, want csv and html", res.Artifacts)
	}
	if got, want := string(res.Artifacts[0].Data), "ID,Type,Coordinates\n1,point,\"31.2357, 30.0444\""; got != want {
		t.Errorf("csv = %q, want %q", got, want)
	}
}

func TestRunScriptAlerts(t *testing.T) {
	e := newTestEditor()
	res, err := runScript(context.Background(), e, mustParse(t, "undo\nexport-geojson\nedit-graphic\n"), "ar")
	if err != nil {
		t.Fatalf("alerts should not stop the script: %v", err)
	}
	want := []string{"مفيش رسم شغال حالياً للتراجع!", "لا يوجد رسومات للتصدير!", "لا يوجد رسومات للتعديل!"}
	if len(res.Alerts) != len(want) {
		t.Fatalf("Alerts = %v, want %v", res.Alerts, want)
	}
	for i := range want {
		if res.Alerts[i] != want[i] {
			t.Errorf("Alerts[%d] = %q, want %q", i, res.Alerts[i], want[i])
		}
	}
	if res.Steps != 3 {
		t.Errorf("Steps = %d, want 3", res.Steps)
	}
}

func TestRunScriptStopsOnError(t *testing.T) {
	e := newTestEditor()
	res, err := runScript(context.Background(), e, mustParse(t, "draw-point\ncolor-picker #zzzzzz\nvertex 1 1\n"), "en")
	if !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Fatalf("runScript() error = %v, want INVALID_STYLE", err)
	}
	if !strings.Contains(err.Error(), "line 2: color-picker") {
		t.Errorf("error %q should name the failing step", err)
	}
	if res.Steps != 1 {
		t.Errorf("Steps = %d, want 1", res.Steps)
	}
}

func TestRunScriptEditAndSelect(t *testing.T) {
	e := newTestEditor()
	script := `
draw-polygon green
vertex 31.20 30.00
vertex 31.21 30.00
vertex 31.21 30.01
complete
edit-graphic
move 0 2 31.22 30.02
complete
select polygon-1
export-geojson
`
	res, err := runScript(context.Background(), e, mustParse(t, script), "en")
	if err != nil {
		t.Fatalf("runScript() error: %v", err)
	}
	if len(res.Added) != 1 || res.Added[0] != "polygon-1" {
		t.Errorf("Added = %v", res.Added)
	}
	if f, ok := e.Panel().Shown(); !ok || f.ID != "polygon-1" || f.Subtype() != "green" {
		t.Errorf("panel shows %+v, %v", f, ok)
	}
	if len(res.Artifacts) != 1 || !strings.Contains(string(res.Artifacts[0].Data), "31.22") {
		t.Errorf("geojson export should carry the edited vertex")
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	e := newTestEditor()
	res, err := runScript(context.Background(), e, mustParse(t, "draw-point\nvertex 1 2\nexport-table\nexport-geojson\n"), "en")
	if err != nil {
		t.Fatal(err)
	}

	paths, err := writeArtifacts(res.Artifacts, dir)
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	want := []string{export.NameCSV, export.NameHTML, export.NameGeoJSON}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i, name := range want {
		if filepath.Base(paths[i]) != name {
			t.Errorf("paths[%d] = %q, want %s", i, paths[i], name)
		}
		if _, err := os.Stat(paths[i]); err != nil {
			t.Errorf("missing %s: %v", paths[i], err)
		}
	}
}
