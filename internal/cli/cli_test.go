package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/sketchmap/pkg/export"
	"github.com/matzehuels/sketchmap/pkg/feature"
	"github.com/matzehuels/sketchmap/pkg/geo"
	"github.com/matzehuels/sketchmap/pkg/session"
	"github.com/matzehuels/sketchmap/pkg/style"
)

func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{"serve", "play", "export", "sessions", "features", "config", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"config", "lang", "store"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	isolateHome(t)
	t.Setenv("SKETCHMAP_UI_LANG", "ar")

	c := New(io.Discard, LogInfo)
	c.backend = "memory"
	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if c.Config.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %q, want memory", c.Config.Store.Backend)
	}
	if c.Config.UI.Lang != "ar" {
		t.Errorf("UI.Lang = %q, want env value ar", c.Config.UI.Lang)
	}

	c.lang = "en"
	if err := c.loadConfig(); err != nil {
		t.Fatal(err)
	}
	if c.Config.UI.Lang != "en" {
		t.Errorf("--lang should override env, got %q", c.Config.UI.Lang)
	}

	c.backend = "sqlite"
	if err := c.loadConfig(); err == nil {
		t.Error("loadConfig() should reject an unknown --store")
	}
}

func TestParseFormats(t *testing.T) {
	got, err := parseFormats("")
	if err != nil || len(got) != len(export.Formats) {
		t.Errorf("parseFormats(\"\") = %v, %v; want all formats", got, err)
	}
	got, err = parseFormats("csv, geojson")
	if err != nil || len(got) != 2 || got[0] != export.FormatCSV || got[1] != export.FormatGeoJSON {
		t.Errorf("parseFormats(csv, geojson) = %v, %v", got, err)
	}
	if _, err := parseFormats("csv,kml"); err == nil {
		t.Error("parseFormats(kml) should fail")
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
		{30 * 24 * time.Hour, "Feb 8, 2026"},
	}
	for _, tt := range tests {
		if got := formatAge(now, now.Add(-tt.ago)); got != tt.want {
			t.Errorf("formatAge(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestSubtypeColor(t *testing.T) {
	tests := []struct {
		subtype style.Subtype
		ok      bool
	}{
		{style.SubtypeCommercial, true},
		{style.SubtypeGreen, true},
		{style.SubtypeNone, false},
		{"lake", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.subtype), func(t *testing.T) {
			c, ok := subtypeColor(tt.subtype)
			if ok != tt.ok {
				t.Fatalf("subtypeColor(%q) ok = %v, want %v", tt.subtype, ok, tt.ok)
			}
			if !ok {
				return
			}
			want := lipgloss.Color(style.Resolve(geo.TypePolygon, tt.subtype, style.DefaultColor).Color.Hex())
			if c != want {
				t.Errorf("subtypeColor(%q) = %v, want %v", tt.subtype, c, want)
			}
		})
	}
}

func TestFeatureListModel(t *testing.T) {
	e := newTestEditor()
	if _, err := runScript(context.Background(), e, mustParse(t, "draw-point\nvertex 1 1\ndraw-polyline\nvertex 1 1\nvertex 2 2\ncomplete\n"), "en"); err != nil {
		t.Fatal(err)
	}

	var m tea.Model = NewFeatureListModel("Features", e.Features())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.(FeatureListModel).Cursor; got != 1 {
		t.Errorf("Cursor = %d, want 1 (clamped)", got)
	}

	view := m.View()
	for _, want := range []string{"polyline-2", "Length (m)", "Area (m²)", "[2/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	sel := m.(FeatureListModel).Selected
	if sel == nil || sel.ID != "polyline-2" {
		t.Errorf("Selected = %v, want polyline-2", sel)
	}
	if cmd == nil {
		t.Error("enter should quit the browser")
	}
}

func TestFeatureListModelEmpty(t *testing.T) {
	var m tea.Model = NewFeatureListModel("Features", []feature.Feature{})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.(FeatureListModel).Selected != nil {
		t.Error("enter on an empty list should not select")
	}
	if !strings.Contains(m.View(), "No features") {
		t.Error("empty view should say so")
	}
}

func TestPlayExportAndSessions(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	storeDir := filepath.Join(dir, "sessions")
	cfgPath := filepath.Join(dir, "sketchmap.toml")
	if err := os.WriteFile(cfgPath, []byte("[store]\nbackend = \"file\"\ndir = \""+filepath.ToSlash(storeDir)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(dir, "draw.txt")
	if err := os.WriteFile(script, []byte("draw-point\nvertex 31.2357 30.0444\nexport-table\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out")
	if err := execute(t, "--config", cfgPath, "play", script, "--out", out); err != nil {
		t.Fatalf("play error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(out, export.NameCSV))
	if err != nil {
		t.Fatalf("play did not write the CSV: %v", err)
	}
	if !strings.HasPrefix(string(data), "ID,Type,Coordinates\n1,point,") {
		t.Errorf("csv = %q", data)
	}

	store, err := session.NewFileStore(storeDir)
	if err != nil {
		t.Fatal(err)
	}
	list, err := store.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("stored sessions = %v, %v; want one", list, err)
	}
	id := list[0].ID

	geoOut := filepath.Join(dir, "geo")
	if err := execute(t, "--config", cfgPath, "export", id, "-f", "geojson", "-o", geoOut); err != nil {
		t.Fatalf("export error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(geoOut, export.NameGeoJSON)); err != nil {
		t.Errorf("export did not write GeoJSON: %v", err)
	}

	if err := execute(t, "--config", cfgPath, "play", script, "--session", id, "--no-save", "--out", out); err != nil {
		t.Fatalf("play --session error: %v", err)
	}
	sess, _ := store.Get(context.Background(), id)
	if n := len(sess.State.Features); n != 1 {
		t.Errorf("--no-save changed the stored session: %d features", n)
	}

	if err := execute(t, "--config", cfgPath, "sessions", "rm", id); err != nil {
		t.Fatalf("sessions rm error: %v", err)
	}
	if err := execute(t, "--config", cfgPath, "sessions", "show", id); err == nil {
		t.Error("sessions show after rm should fail")
	}
}

func TestConfigInit(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "sketchmap.toml")

	if err := execute(t, "config", "init", "-o", path); err != nil {
		t.Fatalf("config init error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[store]") {
		t.Errorf("config file missing [store]:\n%s", data)
	}
	if err := execute(t, "config", "init", "-o", path); err == nil {
		t.Error("config init should not overwrite without --force")
	}
	if err := execute(t, "--config", path, "config", "show"); err != nil {
		t.Errorf("config show with the written file: %v", err)
	}
}
