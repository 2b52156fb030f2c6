package panel

import (
	"reflect"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/matzehuels/sketchmap/pkg/feature"
	"github.com/matzehuels/sketchmap/pkg/geo"
	"github.com/matzehuels/sketchmap/pkg/style"
)

func setup(t *testing.T) (*feature.Registry, *Panel) {
	t.Helper()
	r := feature.NewRegistry(nil)
	p := New()
	p.Attach(r)
	return r, p
}

func TestFollowsRegistry(t *testing.T) {
	r, p := setup(t)

	pt, _ := geo.NewPoint(31.2357, 30.0444)
	line, _ := geo.NewPolyline(orb.LineString{{31, 30}, {31.1, 30}})
	r.Add(geo.TypePoint, pt, style.Descriptor{}, nil)
	r.Add(geo.TypePolyline, line, style.Descriptor{}, nil)

	if got, want := p.Items(), []string{"point-1", "polyline-2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Items() = %v, want %v", got, want)
	}
	if f, ok := p.Shown(); !ok || f.ID != "polyline-2" {
		t.Errorf("Shown() = %v, %v, want the last added", f.ID, ok)
	}

	r.Select("point-1")
	if f, _ := p.Shown(); f.ID != "point-1" {
		t.Errorf("Shown() after select = %v", f.ID)
	}

	r.Clear()
	if len(p.Items()) != 0 || p.ListHTML() != "" || p.AttributesHTML() != "" {
		t.Errorf("panel not emptied on clear: %v %q %q", p.Items(), p.ListHTML(), p.AttributesHTML())
	}
}

func TestAttributesHTML(t *testing.T) {
	r, p := setup(t)
	pt, _ := geo.NewPoint(1, 2)
	r.Add(geo.TypePoint, pt, style.Descriptor{}, nil)

	want := "<p><strong>ID:</strong> point-1</p>\n" +
		"<p><strong>Type:</strong> point</p>\n" +
		"<p><strong>Length (m):</strong> 0</p>\n" +
		"<p><strong>Area (m²):</strong> 0</p>\n"
	if got := p.AttributesHTML(); got != want {
		t.Errorf("AttributesHTML() =\n%s\nwant\n%s", got, want)
	}
	if !strings.Contains(p.ListHTML(), `class="feature-item"`) || !strings.Contains(p.ListHTML(), `data-feature-id="point-1"`) {
		t.Errorf("ListHTML() = %q", p.ListHTML())
	}
}

func TestFormatMetric(t *testing.T) {
	v := 1234.5678
	z := 0.0
	tests := []struct {
		in   *float64
		want string
	}{
		{nil, "0"},
		{&v, "1234.57"},
		{&z, "0.00"},
	}
	for _, tt := range tests {
		if got := FormatMetric(tt.in); got != tt.want {
			t.Errorf("FormatMetric() = %q, want %q", got, tt.want)
		}
	}
}

func TestPolygonText(t *testing.T) {
	r, p := setup(t)
	poly, _ := geo.NewPolygon(orb.Ring{{31, 30}, {31.01, 30}, {31.01, 30.01}, {31, 30.01}})
	r.Add(geo.TypePolygon, poly, style.Descriptor{}, nil)

	text := p.Text()
	if !strings.HasPrefix(text, "ID: polygon-1\nType: polygon\n") {
		t.Errorf("Text() = %q", text)
	}
	for _, line := range strings.Split(strings.TrimSpace(text), "\n")[2:] {
		_, val, _ := strings.Cut(line, ": ")
		if i := strings.IndexByte(val, '.'); i < 0 || len(val)-i-1 != 2 {
			t.Errorf("%q is not printed with two decimals", line)
		}
	}
}

func TestRestore(t *testing.T) {
	src := feature.NewRegistry(nil)
	pt, _ := geo.NewPoint(1, 2)
	src.Add(geo.TypePoint, pt, style.Descriptor{}, nil)

	dst, p := setup(t)
	if err := dst.Restore(src.List()); err != nil {
		t.Fatal(err)
	}
	if got := p.Items(); len(got) != 1 || got[0] != "point-1" {
		t.Errorf("Items() after restore = %v", got)
	}
	if _, ok := p.Shown(); ok {
		t.Error("restore should not show attributes")
	}
}
