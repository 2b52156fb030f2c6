// Package panel keeps the side panel of a session in sync with its feature
// registry: the features list and the attributes of the shown feature.
//
// A [Panel] subscribes to a [feature.Registry]. Adding a feature appends it
// to the list and shows its attributes, selecting one shows its attributes,
// clearing empties both. The panel renders as HTML for the browser and as
// plain text for the terminal.
package panel

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"

	"github.com/matzehuels/sketchmap/pkg/feature"
)

// Field is one labelled line of the attributes panel.
type Field struct {
	Label string
	Value string
}

// Panel is the features list plus the attributes panel.
type Panel struct {
	items   []string
	shown   *feature.Feature
	resolve func(feature.Feature) feature.Feature
}

// New returns an empty panel.
func New() *Panel {
	return &Panel{}
}

// Resolve sets a function applied to every feature before it is shown,
// such as swapping in an edited geometry and its measurements.
func (p *Panel) Resolve(fn func(feature.Feature) feature.Feature) {
	p.resolve = fn
}

// Attach subscribes p to r and returns a function that detaches it.
func (p *Panel) Attach(r *feature.Registry) (detach func()) {
	return r.Subscribe(p.Handle)
}

// Handle applies a registry event.
func (p *Panel) Handle(ev feature.Event) {
	switch ev.Kind {
	case feature.EventAdded:
		p.items = append(p.items, ev.Feature.ID)
		p.show(ev.Feature)
	case feature.EventSelected:
		p.show(ev.Feature)
	case feature.EventCleared:
		p.items = nil
		p.shown = nil
	case feature.EventRestored:
		p.items = make([]string, len(ev.Features))
		for i, f := range ev.Features {
			p.items[i] = f.ID
		}
		p.shown = nil
	}
}

func (p *Panel) show(f *feature.Feature) {
	if f == nil {
		p.shown = nil
		return
	}
	c := *f
	if p.resolve != nil {
		c = p.resolve(c)
	}
	p.shown = &c
}

// Items returns the IDs in the features list.
func (p *Panel) Items() []string {
	return append([]string(nil), p.items...)
}

// Shown returns the feature whose attributes are displayed.
func (p *Panel) Shown() (feature.Feature, bool) {
	if p.shown == nil {
		return feature.Feature{}, false
	}
	return *p.shown, true
}

// Attributes returns the attribute lines for f. Metrics are printed with
// two decimals, or "0" when they do not apply to the geometry type.
func Attributes(f feature.Feature) []Field {
	return []Field{
		{Label: "ID", Value: f.ID},
		{Label: "Type", Value: string(f.Type)},
		{Label: "Length (m)", Value: FormatMetric(f.Length)},
		{Label: "Area (m²)", Value: FormatMetric(f.Area)},
	}
}

// FormatMetric formats a metric with two decimals; nil prints "0".
func FormatMetric(v *float64) string {
	if v == nil {
		return "0"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

var (
	listTmpl = template.Must(template.New("list").Parse(
		`{{range .}}<div class="feature-item" style="cursor: pointer" data-feature-id="{{.}}">{{.}}</div>
{{end}}`))
	attrTmpl = template.Must(template.New("attrs").Parse(
		`{{range .}}<p><strong>{{.Label}}:</strong> {{.Value}}</p>
{{end}}`))
)

// ListHTML renders the features list.
func (p *Panel) ListHTML() string {
	var buf bytes.Buffer
	_ = listTmpl.Execute(&buf, p.items)
	return buf.String()
}

// AttributesHTML renders the attributes panel, or "" when nothing is shown.
func (p *Panel) AttributesHTML() string {
	if p.shown == nil {
		return ""
	}
	var buf bytes.Buffer
	_ = attrTmpl.Execute(&buf, Attributes(*p.shown))
	return buf.String()
}

// Text renders the attributes panel as "Label: value" lines.
func (p *Panel) Text() string {
	if p.shown == nil {
		return ""
	}
	return FieldsText(Attributes(*p.shown))
}

// FieldsText renders fields as "Label: value" lines.
func FieldsText(fields []Field) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(f.Label)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteByte('\n')
	}
	return b.String()
}
