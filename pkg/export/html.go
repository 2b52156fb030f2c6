package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/matzehuels/sketchmap/pkg/feature"
)

var tableTmpl = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Drawn features</title>
<style>
table { border-collapse: collapse; font-family: sans-serif; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #f0f0f0; }
</style>
</head>
<body>
<table>
<thead>
<tr><th>ID</th><th>Type</th><th>Coordinates</th></tr>
</thead>
<tbody>
{{- range .}}
<tr><td>{{.ID}}</td><td>{{.Type}}</td><td>{{.Coordinates}}</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

// HTMLTable renders features as a standalone HTML document with the same
// columns as [CSV].
func HTMLTable(features []feature.Feature) ([]byte, error) {
	if err := checkNotEmpty(features); err != nil {
		return nil, err
	}
	rows, err := tableRows(features)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tableTmpl.Execute(&buf, rows); err != nil {
		return nil, fmt.Errorf("render table: %w", err)
	}
	return buf.Bytes(), nil
}
