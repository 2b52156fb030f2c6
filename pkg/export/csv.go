package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matzehuels/sketchmap/pkg/feature"
	"github.com/matzehuels/sketchmap/pkg/geo"
)

var csvHeader = []string{"ID", "Type", "Coordinates"}

// CSV encodes features as a table with one row per feature.
func CSV(features []feature.Feature) ([]byte, error) {
	if err := checkNotEmpty(features); err != nil {
		return nil, err
	}
	rows, err := tableRows(features)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.ID, r.Type, r.Coordinates}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

type row struct {
	ID          string
	Type        string
	Coordinates string
}

func tableRows(features []feature.Feature) ([]row, error) {
	rows := make([]row, len(features))
	for i, f := range features {
		coords, err := coordinates(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", f.ID, err)
		}
		rows[i] = row{
			ID:          strconv.Itoa(i + 1),
			Type:        string(f.Type),
			Coordinates: coords,
		}
	}
	return rows, nil
}

func coordinates(g geo.Geometry) (string, error) {
	if g.Type() == geo.TypePoint {
		p := g.Point()
		return formatFloat(p[0]) + ", " + formatFloat(p[1]), nil
	}
	data, err := json.Marshal(g.Coordinates())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
