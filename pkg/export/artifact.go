package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/feature"
)

// Format names an export format.
type Format string

// Supported formats.
const (
	FormatGeoJSON Format = "geojson"
	FormatCSV     Format = "csv"
	FormatHTML    Format = "html"
)

// Formats lists the supported formats.
var Formats = []Format{FormatGeoJSON, FormatCSV, FormatHTML}

// Default artifact names.
const (
	NameGeoJSON = "graphics.geojson"
	NameCSV     = "drawn_features.csv"
	NameHTML    = "drawn_features.html"
)

// Content types of the artifacts.
const (
	ContentTypeGeoJSON = "application/geo+json"
	ContentTypeCSV     = "text/csv; charset=utf-8"
	ContentTypeHTML    = "text/html; charset=utf-8"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatGeoJSON, FormatCSV, FormatHTML:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown export format %q (want geojson, csv or html)", s)
}

// Artifact is a serialized export ready to be downloaded or written.
type Artifact struct {
	Format      Format
	Name        string
	ContentType string
	Data        []byte
}

// Build serializes features in format f.
func Build(f Format, features []feature.Feature) (Artifact, error) {
	var (
		a   Artifact
		err error
	)
	switch f {
	case FormatGeoJSON:
		a = Artifact{Format: f, Name: NameGeoJSON, ContentType: ContentTypeGeoJSON}
		a.Data, err = GeoJSON(features)
	case FormatCSV:
		a = Artifact{Format: f, Name: NameCSV, ContentType: ContentTypeCSV}
		a.Data, err = CSV(features)
	case FormatHTML:
		a = Artifact{Format: f, Name: NameHTML, ContentType: ContentTypeHTML}
		a.Data, err = HTMLTable(features)
	default:
		_, err = ParseFormat(string(f))
	}
	if err != nil {
		return Artifact{}, err
	}
	return a, nil
}

// WriteTo writes the artifact into dir under its name and returns the path.
// dir is created if missing.
func (a Artifact) WriteTo(dir string) (string, error) {
	if a.Name == "" || filepath.Base(a.Name) != a.Name {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid artifact name %q", a.Name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, a.Name)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func checkNotEmpty(features []feature.Feature) error {
	if len(features) == 0 {
		return errors.Localized(errors.ErrCodeEmptyFeatureSet, errors.MsgNothingToExport, "no features to export")
	}
	return nil
}
