// Package mapview holds the configured map view of a session: basemap,
// center and zoom with its constraints.
package mapview

import (
	"github.com/paulmach/orb"

	"github.com/matzehuels/sketchmap/pkg/errors"
)

// Defaults for a new view.
const (
	DefaultBasemap = "hybrid"
	DefaultZoom    = 10
	DefaultMinZoom = 4
	DefaultMaxZoom = 20
)

// DefaultCenter is the initial view center, lon/lat.
var DefaultCenter = orb.Point{31.2357, 30.0444}

// View is a map view. Zoom always stays within [MinZoom, MaxZoom].
type View struct {
	Basemap string    `json:"basemap"`
	Center  orb.Point `json:"center"`
	Zoom    int       `json:"zoom"`
	MinZoom int       `json:"min_zoom"`
	MaxZoom int       `json:"max_zoom"`
}

// Default returns the initial view.
func Default() View {
	return View{
		Basemap: DefaultBasemap,
		Center:  DefaultCenter,
		Zoom:    DefaultZoom,
		MinZoom: DefaultMinZoom,
		MaxZoom: DefaultMaxZoom,
	}
}

// Validate checks the constraints of v.
func (v View) Validate() error {
	if v.Basemap == "" {
		return errors.New(errors.ErrCodeInvalidInput, "basemap is required")
	}
	if v.MinZoom < 0 || v.MinZoom > v.MaxZoom {
		return errors.New(errors.ErrCodeInvalidInput, "invalid zoom constraints [%d, %d]", v.MinZoom, v.MaxZoom)
	}
	if v.Zoom < v.MinZoom || v.Zoom > v.MaxZoom {
		return errors.New(errors.ErrCodeInvalidInput, "zoom %d outside [%d, %d]", v.Zoom, v.MinZoom, v.MaxZoom)
	}
	if v.Center[0] < -180 || v.Center[0] > 180 || v.Center[1] < -90 || v.Center[1] > 90 {
		return errors.New(errors.ErrCodeInvalidInput, "center out of range: %v", v.Center)
	}
	return nil
}

// SetZoom sets the zoom level, clamped to the constraints, and returns the
// level applied.
func (v *View) SetZoom(z int) int {
	v.Zoom = min(max(z, v.MinZoom), v.MaxZoom)
	return v.Zoom
}

// ZoomIn zooms in by one level.
func (v *View) ZoomIn() int { return v.SetZoom(v.Zoom + 1) }

// ZoomOut zooms out by one level.
func (v *View) ZoomOut() int { return v.SetZoom(v.Zoom - 1) }
