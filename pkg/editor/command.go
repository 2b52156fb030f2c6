package editor

import (
	"github.com/matzehuels/sketchmap/pkg/errors"
)

// Command is a toolbar action.
type Command string

// Toolbar commands. All but [CmdColorPicker] take no value.
const (
	CmdDrawPoint     Command = "draw-point"
	CmdDrawPolyline  Command = "draw-polyline"
	CmdDrawPolygon   Command = "draw-polygon"
	CmdEditGraphic   Command = "edit-graphic"
	CmdUndo          Command = "undo"
	CmdRedo          Command = "redo"
	CmdZoomIn        Command = "zoom-in"
	CmdZoomOut       Command = "zoom-out"
	CmdClearGraphics Command = "clear-graphics"
	CmdExportGeoJSON Command = "export-geojson"
	CmdExportTable   Command = "export-table"
	CmdColorPicker   Command = "color-picker"
)

// Commands lists every command in toolbar order.
var Commands = []Command{
	CmdDrawPoint, CmdDrawPolyline, CmdDrawPolygon, CmdEditGraphic,
	CmdUndo, CmdRedo, CmdZoomIn, CmdZoomOut, CmdClearGraphics,
	CmdExportGeoJSON, CmdExportTable, CmdColorPicker,
}

// ParseCommand parses a command name.
func ParseCommand(s string) (Command, error) {
	for _, c := range Commands {
		if string(c) == s {
			return c, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidCommand, "unknown command %q", s)
}

// Args carries the optional inputs of a command.
type Args struct {
	// Subtype tags the polygon started by draw-polygon.
	Subtype string `json:"subtype,omitempty"`
	// Color is the color-picker value, "#rrggbb".
	Color string `json:"color,omitempty"`
}
