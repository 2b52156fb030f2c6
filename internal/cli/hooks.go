package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sketchmap/pkg/observability"
)

// logHooks writes observability events to a logger at debug level.
type logHooks struct {
	logger *log.Logger
}

func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l.WithPrefix("trace")}
	observability.SetEditorHooks(h)
	observability.SetExportHooks(h)
	observability.SetStoreHooks(h)
}

func (h logHooks) OnCommand(_ context.Context, session, command string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("command", "session", session, "command", command, "duration", d, "error", err)
		return
	}
	h.logger.Debug("command", "session", session, "command", command, "duration", d)
}

func (h logHooks) OnFeatureAdded(_ context.Context, session, featureID, geometryType string) {
	h.logger.Debug("feature added", "session", session, "id", featureID, "type", geometryType)
}

func (h logHooks) OnExport(_ context.Context, format string, features, size int, err error) {
	h.logger.Debug("export", "format", format, "features", features, "bytes", size, "error", err)
}

func (h logHooks) OnLoad(_ context.Context, backend string, found bool) {
	h.logger.Debug("store load", "backend", backend, "found", found)
}

func (h logHooks) OnSave(_ context.Context, backend string, size int, err error) {
	h.logger.Debug("store save", "backend", backend, "bytes", size, "error", err)
}

func (h logHooks) OnDelete(_ context.Context, backend string) {
	h.logger.Debug("store delete", "backend", backend)
}
