// Package cli implements the sketchmap command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchmap/internal/config"
	"github.com/matzehuels/sketchmap/pkg/buildinfo"
	"github.com/matzehuels/sketchmap/pkg/geo"
	"github.com/matzehuels/sketchmap/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sketchmap"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config config.Config

	configPath string
	lang       string
	backend    string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level. Debug level also routes editor,
// export and store events into the log.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		registerLogHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Sketchmap draws points, lines and polygons on a web map",
		Long:         `Sketchmap runs map drawing sessions: pick a tool, place vertices, complete shapes, then export them as GeoJSON, CSV or an HTML table. Sessions are stored and can be driven from scripts, the terminal or the HTTP API.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+config.FileName+" or ~/.config/"+appName+"/"+config.FileName+")")
	root.PersistentFlags().StringVar(&c.lang, "lang", "", "language for alerts: en, ar")
	root.PersistentFlags().StringVar(&c.backend, "store", "", "session store: memory, file, redis, mongo")

	// Register all subcommands
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.playCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.sessionsCommand())
	root.AddCommand(c.featuresCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config and Store
// =============================================================================

// loadConfig reads the config file and environment, then applies flags.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.lang != "" {
		cfg.UI.Lang = c.lang
	}
	if c.backend != "" {
		cfg.Store.Backend = c.backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// openStore opens the configured session store. Remote backends show a
// spinner while connecting.
func (c *CLI) openStore(ctx context.Context) (session.Store, error) {
	cfg := c.Config.SessionConfig()
	if cfg.Backend == session.BackendRedis || cfg.Backend == session.BackendMongo {
		spin := newSpinnerWithContext(ctx, "Connecting to "+cfg.Backend+"...")
		spin.Start()
		st, err := session.Open(ctx, cfg)
		spin.Stop()
		return st, err
	}
	return session.Open(ctx, cfg)
}

// engine returns the configured measurement engine.
func (c *CLI) engine() (geo.Engine, error) {
	return geo.NewEngine(c.Config.Geo.Engine)
}

// isTerminal reports whether stdout is a terminal.
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
