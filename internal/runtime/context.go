// Package runtime wires configuration, storage and the application
// controller together for a single CLI invocation.
package runtime

import (
	"github.com/renalog/renalog/internal/ai"
	"github.com/renalog/renalog/internal/app"
	"github.com/renalog/renalog/internal/config"
	"github.com/renalog/renalog/internal/output"
	"github.com/renalog/renalog/internal/scheduler"
	"github.com/renalog/renalog/internal/storage"
)

// Context holds the application runtime context.
type Context struct {
	Config    *config.Config
	DB        *storage.DB
	Formatter *output.Formatter
	App       *app.Controller

	// Debug mode
	Debug bool
}

// Options configures the runtime context.
type Options struct {
	// Config supplies the database location and AI settings. Nil uses
	// config.Default.
	Config    *config.Config
	DBPath    string
	InMemory  bool
	Format    output.Format
	ColorMode output.ColorMode
	Debug     bool

	// Gateway and Clock override the AI client and system clock.
	Gateway app.Gateway
	Clock   scheduler.Clock
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		DBPath:    storage.DefaultPath(),
		InMemory:  false,
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
		Debug:     false,
	}
}

// New opens the database, loads the stored state and returns the context.
func New(opts Options) (*Context, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	// The configured database wins over the default path
	if cfg.Database != "" {
		if cfg.Database == storage.MemoryPath {
			opts.InMemory = true
		} else {
			opts.DBPath = cfg.Database
		}
	}
	if opts.DBPath == "" && !opts.InMemory {
		opts.DBPath = storage.DefaultPath()
	}

	db, err := storage.Open(storage.Options{
		Path:     opts.DBPath,
		InMemory: opts.InMemory,
	})
	if err != nil {
		return nil, err
	}

	gateway := opts.Gateway
	if gateway == nil {
		gateway = ai.NewClient(AIConfig(cfg), nil)
	}

	controller := app.New(db, gateway, opts.Clock)
	if err := controller.Load(); err != nil {
		db.Close()
		return nil, err
	}

	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	return &Context{
		Config:    cfg,
		DB:        db,
		Formatter: formatter,
		App:       controller,
		Debug:     opts.Debug,
	}, nil
}

// AIConfig maps configuration onto the AI client settings.
func AIConfig(cfg *config.Config) ai.Config {
	return ai.Config{
		APIKey:            cfg.AI.APIKey,
		Model:             cfg.AI.Model,
		Endpoint:          cfg.AI.Endpoint,
		APIVersion:        cfg.AI.APIVersion,
		Timeout:           cfg.AI.Timeout,
		RequestsPerMinute: cfg.AI.RequestsPerMinute,
	}
}

// Close closes the runtime context.
func (c *Context) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// IsCLI returns true if output format is CLI.
func (c *Context) IsCLI() bool {
	return c.Formatter.Format == output.FormatCLI
}

// Debugf prints debug output if debug mode is enabled.
func (c *Context) Debugf(format string, args ...interface{}) {
	if c.Debug {
		c.Formatter.Printf("[DEBUG] "+format+"\n", args...)
	}
}
