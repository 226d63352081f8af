package container

import (
	"context"
	"fmt"
	"net"

	"dataportal/adapters/datareadiness/coercer"
	"dataportal/adapters/excel"
	"dataportal/app"
	"dataportal/internal"
	"dataportal/internal/config"
	"dataportal/internal/dataset"
	"dataportal/internal/ops"
	"dataportal/internal/session"
	"dataportal/ui"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger
	Clock  clockwork.Clock

	// Loading
	Reader  *excel.DataReader
	Coercer *coercer.TypeCoercer
	Loader  *dataset.Loader

	// Sessions and the exploration pipeline
	Store    *session.MemoryStore
	Explorer *app.ExplorerService

	// Listeners
	UI  *ui.Server
	Ops *ops.Server
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger, clock clockwork.Clock) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	c := &Container{Config: cfg, Logger: logger, Clock: clock}
	c.initLoading()
	c.initExplorer()
	if err := c.initServers(); err != nil {
		return nil, fmt.Errorf("failed to initialize servers: %w", err)
	}

	logger.Debug("[Container] initialized (max upload %dMB, %d concurrent parses)", cfg.Upload.MaxUploadMB, cfg.Upload.MaxConcurrentParses)
	return c, nil
}

// initLoading builds the file reader, type coercer and loader
func (c *Container) initLoading() {
	c.Reader = excel.NewDataReader(excel.ReaderConfig{MaxRows: c.Config.Upload.MaxRows}, c.Logger)
	c.Coercer = NewCoercer(c.Config.Inference)
	c.Loader = dataset.NewLoader(c.Reader, c.Coercer, c.Logger)
}

// NewCoercer applies the inference settings to the default coercion rules
func NewCoercer(cfg config.InferenceConfig) *coercer.TypeCoercer {
	coercion := coercer.DefaultCoercionConfig()
	coercion.NumericThreshold = cfg.NumericThreshold
	coercion.Lenient = cfg.LenientNumbers
	return coercer.NewTypeCoercer(coercion)
}

func (c *Container) initExplorer() {
	c.Store = session.NewMemoryStore(c.Config.Session.TTL, c.Clock, c.Logger)
	c.Explorer = app.NewExplorerService(c.Store, c.Loader, app.ExplorerConfig{
		MaxConcurrentParses: c.Config.Upload.MaxConcurrentParses,
		PreviewRows:         c.Config.Server.PreviewRows,
	}, c.Clock, c.Logger)
}

func (c *Container) initServers() error {
	var err error
	c.UI, err = ui.NewServer(c.Explorer, ui.Config{
		Addr:           net.JoinHostPort("", c.Config.Server.Port),
		CookieName:     c.Config.Session.CookieName,
		SecureCookie:   c.Config.Session.SecureCookie,
		MaxUploadBytes: c.Config.Upload.MaxUploadBytes(),
	}, c.Logger)
	if err != nil {
		return err
	}

	c.Ops = ops.New(ops.Config{
		Addr:     net.JoinHostPort("", c.Config.Profiling.Port),
		Profiler: c.Config.Profiling.Enabled,
	}, c.Store, c.Logger)
	return nil
}

// Run starts the session sweeper and both listeners, and blocks until ctx is
// done or a listener fails
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c.Store.Run(ctx, c.Config.Session.SweepInterval)
		return nil
	})
	g.Go(func() error { return c.UI.Run(ctx) })
	g.Go(func() error { return c.Ops.Run(ctx) })

	return g.Wait()
}
