package goSession

import (
	"context"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/errorlist"
	"github.com/MrEthical07/goSession/loading"
	"github.com/MrEthical07/goSession/navigation"
	"github.com/MrEthical07/goSession/persist"
	"github.com/MrEthical07/goSession/session"
)

// Builder assembles a Client. A Builder can be built once.
type Builder struct {
	config       Config
	storage      persist.Storage
	httpClient   *http.Client
	logger       zerolog.Logger
	eventSink    EventSink
	clock        clockwork.Clock
	routes       []navigation.Route
	interceptors []api.Interceptor

	built bool
}

// New returns a Builder holding the default configuration and a no-op logger.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig replaces the whole configuration. Build validates it.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStorage supplies the durable medium, overriding Config.Storage.
// The caller keeps ownership: Close does not close it.
func (b *Builder) WithStorage(s persist.Storage) *Builder {
	b.storage = s
	return b
}

// WithHTTPClient sets the transport client. Requests are bounded only by
// their context unless the client sets a timeout.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// WithLogger sets the logger shared by the client, pipeline and binder.
func (b *Builder) WithLogger(l zerolog.Logger) *Builder {
	b.logger = l
	return b
}

// WithEventSink sets where events go when Config.Events is enabled.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

// WithClock replaces the real clock, mainly for tests.
func (b *Builder) WithClock(c clockwork.Clock) *Builder {
	b.clock = c
	return b
}

// WithRoutes replaces the default route table.
func (b *Builder) WithRoutes(routes []navigation.Route) *Builder {
	b.routes = append([]navigation.Route(nil), routes...)
	return b
}

// WithInterceptors appends interceptors after the built-in chain.
func (b *Builder) WithInterceptors(in ...api.Interceptor) *Builder {
	b.interceptors = append(b.interceptors, in...)
	return b
}

// Build validates the configuration, constructs every store once, rehydrates
// the persisted stores, and wires the request pipeline. ctx bounds the
// initial storage reads and every later flush.
func (b *Builder) Build(ctx context.Context) (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := b.clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	routes := b.routes
	if routes == nil {
		routes = navigation.DefaultRoutes()
	}
	router, err := navigation.NewRouter(routes, navigation.Guard{
		LoginPath:         cfg.Navigation.LoginPath,
		AuthenticatedHome: cfg.Navigation.AuthenticatedHome,
	}, cfg.Navigation.CatchAll)
	if err != nil {
		return nil, err
	}

	c := &Client{
		config:  cfg,
		logger:  b.logger,
		clock:   clock,
		session: session.NewStore(),
		errors:  errorlist.New(),
		loading: loading.New(),
		router:  router,
		metrics: NewMetrics(cfg.Metrics),
		ready:   make(chan struct{}),
	}

	if cfg.Persistence.Enabled {
		if err := c.bindStorage(ctx, b.storage); err != nil {
			c.release()
			return nil, err
		}
	}

	// Subscribed after binding so restoring a signed-out snapshot is not
	// reported as a clear.
	c.trackSessionClears()

	chain := []api.Interceptor{
		c.closedGuard(),
		api.LoadingInterceptor(c.loading),
		api.BearerInterceptor(c.session),
		api.ErrorInterceptor(c.errors, cfg.Messages.Network),
		api.UnauthorizedInterceptor(c.session),
		c.instrumentation(),
	}
	chain = append(chain, b.interceptors...)
	c.api = api.New(api.Options{
		BaseURL:      cfg.API.BaseURL,
		HTTPClient:   b.httpClient,
		Logger:       b.logger,
		Interceptors: chain,
	})

	c.events = newEventDispatcher(cfg.Events, b.eventSink)

	b.built = true
	return c, nil
}

func (c *Client) bindStorage(ctx context.Context, supplied persist.Storage) error {
	storage := supplied
	if storage == nil {
		opened, closer, err := openStorage(ctx, c.config.Storage)
		if err != nil {
			return err
		}
		storage = opened
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
	}

	c.binder = persist.NewBinder(storage,
		persist.WithLogger(c.logger),
		persist.WithObserver(func(key string, err error) {
			if err != nil {
				c.metrics.Inc(MetricPersistFailure)
				c.logger.Error().Err(err).Str("key", key).Msg("persisting store failed")
				return
			}
			c.metrics.Inc(MetricPersistWrite)
		}),
	)

	stores := []persist.Bindable{c.session}
	if c.config.Persistence.PersistTransient {
		stores = append(stores, c.errors, c.loading)
	}
	for _, s := range stores {
		cancel, err := c.binder.Bind(ctx, s)
		if err != nil {
			return err
		}
		c.unbind = append(c.unbind, cancel)
	}
	return nil
}
