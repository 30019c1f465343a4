// Package relay assembles the function-calling relay from configuration:
// the action catalogue and registry, downstream handlers, the model agent,
// conversation sessions and the dispatcher.
//
//	cfg, err := relay.LoadConfig("relay.yaml")
//	r, err := relay.New(ctx, cfg)
//	result, err := r.Handle(ctx, "", "Add jane@example.com to the CRM")
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/CerealNotFound/function-calling-server/actions"
	"github.com/CerealNotFound/function-calling-server/agent"
	"github.com/CerealNotFound/function-calling-server/catalog"
	"github.com/CerealNotFound/function-calling-server/core/protocol"
	"github.com/CerealNotFound/function-calling-server/dispatch"
	"github.com/CerealNotFound/function-calling-server/handlers/calendar"
	"github.com/CerealNotFound/function-calling-server/handlers/contact"
	"github.com/CerealNotFound/function-calling-server/handlers/sheets"
	"github.com/CerealNotFound/function-calling-server/integration"
	"github.com/CerealNotFound/function-calling-server/observability"
	"github.com/CerealNotFound/function-calling-server/prompt"
	"github.com/CerealNotFound/function-calling-server/session"

	_ "github.com/CerealNotFound/function-calling-server/agent/openai"
)

// ObserverPrometheus is the observer name that enables metrics.
const ObserverPrometheus = "prometheus"

// Option configures a Relay after config-driven initialization.
type Option func(*options)

type options struct {
	agent  agent.Agent
	logger *slog.Logger
	http   integration.HTTPClient
}

// WithAgent overrides the config-created agent.
func WithAgent(a agent.Agent) Option {
	return func(o *options) { o.agent = a }
}

// WithLogger sets the logger used by the slog observer and the session
// manager.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHTTPClient overrides the HTTP client used by every integration.
func WithHTTPClient(h integration.HTTPClient) Option {
	return func(o *options) { o.http = h }
}

// Relay is a fully wired function-calling relay.
type Relay struct {
	dispatcher *dispatch.Dispatcher
	executor   *actions.Executor
	sessions   *session.Manager
	metrics    *prometheus.Registry
	logger     *slog.Logger
}

// New creates a Relay from configuration. The registry is frozen before
// New returns.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Relay, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	executor, err := newExecutor(cfg, &o)
	if err != nil {
		return nil, err
	}

	a := o.agent
	if a == nil {
		if a, err = agent.New(&cfg.Agent); err != nil {
			return nil, fmt.Errorf("failed to create agent: %w", err)
		}
	}

	sessions, err := session.NewManager(&cfg.Session, session.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	systemPrompt, err := prompt.Compose(ctx, cfg.Dispatch.SystemPrompt, prompt.NewStore(&cfg.Prompt))
	if err != nil {
		return nil, err
	}

	metrics := prometheus.NewRegistry()
	observer, err := newObserver(&cfg.Observer, o.logger, metrics)
	if err != nil {
		return nil, err
	}

	dispatcher, err := dispatch.New(&cfg.Dispatch, a, executor,
		dispatch.WithObserver(observer),
		dispatch.WithSystemPrompt(systemPrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	return &Relay{
		dispatcher: dispatcher,
		executor:   executor,
		sessions:   sessions,
		metrics:    metrics,
		logger:     o.logger,
	}, nil
}

// Handle runs one dispatch cycle on the conversation. An empty
// conversationID starts a new conversation; the result carries its id.
func (r *Relay) Handle(ctx context.Context, conversationID, text string) (*dispatch.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, dispatch.ErrEmptyPrompt
	}

	var result *dispatch.Result
	err := r.sessions.WithLock(ctx, conversationID, func(ctx context.Context, s session.Session) error {
		res, err := r.dispatcher.Handle(ctx, s, text)
		result = res
		return err
	})
	return result, err
}

// History returns a copy of the conversation's turns.
func (r *Relay) History(conversationID string) ([]protocol.Message, error) {
	s, ok := r.sessions.Get(conversationID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", session.ErrNotFound, conversationID)
	}
	return s.Snapshot(), nil
}

// End discards a conversation.
func (r *Relay) End(ctx context.Context, conversationID string) error {
	return r.sessions.End(ctx, conversationID)
}

// Conversations returns the active conversation ids.
func (r *Relay) Conversations() []string {
	return r.sessions.IDs()
}

// Actions returns the action catalogue in registration order.
func (r *Relay) Actions() []actions.Schema {
	return r.executor.Registry().List()
}

// Metrics returns the registry holding the relay's Prometheus collectors.
func (r *Relay) Metrics() *prometheus.Registry {
	return r.metrics
}

// Logger returns the relay's logger.
func (r *Relay) Logger() *slog.Logger {
	return r.logger
}

// NewExecutor builds the frozen registry and the downstream handlers
// without a model, for transports that route action requests directly.
func NewExecutor(cfg *Config, opts ...Option) (*actions.Executor, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return newExecutor(cfg, &o)
}

func newExecutor(cfg *Config, o *options) (*actions.Executor, error) {
	registry, err := newRegistry(&cfg.Catalog)
	if err != nil {
		return nil, err
	}

	handlers, err := newHandlers(&cfg.Integrations, o.http)
	if err != nil {
		return nil, err
	}
	for _, s := range registry.List() {
		if _, ok := handlers.Lookup(s.Name); !ok {
			o.logger.Warn("action has no handler", "action", s.Name)
		}
	}

	return actions.NewExecutor(registry, handlers, cfg.Dispatch.ActionTimeout), nil
}

func newRegistry(cfg *CatalogConfig) (*actions.Registry, error) {
	schemas, err := catalog.Load(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	registry := actions.NewRegistry()
	if err := catalog.Register(registry, schemas); err != nil {
		return nil, fmt.Errorf("failed to register catalog: %w", err)
	}
	registry.Freeze()
	return registry, nil
}

func newHandlers(cfg *IntegrationsConfig, h integration.HTTPClient) (*actions.HandlerSet, error) {
	var opts []integration.Option
	if h != nil {
		opts = append(opts, integration.WithHTTPClient(h))
	}

	hubspot, err := integration.New("hubspot", &cfg.HubSpot, opts...)
	if err != nil {
		return nil, err
	}
	cal, err := integration.New("calendar", &cfg.Calendar, opts...)
	if err != nil {
		return nil, err
	}
	sheet, err := integration.New("sheets", &cfg.Sheets, opts...)
	if err != nil {
		return nil, err
	}

	set := actions.NewHandlerSet()
	if err := contact.Register(set, hubspot); err != nil {
		return nil, err
	}
	var calOpts []calendar.Option
	if cfg.CalendarID != "" {
		calOpts = append(calOpts, calendar.WithCalendar(cfg.CalendarID))
	}
	if err := calendar.Register(set, cal, calOpts...); err != nil {
		return nil, err
	}
	if err := sheets.Register(set, sheet); err != nil {
		return nil, err
	}
	return set, nil
}

func newObserver(cfg *ObserverConfig, logger *slog.Logger, metrics *prometheus.Registry) (observability.Observer, error) {
	var observers []observability.Observer
	for _, name := range cfg.Names {
		switch name {
		case ObserverPrometheus:
			p, err := observability.NewPrometheusObserver(cfg.Namespace, metrics)
			if err != nil {
				return nil, err
			}
			observers = append(observers, p)
		case "slog":
			observers = append(observers, observability.NewSlogObserver(logger))
		default:
			obs, err := observability.Resolve(name)
			if err != nil {
				return nil, err
			}
			observers = append(observers, obs)
		}
	}

	switch len(observers) {
	case 0:
		return observability.NoOpObserver{}, nil
	case 1:
		return observers[0], nil
	}
	return observability.NewMultiObserver(observers...), nil
}
