// Package connectivity routes request/response calls to a named service
// either in-process (a registered Go function) or over a transport (HTTP)
// chosen by route configuration.
//
// The panel talks to the page agent through a Router: when the agent runs
// in the same binary the call is a function call; when it runs next to a
// remote browser the same call goes over HTTP.
//
//	router := connectivity.New()
//	router.RegisterTransport("http", connectivity.HTTPFactory())
//	router.RegisterLocal("page", ag.Handler("page"))
//	resp, err := router.Call(ctx, "page", payload)
//
// Routes can be swapped at runtime with SetRoute/Apply; the next Call picks
// up the new route.
package connectivity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// Handler is a transport-agnostic service function: bytes in, bytes out.
// Both local Go functions and remote clients implement this signature.
type Handler func(ctx context.Context, payload []byte) ([]byte, error)

// TransportFactory creates a Handler for a given remote endpoint.
// It receives the endpoint URL (e.g. "http://10.0.0.5:7410/bridge") and any
// per-route config JSON. The returned close function is called when the
// route is removed or replaced; it may be nil if no cleanup is needed.
type TransportFactory func(endpoint string, config json.RawMessage) (handler Handler, close func(), err error)

// Strategies with no remote handler.
const (
	StrategyLocal = "local"
	StrategyNoop  = "noop"
)

// Route binds a service to a strategy: "local", "noop", or the name of a
// registered transport.
type Route struct {
	Service  string          `json:"service" yaml:"service"`
	Strategy string          `json:"strategy" yaml:"strategy"`
	Endpoint string          `json:"endpoint,omitempty" yaml:"endpoint"`
	Config   json.RawMessage `json:"config,omitempty" yaml:"-"`
}

// fingerprint returns a string that changes when the route config changes.
func (rt Route) fingerprint() string {
	return rt.Strategy + "|" + rt.Endpoint + "|" + string(rt.Config)
}

// remoteEntry holds a handler and its optional cleanup function.
type remoteEntry struct {
	handler Handler
	close   func()
}

// Router dispatches service calls. Safe for concurrent use.
type Router struct {
	mu            sync.RWMutex
	localHandlers map[string]Handler
	remoteEntries map[string]remoteEntry
	routes        map[string]Route
	factories     map[string]TransportFactory
	logger        *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets a custom logger for the router.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// New creates a Router with no routes.
func New(opts ...Option) *Router {
	r := &Router{
		localHandlers: make(map[string]Handler),
		remoteEntries: make(map[string]remoteEntry),
		routes:        make(map[string]Route),
		factories:     make(map[string]TransportFactory),
		logger:        slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// RegisterLocal registers an in-memory handler for a service. It serves
// calls when the service's route is "local" or when no route exists.
func (r *Router) RegisterLocal(service string, h Handler) {
	r.mu.Lock()
	r.localHandlers[service] = h
	r.mu.Unlock()
}

// RegisterTransport registers a factory for a transport protocol, used by
// routes whose strategy names it.
func (r *Router) RegisterTransport(protocol string, f TransportFactory) {
	r.mu.Lock()
	r.factories[protocol] = f
	r.mu.Unlock()
}

// Call dispatches a service call. The resolution order is:
//  1. Noop route: silently succeeds.
//  2. Remote route: the transport handler built for it.
//  3. Local handler.
//  4. ErrServiceNotFound.
func (r *Router) Call(ctx context.Context, service string, payload []byte) ([]byte, error) {
	r.mu.RLock()
	entry, hasRemote := r.remoteEntries[service]
	localH := r.localHandlers[service]
	rt, hasRoute := r.routes[service]
	r.mu.RUnlock()

	if hasRoute && rt.Strategy == StrategyNoop {
		r.logger.DebugContext(ctx, "routing noop", "service", service)
		return nil, nil
	}

	if hasRemote {
		r.logger.DebugContext(ctx, "routing remote",
			"service", service, "strategy", rt.Strategy, "endpoint", rt.Endpoint)
		resp, err := entry.handler(ctx, payload)
		if err != nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, &ErrCallTimeout{Service: service}
		}
		return resp, err
	}

	if localH != nil {
		r.logger.DebugContext(ctx, "routing local", "service", service)
		return localH(ctx, payload)
	}

	return nil, &ErrServiceNotFound{Service: service}
}

// SetRoute installs or replaces one route.
func (r *Router) SetRoute(rt Route) error {
	r.mu.RLock()
	next := make([]Route, 0, len(r.routes)+1)
	for name, old := range r.routes {
		if name != rt.Service {
			next = append(next, old)
		}
	}
	r.mu.RUnlock()
	return r.Apply(append(next, rt))
}

// Apply replaces the whole route set. Only routes whose (strategy,
// endpoint, config) changed are rebuilt; handlers of removed or changed
// routes are closed. Routes that cannot be built are skipped and reported
// in the returned error; the rest are installed.
func (r *Router) Apply(routes []Route) error {
	newRoutes := make(map[string]Route, len(routes))
	for _, rt := range routes {
		newRoutes[rt.Service] = rt
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	newEntries := make(map[string]remoteEntry, len(newRoutes))
	var errs []error

	for _, name := range sortedKeys(newRoutes) {
		rt := newRoutes[name]
		switch rt.Strategy {
		case StrategyLocal, StrategyNoop:
			continue
		}

		if old, ok := r.routes[name]; ok && old.fingerprint() == rt.fingerprint() {
			if existing, exists := r.remoteEntries[name]; exists {
				newEntries[name] = existing
				continue
			}
		}

		factory, ok := r.factories[rt.Strategy]
		if !ok {
			r.logger.Warn("no transport factory for strategy",
				"service", name, "strategy", rt.Strategy)
			errs = append(errs, &ErrNoFactory{Service: name, Strategy: rt.Strategy})
			continue
		}

		h, closeFn, err := factory(rt.Endpoint, rt.Config)
		if err != nil {
			r.logger.Error("factory failed",
				"service", name, "strategy", rt.Strategy,
				"endpoint", rt.Endpoint, "error", err)
			errs = append(errs, &ErrFactoryFailed{Service: name, Strategy: rt.Strategy, Endpoint: rt.Endpoint, Cause: err})
			continue
		}
		if d := callTimeout(rt.Config, 0); d > 0 {
			h = Timeout(d)(h)
		}
		newEntries[name] = remoteEntry{handler: h, close: closeFn}
		r.logger.Info("route built",
			"service", name, "strategy", rt.Strategy, "endpoint", rt.Endpoint)
	}

	for name, old := range r.remoteEntries {
		if old.close == nil {
			continue
		}
		if _, kept := newEntries[name]; !kept {
			old.close()
			continue
		}
		// Same service, new config: a fresh handler was built above.
		if r.routes[name].fingerprint() != newRoutes[name].fingerprint() {
			old.close()
		}
	}

	r.remoteEntries = newEntries
	r.routes = newRoutes

	r.logger.Info("routes applied",
		"total", len(newRoutes),
		"remote", len(newEntries),
		"local", countLocal(newRoutes))

	return errors.Join(errs...)
}

// Routes returns the installed routes sorted by service.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Route, 0, len(r.routes))
	for _, name := range sortedKeys(r.routes) {
		out = append(out, r.routes[name])
	}
	return out
}

// Close shuts down all remote handlers.
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.remoteEntries {
		if entry.close != nil {
			entry.close()
		}
	}
	r.remoteEntries = make(map[string]remoteEntry)
	r.routes = make(map[string]Route)
	return nil
}

func countLocal(routes map[string]Route) int {
	n := 0
	for _, rt := range routes {
		if rt.Strategy == StrategyLocal {
			n++
		}
	}
	return n
}

func sortedKeys(m map[string]Route) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TimeoutConfig renders the route config carrying a call timeout.
func TimeoutConfig(d time.Duration) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"timeout_ms":%d}`, d.Milliseconds()))
}

// callTimeout extracts timeout from route config, with a default.
func callTimeout(cfg json.RawMessage, defaultTimeout time.Duration) time.Duration {
	var parsed struct {
		TimeoutMs int64 `json:"timeout_ms"`
	}
	if len(cfg) > 0 && sonic.Unmarshal(cfg, &parsed) == nil && parsed.TimeoutMs > 0 {
		return time.Duration(parsed.TimeoutMs) * time.Millisecond
	}
	return defaultTimeout
}
