package kvo

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
	"weak"

	"github.com/google/uuid"

	"github.com/kvo-hub/kvo-go/pkg/log"
)

// Config holds proxy configuration.
type Config struct {
	// Name labels the proxy in log output. Defaults to the owner type name.
	Name string

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// EventLogger receives the observation event trace.
	// If nil, events are discarded.
	EventLogger log.Logger
}

// DefaultConfig returns the default proxy configuration.
func DefaultConfig() Config {
	return Config{
		EventLogger: log.NoopLogger{},
	}
}

// Proxy holds the observers of one owner instance of type O and dispatches
// their notifications.
type Proxy[O any] struct {
	mu    sync.Mutex
	owner weak.Pointer[O]
	bound bool

	id     uuid.UUID
	name   string
	reg    *registry
	logger *slog.Logger
	events log.Logger
}

// NewProxy creates an unbound proxy with default configuration.
func NewProxy[O any]() *Proxy[O] {
	return NewProxyWithConfig[O](DefaultConfig())
}

// NewProxyWithConfig creates an unbound proxy with custom configuration.
func NewProxyWithConfig[O any](config Config) *Proxy[O] {
	if config.Name == "" {
		config.Name = ownerName[O]()
	}
	if config.EventLogger == nil {
		config.EventLogger = log.NoopLogger{}
	}

	p := &Proxy[O]{
		id:     uuid.New(),
		name:   config.Name,
		reg:    newRegistry(),
		logger: config.Logger,
		events: config.EventLogger,
	}
	p.reg.onRemove = p.observerRemoved
	return p
}

// ID returns the unique proxy instance ID.
func (p *Proxy[O]) ID() uuid.UUID {
	return p.id
}

// Name returns the proxy name used in logs.
func (p *Proxy[O]) Name() string {
	return p.name
}

// Bind sets the owner. It can be called successfully only once over the
// lifetime of the proxy; the proxy does not keep the owner alive.
func (p *Proxy[O]) Bind(owner *O) error {
	if owner == nil {
		p.logError("bind", "", ErrNilOwner)
		return ErrNilOwner
	}

	p.mu.Lock()
	if p.bound {
		p.mu.Unlock()
		err := fmt.Errorf("%w: %s", ErrAlreadyBound, p.name)
		p.logError("bind", "", err)
		return err
	}
	p.owner = weak.Make(owner)
	p.bound = true
	p.mu.Unlock()

	p.debugLog("kvo: proxy bound", "proxy", p.name, "proxy_id", p.id)
	p.logEvent(log.Event{Category: log.CategoryBind})
	return nil
}

// Bound returns true once Bind succeeded.
func (p *Proxy[O]) Bound() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bound
}

// Owner returns the bound owner.
// Returns ErrNotBound before Bind and ErrOwnerGone once the owner was collected.
func (p *Proxy[O]) Owner() (*O, error) {
	p.mu.Lock()
	bound, owner := p.bound, p.owner
	p.mu.Unlock()

	if !bound {
		return nil, ErrNotBound
	}
	o := owner.Value()
	if o == nil {
		return nil, ErrOwnerGone
	}
	return o, nil
}

// Close drops every observer. Outstanding handles become no-ops and further
// Observe, WillChange and DidChange calls return ErrProxyClosed.
// It is safe to call Close multiple times.
func (p *Proxy[O]) Close() {
	n, ok := p.reg.close()
	if !ok {
		return
	}
	p.debugLog("kvo: proxy closed", "proxy", p.name, "dropped", n)
	p.logEvent(log.Event{Category: log.CategoryClose, Observers: n})
}

// Closed returns true after Close.
func (p *Proxy[O]) Closed() bool {
	return p.reg.isClosed()
}

// Count returns the number of registered observers.
func (p *Proxy[O]) Count() int {
	return p.reg.count()
}

// CountFor returns the number of observers registered for key.
func (p *Proxy[O]) CountFor(key KeyID) int {
	return p.reg.countFor(key)
}

// Keys returns the keys that currently have observers, in no particular order.
func (p *Proxy[O]) Keys() []KeyID {
	return p.reg.keys()
}

// observerRemoved is the registry's removal hook.
func (p *Proxy[O]) observerRemoved(key KeyID, id uint64, implicit bool) {
	p.debugLog("kvo: observer cancelled", "proxy", p.name, "key", key.String(), "id", id, "implicit", implicit)
	p.logEvent(log.Event{
		Category:       log.CategoryCancel,
		Key:            key.String(),
		SubscriptionID: id,
		Implicit:       implicit,
	})
}

func (p *Proxy[O]) debugLog(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

// logEvent stamps and forwards an event to the event logger.
func (p *Proxy[O]) logEvent(event log.Event) {
	event.Timestamp = time.Now()
	event.ProxyID = p.id.String()
	event.Proxy = p.name
	p.events.Log(event)
}

func (p *Proxy[O]) logError(op, key string, err error) {
	p.debugLog("kvo: "+op+" failed", "proxy", p.name, "key", key, "error", err)
	p.logEvent(log.Event{
		Category: log.CategoryError,
		Key:      key,
		Error:    &log.ErrorEventData{Operation: op, Message: err.Error()},
	})
}

func ownerName[O any]() string {
	t := reflect.TypeFor[O]()
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
