// dispatcher.go: Backend registry and routing shared by every family
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	goerrors "github.com/agilira/go-errors"
	goplugins "github.com/agilira/go-plugins"

	"github.com/agilira/harmony-crypto/accel"
)

// Dispatcher validates calls and routes them to the backend named by their
// HandlerType. It is safe for concurrent use; contexts are not.
type Dispatcher struct {
	mu       sync.RWMutex
	backends map[HandlerType]Backend
	sessions *SessionRegistry
	logger   Logger
	config   *Config
	closers  []io.Closer
}

type dispatcherOptions struct {
	backends []Backend
	logger   Logger
	driver   AccelDriver
	entropy  EntropySource
	se       *SecureElementManager
	plugins  *goplugins.Manager[SERequest, SEResponse]
	plugin   string
}

// Option customizes a Dispatcher.
type Option func(*dispatcherOptions)

// WithBackend registers b for its handler, replacing the default backend.
func WithBackend(b Backend) Option {
	return func(o *dispatcherOptions) { o.backends = append(o.backends, b) }
}

// WithLogger sets the logger. The default writes text records to stderr at
// the configured level.
func WithLogger(l Logger) Option {
	return func(o *dispatcherOptions) { o.logger = l }
}

// WithEngine sets the accelerator driver behind the hardware backend.
func WithEngine(drv AccelDriver) Option {
	return func(o *dispatcherOptions) { o.driver = drv }
}

// WithEntropySource sets the seed source of the software DRBG.
func WithEntropySource(src EntropySource) Option {
	return func(o *dispatcherOptions) { o.entropy = src }
}

// WithSecureElementManager enables the secure element backend through mgr.
func WithSecureElementManager(mgr *SecureElementManager) Option {
	return func(o *dispatcherOptions) { o.se = mgr }
}

// WithSecureElementPlugin enables the secure element backend through the
// plugin called name in pm. WithSecureElementManager takes precedence.
func WithSecureElementPlugin(pm *goplugins.Manager[SERequest, SEResponse], name string) Option {
	return func(o *dispatcherOptions) { o.plugins, o.plugin = pm, name }
}

// NewDispatcher builds a dispatcher with the software and hardware backends
// registered. A secure element backend is added when a manager is supplied
// or cfg.SecureElement is set. A nil cfg selects DefaultConfig.
func NewDispatcher(cfg *Config, opts ...Option) (*Dispatcher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o dispatcherOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = NewTextLogger(os.Stderr, cfg.Log.Level)
	}
	if o.driver == nil {
		o.driver = accel.New(accel.WithPollLimit(cfg.Engine.PollLimit))
	}

	d := &Dispatcher{
		backends: make(map[HandlerType]Backend),
		sessions: NewSessionRegistry(cfg.Sessions.Max),
		logger:   o.logger,
		config:   cfg,
	}
	d.register(NewSoftware(o.entropy))
	d.register(NewHardware(o.driver))

	mgr := o.se
	if mgr == nil && o.plugins != nil {
		mgr = NewSecureElementManager(&SecureElementManagerConfig{
			DefaultProvider:  o.plugin,
			OperationTimeout: 10 * time.Second,
		}, o.plugins)
		if err := mgr.RegisterPlugin(o.plugin); err != nil {
			return nil, goerrors.Wrap(err, ErrCodeBackend, "failed to open secure element plugin")
		}
		d.closers = append(d.closers, mgr)
	}
	if mgr == nil && cfg.SecureElement != nil {
		provider, err := NewPKCS11Provider(cfg.SecureElement)
		if err != nil {
			return nil, goerrors.Wrap(err, ErrCodeConfigValue, "failed to create secure element provider")
		}
		mgr = NewSecureElementManager(&SecureElementManagerConfig{
			DefaultProvider:  provider.Name(),
			OperationTimeout: cfg.SecureElement.OperationTimeout,
		}, nil)
		if err := mgr.RegisterProvider(provider.Name(), provider); err != nil {
			return nil, goerrors.Wrap(err, ErrCodeBackend, "failed to open secure element")
		}
		d.closers = append(d.closers, mgr)
	}
	if mgr != nil {
		d.register(NewSecureElement(mgr))
	}

	for _, b := range o.backends {
		d.register(b)
	}
	return d, nil
}

var (
	defaultOnce       sync.Once
	defaultDispatcher *Dispatcher
)

// Default returns the process-wide dispatcher used by the package-level
// functions. It is created on first use from DefaultConfig.
func Default() *Dispatcher {
	defaultOnce.Do(func() {
		d, err := NewDispatcher(nil, WithLogger(NewLogger(nil)))
		if err != nil {
			panic(fmt.Sprintf("crypto: default dispatcher: %v", err))
		}
		defaultDispatcher = d
	})
	return defaultDispatcher
}

func (d *Dispatcher) register(b Backend) {
	d.mu.Lock()
	d.backends[b.Handler()] = b
	d.mu.Unlock()
	d.logger.Debug("backend registered", "handler", b.Handler().String(), "backend", b.Name())
}

// Backend returns the backend registered for h.
func (d *Dispatcher) Backend(h HandlerType) (Backend, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	b, ok := d.backends[h]
	return b, ok
}

// Config returns the configuration the dispatcher was built from.
func (d *Dispatcher) Config() *Config { return d.config }

// Sessions lists the active session leases.
func (d *Dispatcher) Sessions() []SessionInfo { return d.sessions.Sessions() }

// SessionMax returns the number of session slots per family.
func (d *Dispatcher) SessionMax() uint32 { return d.sessions.Max() }

// Close releases resources owned by the dispatcher, such as secure element
// sessions it opened from configuration.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	closers := d.closers
	d.closers = nil
	d.mu.Unlock()

	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return goerrors.Wrap(fmt.Errorf("%v", errs), ErrCodeBackend, "failed to close dispatcher resources")
	}
	return nil
}

// capability returns the backend for h if it implements T.
func capability[T any](d *Dispatcher, h HandlerType) (T, bool) {
	var zero T
	b, ok := d.Backend(h)
	if !ok {
		return zero, false
	}
	c, ok := b.(T)
	return c, ok
}

// aeadModeSupporter lets a backend refuse AEAD modes at Init time.
type aeadModeSupporter interface {
	SupportsAEAD(mode AeadMode) bool
}

func (d *Dispatcher) route(family Family, op string, h HandlerType) {
	d.logger.Debug("dispatch", "family", family.String(), "op", op, "handler", h.String())
}

// routeKeyed is route for calls that bind a key to a context.
func (d *Dispatcher) routeKeyed(family Family, op string, h HandlerType, key []byte) {
	d.logger.Debug("dispatch", "family", family.String(), "op", op, "handler", h.String(), KeyFingerprint("key", key))
}

func (d *Dispatcher) backendFailed(family Family, op string, h HandlerType, err error) {
	d.logger.Warn("backend call failed", "family", family.String(), "op", op, "handler", h.String(), "error", err)
}

// Shared precondition checks. Each builds the failing family status so the
// cascade in every entry point stays a flat list.

func checkHandler[S status](s S, h HandlerType) error {
	if !h.Valid() {
		return fail(s, goerrors.New(ErrCodeHandler, fmt.Sprintf("unknown handler %d", int(h))))
	}
	return nil
}

func checkSession[S status](d *Dispatcher, s S, sid SessionID) error {
	if !d.sessions.InRange(sid) {
		return fail(s, goerrors.New(ErrCodeSessionRange, fmt.Sprintf("session id %d outside [1, %d]", sid, d.sessions.Max())))
	}
	return nil
}

func notSupported[S status](s S, what string, h HandlerType) error {
	return fail(s, goerrors.New(ErrCodeNotSupported, fmt.Sprintf("%s is not available on handler %s", what, h)))
}

// ctxBase is the part of every streaming context that ties it to a
// dispatcher, a backend and a session slot.
type ctxBase struct {
	d       *Dispatcher
	handler HandlerType
	sid     SessionID
	lease   *lease
}

// bind takes the session slot for a freshly initialized context.
func (b *ctxBase) bind(d *Dispatcher, family Family, h HandlerType, sid SessionID, owner string) {
	b.Reset()
	b.d = d
	b.handler = h
	b.sid = sid
	b.lease = d.sessions.acquire(family, sid, owner)
}

// Reset releases the context's session slot and forgets its state. Final
// does this implicitly; Reset is for abandoning an operation.
func (b *ctxBase) Reset() {
	if b.d != nil {
		b.d.sessions.release(b.lease)
	}
	*b = ctxBase{}
}

// Handler returns the backend selector the context was initialized with.
func (b *ctxBase) Handler() HandlerType { return b.handler }

// SessionID returns the session slot the context was initialized with.
func (b *ctxBase) SessionID() SessionID { return b.sid }

func checkContext[S status](s S, b *ctxBase) error {
	switch {
	case b.lease == nil:
		return fail(s, goerrors.New(ErrCodeContext, "context is not initialized"))
	case !b.d.sessions.held(b.lease):
		return fail(s, goerrors.New(ErrCodeSessionLost, fmt.Sprintf("session %d was taken over by a newer context", b.sid)))
	}
	return nil
}
