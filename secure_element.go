// secure_element.go: External secure element backend built on go-plugins
//
// Secure elements are reached through providers (a PKCS#11 token, a vendor
// plugin, a test double) registered with a SecureElementManager. The backend
// forwards random generation and SHA digests to the default provider.
// Providers hosted by a go-plugins manager are driven with SERequest and
// SEResponse messages.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	goerrors "github.com/agilira/go-errors"
	goplugins "github.com/agilira/go-plugins"
)

// SecureElementProvider is implemented by every secure element plugin.
type SecureElementProvider interface {
	Name() string
	Initialize(ctx context.Context, config map[string]interface{}) error
	Close() error
	IsHealthy() bool

	// GenerateRandom returns length bytes from the element's RNG.
	GenerateRandom(ctx context.Context, length int) ([]byte, error)
	// Digest hashes data with a SHA-1 or SHA-2 algorithm.
	Digest(ctx context.Context, algo HashAlgo, data []byte) ([]byte, error)
}

// Secure element plugin operations.
const (
	SEOpInitialize = "initialize"
	SEOpRandom     = "random"
	SEOpDigest     = "digest"
)

// SERequest is a request sent to a secure element plugin.
type SERequest struct {
	Operation string                 `json:"operation"`
	Algorithm HashAlgo               `json:"algorithm,omitempty"`
	Length    int                    `json:"length,omitempty"`
	Data      []byte                 `json:"data,omitempty"`
	Config    map[string]interface{} `json:"config,omitempty"`
}

// SEResponse is the reply of a secure element plugin.
type SEResponse struct {
	Success bool   `json:"success"`
	Data    []byte `json:"data"`
	Error   string `json:"error"`
}

// Secure element errors
var (
	ErrSENotInitialized   = goerrors.New("SE_001", "secure element provider not initialized")
	ErrSEOperationFailed  = goerrors.New("SE_002", "secure element operation failed")
	ErrSEProviderNotFound = goerrors.New("SE_003", "secure element provider not found")
	ErrSEHealthCheck      = goerrors.New("SE_004", "secure element health check failed")
)

// SecureElementManagerConfig configures a SecureElementManager.
type SecureElementManagerConfig struct {
	DefaultProvider  string                            `json:"default_provider"`
	ProviderConfigs  map[string]map[string]interface{} `json:"provider_configs"`
	OperationTimeout time.Duration                     `json:"operation_timeout"`
}

// SecureElementManager owns the registered secure element providers.
type SecureElementManager struct {
	mu              sync.RWMutex
	pluginManager   *goplugins.Manager[SERequest, SEResponse]
	providers       map[string]SecureElementProvider
	defaultProvider string
	config          *SecureElementManagerConfig
}

// NewSecureElementManager creates a manager. pluginManager may be nil when
// every provider is registered in-process.
func NewSecureElementManager(config *SecureElementManagerConfig, pluginManager *goplugins.Manager[SERequest, SEResponse]) *SecureElementManager {
	if config == nil {
		config = &SecureElementManagerConfig{OperationTimeout: 10 * time.Second}
	}
	return &SecureElementManager{
		pluginManager: pluginManager,
		providers:     make(map[string]SecureElementProvider),
		config:        config,
	}
}

// PluginManager returns the go-plugins manager the providers were loaded from, if any.
func (m *SecureElementManager) PluginManager() *goplugins.Manager[SERequest, SEResponse] {
	return m.pluginManager
}

// RegisterProvider initializes provider and makes it available under name.
func (m *SecureElementManager) RegisterProvider(name string, provider SecureElementProvider) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	ctx, cancel := m.opContext()
	defer cancel()
	if err := provider.Initialize(ctx, m.config.ProviderConfigs[name]); err != nil {
		return fmt.Errorf("failed to initialize secure element provider %s: %w", name, err)
	}

	m.providers[name] = provider
	if m.defaultProvider == "" || m.config.DefaultProvider == name {
		m.defaultProvider = name
	}
	return nil
}

// RegisterPlugin registers the plugin called name in the go-plugins manager
// as a provider of the same name. Requests are executed through the manager.
func (m *SecureElementManager) RegisterPlugin(name string) error {
	if m.pluginManager == nil {
		return fmt.Errorf("%w: no plugin manager for plugin %s", ErrSEProviderNotFound, name)
	}
	return m.RegisterProvider(name, newPluginProvider(m.pluginManager, name, m.config.OperationTimeout))
}

// Provider returns the named provider, or the default one for "".
func (m *SecureElementManager) Provider(name string) (SecureElementProvider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if name == "" {
		name = m.defaultProvider
	}
	p, ok := m.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: provider %s", ErrSEProviderNotFound, name)
	}
	if !p.IsHealthy() {
		return nil, fmt.Errorf("%w: provider %s", ErrSEHealthCheck, name)
	}
	return p, nil
}

// Close shuts down every provider.
func (m *SecureElementManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, p := range m.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close secure element provider %s: %w", name, err))
		}
	}
	clear(m.providers)
	m.defaultProvider = ""

	if len(errs) > 0 {
		return fmt.Errorf("failed to close some secure element providers: %v", errs)
	}
	return nil
}

func (m *SecureElementManager) opContext() (context.Context, context.CancelFunc) {
	if t := m.config.OperationTimeout; t > 0 {
		return context.WithTimeout(context.Background(), t)
	}
	return context.WithCancel(context.Background())
}

// SecureElement is the backend registered for HandlerSecureElement.
type SecureElement struct {
	mgr *SecureElementManager
}

// NewSecureElement creates a backend routed through mgr's default provider.
func NewSecureElement(mgr *SecureElementManager) *SecureElement {
	return &SecureElement{mgr: mgr}
}

func (s *SecureElement) Handler() HandlerType { return HandlerSecureElement }
func (s *SecureElement) Name() string         { return "secure-element" }

// Generate fills out from the element RNG. The nonce is not forwarded.
func (s *SecureElement) Generate(out, nonce []byte) error {
	p, err := s.mgr.Provider("")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	ctx, cancel := s.mgr.opContext()
	defer cancel()

	data, err := p.GenerateRandom(ctx, len(out))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEntropy, err)
	}
	defer Zeroize(data)
	if len(data) != len(out) {
		return fmt.Errorf("%w: provider returned %d bytes", ErrSEOperationFailed, len(data))
	}
	copy(out, data)
	return nil
}

// seDigest buffers the message because the element digests in one call.
type seDigest struct {
	s    *SecureElement
	algo HashAlgo
	buf  []byte
}

func (d *seDigest) Write(p []byte) error {
	d.buf = append(d.buf, p...)
	return nil
}

func (d *seDigest) Sum(out []byte) error {
	defer Zeroize(d.buf)
	p, err := d.s.mgr.Provider("")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	ctx, cancel := d.s.mgr.opContext()
	defer cancel()

	sum, err := p.Digest(ctx, d.algo, d.buf)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSEOperationFailed, err)
	}
	if len(sum) < len(out) {
		return fmt.Errorf("%w: digest is %d bytes", ErrBackendArgument, len(sum))
	}
	copy(out, sum)
	return nil
}

// NewDigest supports the SHA-1 and SHA-2 algorithms PKCS#11 tokens implement.
func (s *SecureElement) NewDigest(algo HashAlgo, key []byte, size int) (DigestState, error) {
	switch algo {
	case HashSHA1, HashSHA224, HashSHA256, HashSHA384, HashSHA512:
	default:
		return nil, fmt.Errorf("%w: %s on secure element", ErrUnsupported, algo)
	}
	if len(key) > 0 {
		return nil, fmt.Errorf("%w: digest is not keyed", ErrBackendArgument)
	}
	return &seDigest{s: s, algo: algo}, nil
}

// SecureElementPlugin hosts a SecureElementProvider as a go-plugins plugin,
// answering SERequests with SEResponses. Provider failures are reported in
// the response rather than as errors so the manager does not count them
// against the plugin's circuit breaker.
type SecureElementPlugin struct {
	provider SecureElementProvider
	version  string
}

// NewSecureElementPlugin wraps provider. The plugin is named after it.
func NewSecureElementPlugin(provider SecureElementProvider, version string) *SecureElementPlugin {
	return &SecureElementPlugin{provider: provider, version: version}
}

// Info describes the plugin to the manager.
func (p *SecureElementPlugin) Info() goplugins.PluginInfo {
	return goplugins.PluginInfo{
		Name:         p.provider.Name(),
		Version:      p.version,
		Description:  "secure element provider",
		Capabilities: []string{SEOpInitialize, SEOpRandom, SEOpDigest},
	}
}

// Execute runs one request against the provider.
func (p *SecureElementPlugin) Execute(ctx context.Context, _ goplugins.ExecutionContext, req SERequest) (SEResponse, error) {
	var (
		data []byte
		err  error
	)
	switch req.Operation {
	case SEOpInitialize:
		err = p.provider.Initialize(ctx, req.Config)
	case SEOpRandom:
		data, err = p.provider.GenerateRandom(ctx, req.Length)
	case SEOpDigest:
		data, err = p.provider.Digest(ctx, req.Algorithm, req.Data)
	default:
		err = fmt.Errorf("unknown operation %q", req.Operation)
	}
	if err != nil {
		return SEResponse{Error: err.Error()}, nil
	}
	return SEResponse{Success: true, Data: data}, nil
}

// Health maps IsHealthy onto the plugin status.
func (p *SecureElementPlugin) Health(_ context.Context) goplugins.HealthStatus {
	if p.provider.IsHealthy() {
		return goplugins.HealthStatus{Status: goplugins.StatusHealthy}
	}
	return goplugins.HealthStatus{Status: goplugins.StatusUnhealthy, Message: "provider reports unhealthy"}
}

// Close closes the provider.
func (p *SecureElementPlugin) Close() error { return p.provider.Close() }

// pluginProvider is the SecureElementProvider view of a plugin registered
// with a go-plugins manager. The manager owns the plugin, so Close is a no-op.
type pluginProvider struct {
	pm      *goplugins.Manager[SERequest, SEResponse]
	name    string
	timeout time.Duration
	seq     atomic.Uint64
}

func newPluginProvider(pm *goplugins.Manager[SERequest, SEResponse], name string, timeout time.Duration) *pluginProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &pluginProvider{pm: pm, name: name, timeout: timeout}
}

func (p *pluginProvider) Name() string { return p.name }
func (p *pluginProvider) Close() error { return nil }

func (p *pluginProvider) Initialize(ctx context.Context, config map[string]interface{}) error {
	_, err := p.execute(ctx, SERequest{Operation: SEOpInitialize, Config: config})
	return err
}

func (p *pluginProvider) IsHealthy() bool {
	plugin, err := p.pm.GetPlugin(p.name)
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	return plugin.Health(ctx).Status == goplugins.StatusHealthy
}

func (p *pluginProvider) GenerateRandom(ctx context.Context, length int) ([]byte, error) {
	return p.execute(ctx, SERequest{Operation: SEOpRandom, Length: length})
}

func (p *pluginProvider) Digest(ctx context.Context, algo HashAlgo, data []byte) ([]byte, error) {
	return p.execute(ctx, SERequest{Operation: SEOpDigest, Algorithm: algo, Data: data})
}

// execute runs req once; the manager's retries are for transport timeouts,
// and a secure element operation is not safe to repeat blindly.
func (p *pluginProvider) execute(ctx context.Context, req SERequest) ([]byte, error) {
	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	execCtx := goplugins.ExecutionContext{
		RequestID: p.name + "-" + req.Operation + "-" + strconv.FormatUint(p.seq.Add(1), 10),
		Timeout:   timeout,
	}
	resp, err := p.pm.ExecuteWithOptions(ctx, p.name, execCtx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSEOperationFailed, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrSEOperationFailed, resp.Error)
	}
	return resp.Data, nil
}
