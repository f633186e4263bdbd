package sdk

import (
	wapc "github.com/wapc/wapc-guest-tinygo"
)

// DefaultNamespace is used when no explicit namespace is provided.
const DefaultNamespace = "tarmac"

// HandlerName is the waPC function name the Tarmac host invokes.
const HandlerName = "handler"

// Handler processes a function invocation payload.
type Handler func([]byte) ([]byte, error)

// Config provides configuration options for SDK initialization.
type Config struct {
	// Namespace scopes every host callback made by clients created from this SDK.
	// If empty, DefaultNamespace is used.
	Namespace string

	// Handler is registered as the WebAssembly entry point.
	Handler Handler

	// Register overrides the waPC registration hook. Tests use it to capture
	// the handler; when nil, wapc.RegisterFunction is used.
	Register func(name string, fn wapc.Function)
}

// RuntimeConfig carries configuration shared by the capability clients.
type RuntimeConfig struct {
	// Namespace is the function namespace used to scope host interactions.
	Namespace string
}

// SDK represents the initialized runtime with a registered handler.
type SDK struct {
	runtime RuntimeConfig
	handler Handler
}

// New initializes the SDK and registers the handler with waPC.
func New(config Config) (*SDK, error) {
	if config.Handler == nil {
		return nil, ErrHandlerNil
	}

	cfg := RuntimeConfig{Namespace: DefaultNamespace}
	if config.Namespace != "" {
		cfg.Namespace = config.Namespace
	}

	register := config.Register
	if register == nil {
		register = wapc.RegisterFunction
	}

	s := &SDK{
		runtime: cfg,
		handler: config.Handler,
	}
	register(HandlerName, wapc.Function(s.handler))

	return s, nil
}

// Config returns the current runtime configuration snapshot.
func (s *SDK) Config() RuntimeConfig { return s.runtime }
