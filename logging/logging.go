package logging

import (
	"fmt"

	sdk "github.com/tarmac-project/riak-sdk"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

const capabilityName = "logging"

// Level orders log severities. The zero value forwards everything.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the host function name for the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "Trace"
	case LevelDebug:
		return "Debug"
	case LevelInfo:
		return "Info"
	case LevelWarn:
		return "Warn"
	case LevelError:
		return "Error"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Client exposes formatted helpers for sending log entries to the host runtime.
type Client interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Debug(format string, args ...any)
	Trace(format string, args ...any)
}

// Config controls how a Client instance interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig sdk.RuntimeConfig

	// HostCall overrides the waPC host function used for logging operations.
	HostCall func(string, string, string, []byte) ([]byte, error)

	// Level is the lowest severity forwarded to the host.
	Level Level

	// Prefix is prepended to every message.
	Prefix string
}

// client implements Client using the configured host call entrypoint.
type client struct {
	runtime  sdk.RuntimeConfig
	hostCall func(string, string, string, []byte) ([]byte, error)
	level    Level
	prefix   string
}

// New creates a Client that emits logs through the configured host capability.
func New(cfg Config) (Client, error) {
	runtimeCfg := cfg.SDKConfig
	if runtimeCfg.Namespace == "" {
		runtimeCfg.Namespace = sdk.DefaultNamespace
	}

	hostCall := cfg.HostCall
	if hostCall == nil {
		hostCall = wapc.HostCall
	}

	return &client{
		runtime:  runtimeCfg,
		hostCall: hostCall,
		level:    cfg.Level,
		prefix:   cfg.Prefix,
	}, nil
}

func (c *client) Info(format string, args ...any)  { c.log(LevelInfo, format, args) }
func (c *client) Warn(format string, args ...any)  { c.log(LevelWarn, format, args) }
func (c *client) Error(format string, args ...any) { c.log(LevelError, format, args) }
func (c *client) Debug(format string, args ...any) { c.log(LevelDebug, format, args) }
func (c *client) Trace(format string, args ...any) { c.log(LevelTrace, format, args) }

func (c *client) log(level Level, format string, args []any) {
	if level < c.level {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	_, _ = c.hostCall(c.runtime.Namespace, capabilityName, level.String(), []byte(c.prefix+msg))
}
