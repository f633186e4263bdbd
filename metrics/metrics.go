package metrics

import (
	"errors"
	"regexp"
	"sync"
	"time"

	proto "github.com/tarmac-project/protobuf-go/sdk/metrics"
	sdk "github.com/tarmac-project/riak-sdk"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

const (
	capabilityName = "metrics"
	fnCounter      = "counter"
	fnGauge        = "gauge"
	fnHistogram    = "histogram"
	actionInc      = "inc"
	actionDec      = "dec"
)

var (
	// ErrInvalidMetricName indicates a metric name that does not match the supported format.
	ErrInvalidMetricName = errors.New("metric name is invalid")

	// ErrMetricTypeConflict indicates a name already registered as a different metric type.
	ErrMetricTypeConflict = errors.New("metric name already registered with another type")

	// isMetricNameValid mirrors the host's callback validation.
	isMetricNameValid = regexp.MustCompile(`^[a-zA-Z0-9_:][a-zA-Z0-9_:]*$`)
)

// HostCall defines the waPC host function signature used by metrics operations.
type HostCall func(string, string, string, []byte) ([]byte, error)

// Client defines the metrics capability interface.
type Client interface {
	// NewCounter returns the counter registered under name, creating it on first use.
	NewCounter(name string) (*Counter, error)

	// NewGauge returns the gauge registered under name, creating it on first use.
	NewGauge(name string) (*Gauge, error)

	// NewHistogram returns the histogram registered under name, creating it on first use.
	NewHistogram(name string) (*Histogram, error)
}

// Config controls how a Client instance interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig sdk.RuntimeConfig

	// HostCall overrides the waPC host function used for metrics operations.
	HostCall HostCall
}

// HostMetrics is the metrics capability client implementation.
type HostMetrics struct {
	runtime  sdk.RuntimeConfig
	hostCall HostCall

	mu      sync.Mutex
	handles map[string]any
}

// Ensure HostMetrics satisfies the Client interface at compile time.
var _ Client = (*HostMetrics)(nil)

type marshaler interface {
	MarshalVT() ([]byte, error)
}

// handle carries what every metric type needs to reach the host.
type handle struct {
	name      string
	namespace string
	hostCall  HostCall
}

// Name returns the metric name.
func (h handle) Name() string { return h.name }

func (h handle) emit(fn string, msg marshaler) {
	payload, err := msg.MarshalVT()
	if err != nil {
		return
	}
	_, _ = h.hostCall(h.namespace, capabilityName, fn, payload)
}

// Counter is a named counter metric handle.
type Counter struct{ handle }

// Gauge is a named gauge metric handle.
type Gauge struct{ handle }

// Histogram is a named histogram metric handle.
type Histogram struct{ handle }

// New creates a metrics client with namespace defaults and optional host-call override.
func New(config Config) (*HostMetrics, error) {
	runtime := config.SDKConfig
	if runtime.Namespace == "" {
		runtime.Namespace = sdk.DefaultNamespace
	}

	hostCall := config.HostCall
	if hostCall == nil {
		hostCall = wapc.HostCall
	}

	return &HostMetrics{runtime: runtime, hostCall: hostCall, handles: make(map[string]any)}, nil
}

// lookup returns the cached handle for name or stores the one built by mk.
func lookup[T any](c *HostMetrics, name string, mk func(handle) *T) (*T, error) {
	if !isMetricNameValid.MatchString(name) {
		return nil, ErrInvalidMetricName
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.handles[name]; ok {
		typed, ok := existing.(*T)
		if !ok {
			return nil, ErrMetricTypeConflict
		}
		return typed, nil
	}

	m := mk(handle{name: name, namespace: c.runtime.Namespace, hostCall: c.hostCall})
	c.handles[name] = m
	return m, nil
}

// NewCounter returns the counter registered under name, creating it on first use.
func (c *HostMetrics) NewCounter(name string) (*Counter, error) {
	return lookup(c, name, func(h handle) *Counter { return &Counter{h} })
}

// NewGauge returns the gauge registered under name, creating it on first use.
func (c *HostMetrics) NewGauge(name string) (*Gauge, error) {
	return lookup(c, name, func(h handle) *Gauge { return &Gauge{h} })
}

// NewHistogram returns the histogram registered under name, creating it on first use.
func (c *HostMetrics) NewHistogram(name string) (*Histogram, error) {
	return lookup(c, name, func(h handle) *Histogram { return &Histogram{h} })
}

// Inc increments the counter by one.
func (c *Counter) Inc() {
	c.emit(fnCounter, &proto.MetricsCounter{Name: c.name})
}

// Inc increments the gauge by one.
func (g *Gauge) Inc() {
	g.emit(fnGauge, &proto.MetricsGauge{Name: g.name, Action: actionInc})
}

// Dec decrements the gauge by one.
func (g *Gauge) Dec() {
	g.emit(fnGauge, &proto.MetricsGauge{Name: g.name, Action: actionDec})
}

// Observe records a value for the histogram.
func (h *Histogram) Observe(value float64) {
	h.emit(fnHistogram, &proto.MetricsHistogram{Name: h.name, Value: value})
}

// ObserveSince records the seconds elapsed since start.
func (h *Histogram) ObserveSince(start time.Time) {
	h.Observe(time.Since(start).Seconds())
}
