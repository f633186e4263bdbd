package riak

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	sdk "github.com/tarmac-project/riak-sdk"
	"github.com/tarmac-project/riak-sdk/httpclient"
	"github.com/tarmac-project/riak-sdk/logging"
	"github.com/tarmac-project/riak-sdk/metrics"
)

const (
	metricErrors   = "riak_request_errors_total"
	metricDuration = "riak_request_duration_seconds"
	metricInFlight = "riak_requests_in_flight"
)

// Config configures a Client.
type Config struct {
	// SDKConfig provides the runtime namespace for host calls.
	SDKConfig sdk.RuntimeConfig

	// DSN is the Riak HTTP base address, e.g. "http://riak:8098". Trailing
	// slashes are removed.
	DSN string

	// Routes overrides the route table. Nil selects DefaultRoutes. A non-nil
	// table is used as given and is not merged with the defaults.
	Routes Routes

	// Strict fails resolution when a template placeholder is not supplied.
	// By default unresolved placeholders are left in the path.
	Strict bool

	// EscapePathSegments percent-encodes substituted values and link
	// components. Off by default; values are spliced into paths as given.
	EscapePathSegments bool

	// ClientID is sent as X-Riak-ClientId on store, delete and counter
	// updates when set. See NewClientID.
	ClientID string

	// HostCall overrides the waPC host function used by the default HTTP,
	// logging and metrics clients.
	HostCall func(string, string, string, []byte) ([]byte, error)

	// HTTPClient overrides the HTTP executor.
	HTTPClient httpclient.Client

	// Logger overrides the logger.
	Logger logging.Client

	// Metrics overrides the metrics client.
	Metrics metrics.Client
}

// Client issues Riak HTTP API operations. It holds no mutable state after New
// and is safe for concurrent use when its HTTPClient is.
type Client struct {
	cfg    Config
	dsn    string
	routes Routes

	http    httpclient.Client
	log     logging.Client
	metrics metrics.Client

	errors   *metrics.Counter
	duration *metrics.Histogram
	inFlight *metrics.Gauge
}

// New validates the configuration and builds a Client.
func New(cfg Config) (*Client, error) {
	if cfg.SDKConfig.Namespace == "" {
		cfg.SDKConfig.Namespace = sdk.DefaultNamespace
	}

	dsn, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg, dsn: dsn}

	if cfg.Routes == nil {
		c.routes = DefaultRoutes()
	} else {
		c.routes = cfg.Routes.clone()
	}

	c.http = cfg.HTTPClient
	if c.http == nil {
		c.http, err = httpclient.New(httpclient.Config{SDKConfig: cfg.SDKConfig, HostCall: cfg.HostCall})
		if err != nil {
			return nil, err
		}
	}

	c.log = cfg.Logger
	if c.log == nil {
		c.log, err = logging.New(logging.Config{SDKConfig: cfg.SDKConfig, HostCall: cfg.HostCall})
		if err != nil {
			return nil, err
		}
	}

	c.metrics = cfg.Metrics
	if c.metrics == nil {
		c.metrics, err = metrics.New(metrics.Config{SDKConfig: cfg.SDKConfig, HostCall: cfg.HostCall})
		if err != nil {
			return nil, err
		}
	}

	if c.errors, err = c.metrics.NewCounter(metricErrors); err != nil {
		return nil, err
	}
	if c.duration, err = c.metrics.NewHistogram(metricDuration); err != nil {
		return nil, err
	}
	if c.inFlight, err = c.metrics.NewGauge(metricInFlight); err != nil {
		return nil, err
	}

	return c, nil
}

func normalizeDSN(dsn string) (string, error) {
	dsn = strings.TrimRight(dsn, "/")
	u, err := url.Parse(dsn)
	if err != nil {
		return "", errors.Join(ErrInvalidDSN, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q must be an absolute URL with a host", ErrInvalidDSN, dsn)
	}
	return dsn, nil
}

// DSN returns the normalized base address.
func (c *Client) DSN() string {
	return c.dsn
}

// Do executes op and returns the Riak response. Non-2xx statuses are returned
// as responses, not errors. Link-walking responses are split into Parts.
func (c *Client) Do(op Operation) (*httpclient.Response, error) {
	d, err := Describe(op)
	if err != nil {
		return nil, err
	}
	return c.execute(d)
}

func (c *Client) execute(d Descriptor) (*httpclient.Response, error) {
	start := time.Now()
	c.countRequest(d.Name)

	rawURL, err := c.resolve(d.Route, d.Substitutions, d.Links)
	if err != nil {
		return nil, c.fail(d, err)
	}

	var body io.Reader
	if d.Body != nil {
		body = bytes.NewReader(d.Body)
	}
	req, err := httpclient.NewRequest(d.Method, rawURL, body)
	if err != nil {
		return nil, c.fail(d, err)
	}
	for k, v := range d.Header {
		req.Header[k] = append([]string(nil), v...)
	}
	if d.SendClientID && c.cfg.ClientID != "" {
		req.Header.Set(HeaderClientID, c.cfg.ClientID)
	}
	for k, v := range d.Query {
		req.Query[k] = append([]string(nil), v...)
	}

	c.log.Debug("%s request: %s %s", d.Name, d.Method, req.FullURL())
	if len(d.Body) > 0 {
		c.log.Trace("%s body: %d bytes", d.Name, len(d.Body))
	}

	c.inFlight.Inc()
	resp, err := c.http.Do(req)
	c.inFlight.Dec()
	c.duration.ObserveSince(start)
	if err != nil {
		return nil, c.fail(d, err)
	}
	c.log.Debug("%s response: %d", d.Name, resp.StatusCode)

	if d.Multipart {
		decoded, err := DecodeMultipart(resp)
		if err != nil {
			return nil, c.fail(d, err)
		}
		c.log.Debug("%s decoded %d parts", d.Name, len(decoded.Parts))
		resp = decoded
	}

	return resp, nil
}

func (c *Client) fail(d Descriptor, err error) error {
	c.errors.Inc()
	c.log.Error("%s failed: %v", d.Name, err)
	return err
}

func (c *Client) countRequest(name string) {
	counter, err := c.metrics.NewCounter("riak_" + snakeCase(name) + "_requests_total")
	if err != nil {
		return
	}
	counter.Inc()
}

// snakeCase turns an operation name such as "GetBucketProperties" into
// "get_bucket_properties".
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// StoreObject stores content under key, or under a server-assigned key when
// key is empty.
func (c *Client) StoreObject(bucket, key string, content []byte, query url.Values, header http.Header) (*httpclient.Response, error) {
	return c.Do(StoreObjectOp{Bucket: bucket, Key: key, Content: content, Query: query, Header: header})
}

// GetObject fetches an object.
func (c *Client) GetObject(bucket, key string, query url.Values, header http.Header) (*httpclient.Response, error) {
	return c.Do(FetchObjectOp{Bucket: bucket, Key: key, Query: query, Header: header})
}

// DeleteObject deletes an object.
func (c *Client) DeleteObject(bucket, key string, query url.Values) (*httpclient.Response, error) {
	return c.Do(DeleteObjectOp{Bucket: bucket, Key: key, Query: query})
}

// UpdateCounter adds amount to a counter.
func (c *Client) UpdateCounter(bucket, key string, amount int64) (*httpclient.Response, error) {
	return c.Do(UpdateCounterOp{Bucket: bucket, Key: key, Amount: amount})
}

// GetCounter reads a counter.
func (c *Client) GetCounter(bucket, key string) (*httpclient.Response, error) {
	return c.Do(GetCounterOp{Bucket: bucket, Key: key})
}

// ListBuckets lists all buckets.
func (c *Client) ListBuckets() (*httpclient.Response, error) {
	return c.Do(ListBucketsOp{})
}

// ListBucketKeys lists the keys in bucket.
func (c *Client) ListBucketKeys(bucket string, stream bool) (*httpclient.Response, error) {
	return c.Do(ListBucketKeysOp{Bucket: bucket, Stream: stream})
}

// ResetBucketProperties resets bucket properties to their defaults.
func (c *Client) ResetBucketProperties(bucket string) (*httpclient.Response, error) {
	return c.Do(ResetBucketPropertiesOp{Bucket: bucket})
}

// SetBucketProperties replaces bucket properties.
func (c *Client) SetBucketProperties(bucket string, properties map[string]any) (*httpclient.Response, error) {
	return c.Do(SetBucketPropertiesOp{Bucket: bucket, Properties: properties})
}

// GetBucketProperties reads bucket properties.
func (c *Client) GetBucketProperties(bucket string) (*httpclient.Response, error) {
	return c.Do(GetBucketPropertiesOp{Bucket: bucket})
}

// QueryIndexes runs a secondary index query. An empty end is a point query.
func (c *Client) QueryIndexes(bucket, index, value, end string, query url.Values) (*httpclient.Response, error) {
	return c.Do(QueryIndexOp{Bucket: bucket, Index: index, Value: value, End: end, Query: query})
}

// QueryMapReduce submits a JSON map-reduce job.
func (c *Client) QueryMapReduce(query string) (*httpclient.Response, error) {
	return c.Do(MapReduceOp{Query: query})
}

// QueryLinks walks links from an object and returns the matches as Parts.
func (c *Client) QueryLinks(bucket, key string, links ...LinkSpec) (*httpclient.Response, error) {
	return c.Do(QueryLinksOp{Bucket: bucket, Key: key, Links: links})
}
