package riak

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

const (
	// HeaderClientID carries Config.ClientID on write requests.
	HeaderClientID = "X-Riak-ClientId"

	contentTypeJSON           = "application/json"
	contentTypeMultipartMixed = "multipart/mixed"
)

// Operation is one Riak HTTP API call. The set of operations is closed; use
// the *Op types in this package.
type Operation interface {
	describe() (Descriptor, error)
}

// Descriptor is the fully specified request an Operation maps to.
type Descriptor struct {
	// Name identifies the operation in logs and metrics, e.g. "StoreObject".
	Name string
	// Route selects the path template.
	Route Route
	// Substitutions fill the template placeholders.
	Substitutions []Substitution
	// Links are appended as path segments for link walking.
	Links []LinkSpec
	// Method is the HTTP method.
	Method string
	// Header holds caller headers with forced headers applied on top.
	Header http.Header
	// Query is merged into the URL by the executor.
	Query url.Values
	// Body is sent unchanged. Nil means no body.
	Body []byte
	// Multipart marks responses that are split into parts.
	Multipart bool
	// SendClientID attaches Config.ClientID when one is configured.
	SendClientID bool
}

// Describe returns the request op would issue.
func Describe(op Operation) (Descriptor, error) {
	if op == nil {
		return Descriptor{}, ErrInvalidOperation
	}
	return op.describe()
}

func objectSubs(bucket, key string) []Substitution {
	return []Substitution{
		{Placeholder: PlaceholderBucket, Value: bucket},
		{Placeholder: PlaceholderKey, Value: key},
	}
}

func bucketSubs(bucket string) []Substitution {
	return []Substitution{{Placeholder: PlaceholderBucket, Value: bucket}}
}

// cloneHeader copies h with canonical keys so forced headers replace caller
// values regardless of how the caller spelled them.
func cloneHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, values := range h {
		for _, v := range values {
			out.Add(k, v)
		}
	}
	return out
}

func cloneQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// StoreObjectOp stores Content under Key. An empty Key lets Riak assign one.
type StoreObjectOp struct {
	Bucket      string
	Key         string
	Content     []byte
	ContentType string
	Query       url.Values
	Header      http.Header
}

func (o StoreObjectOp) describe() (Descriptor, error) {
	method := http.MethodPut
	if o.Key == "" {
		method = http.MethodPost
	}

	d := Descriptor{
		Name:          "StoreObject",
		Route:         RouteObjectKey,
		Substitutions: objectSubs(o.Bucket, o.Key),
		Method:        method,
		Header:        cloneHeader(o.Header),
		Query:         cloneQuery(o.Query),
		Body:          o.Content,
		SendClientID:  true,
	}
	if o.ContentType != "" {
		d.Header.Set("Content-Type", o.ContentType)
	}
	return d, nil
}

// FetchObjectOp reads an object. Conditional request headers and query
// parameters such as r or vtag are forwarded verbatim.
type FetchObjectOp struct {
	Bucket string
	Key    string
	Query  url.Values
	Header http.Header
}

func (o FetchObjectOp) describe() (Descriptor, error) {
	return Descriptor{
		Name:          "GetObject",
		Route:         RouteObjectKey,
		Substitutions: objectSubs(o.Bucket, o.Key),
		Method:        http.MethodGet,
		Header:        cloneHeader(o.Header),
		Query:         cloneQuery(o.Query),
	}, nil
}

// DeleteObjectOp removes an object.
type DeleteObjectOp struct {
	Bucket string
	Key    string
	Query  url.Values
}

func (o DeleteObjectOp) describe() (Descriptor, error) {
	return Descriptor{
		Name:          "DeleteObject",
		Route:         RouteObjectKey,
		Substitutions: objectSubs(o.Bucket, o.Key),
		Method:        http.MethodDelete,
		Header:        make(http.Header),
		Query:         cloneQuery(o.Query),
		SendClientID:  true,
	}, nil
}

// UpdateCounterOp adds Amount, which may be negative, to a counter.
type UpdateCounterOp struct {
	Bucket string
	Key    string
	Amount int64
}

func (o UpdateCounterOp) describe() (Descriptor, error) {
	d := Descriptor{
		Name:          "UpdateCounter",
		Route:         RouteBucketCounters,
		Substitutions: objectSubs(o.Bucket, o.Key),
		Method:        http.MethodPost,
		Header:        make(http.Header),
		Query:         make(url.Values),
		Body:          []byte(strconv.FormatInt(o.Amount, 10)),
		SendClientID:  true,
	}
	d.Header.Set("Content-Type", contentTypeJSON)
	return d, nil
}

// GetCounterOp reads a counter value.
type GetCounterOp struct {
	Bucket string
	Key    string
}

func (o GetCounterOp) describe() (Descriptor, error) {
	return Descriptor{
		Name:          "GetCounter",
		Route:         RouteBucketCounters,
		Substitutions: objectSubs(o.Bucket, o.Key),
		Method:        http.MethodGet,
		Header:        make(http.Header),
		Query:         make(url.Values),
	}, nil
}

// ListBucketsOp enumerates every bucket.
type ListBucketsOp struct{}

func (ListBucketsOp) describe() (Descriptor, error) {
	return Descriptor{
		Name:   "ListBuckets",
		Route:  RouteListBuckets,
		Method: http.MethodGet,
		Header: make(http.Header),
		Query:  make(url.Values),
	}, nil
}

// ListBucketKeysOp enumerates the keys of a bucket. Stream asks Riak for a
// chunked listing; the response is still returned whole.
type ListBucketKeysOp struct {
	Bucket string
	Stream bool
}

func (o ListBucketKeysOp) describe() (Descriptor, error) {
	mode := "true"
	if o.Stream {
		mode = "stream"
	}
	return Descriptor{
		Name:  "ListBucketKeys",
		Route: RouteListBucketKeys,
		Substitutions: []Substitution{
			{Placeholder: PlaceholderBucket, Value: o.Bucket},
			{Placeholder: PlaceholderType, Value: mode},
		},
		Method: http.MethodGet,
		Header: make(http.Header),
		Query:  make(url.Values),
	}, nil
}

// ResetBucketPropertiesOp restores a bucket's default properties.
type ResetBucketPropertiesOp struct {
	Bucket string
}

func (o ResetBucketPropertiesOp) describe() (Descriptor, error) {
	return Descriptor{
		Name:          "ResetBucketProperties",
		Route:         RouteBucketProperties,
		Substitutions: bucketSubs(o.Bucket),
		Method:        http.MethodDelete,
		Header:        make(http.Header),
		Query:         make(url.Values),
	}, nil
}

// SetBucketPropertiesOp replaces bucket properties. Properties is encoded as
// given, so callers supply the {"props": {...}} envelope Riak expects.
type SetBucketPropertiesOp struct {
	Bucket     string
	Properties map[string]any
}

func (o SetBucketPropertiesOp) describe() (Descriptor, error) {
	props := o.Properties
	if props == nil {
		props = map[string]any{}
	}
	body, err := json.Marshal(props)
	if err != nil {
		return Descriptor{}, errors.Join(ErrEncodeProperties, err)
	}

	d := Descriptor{
		Name:          "SetBucketProperties",
		Route:         RouteBucketProperties,
		Substitutions: bucketSubs(o.Bucket),
		Method:        http.MethodPut,
		Header:        make(http.Header),
		Query:         make(url.Values),
		Body:          body,
	}
	d.Header.Set("Content-Type", contentTypeJSON)
	return d, nil
}

// GetBucketPropertiesOp reads bucket properties.
type GetBucketPropertiesOp struct {
	Bucket string
}

func (o GetBucketPropertiesOp) describe() (Descriptor, error) {
	return Descriptor{
		Name:          "GetBucketProperties",
		Route:         RouteBucketProperties,
		Substitutions: bucketSubs(o.Bucket),
		Method:        http.MethodGet,
		Header:        make(http.Header),
		Query:         make(url.Values),
	}, nil
}

// QueryIndexOp queries a secondary index. An empty End is a point query on
// Value; otherwise the range Value..End is returned.
type QueryIndexOp struct {
	Bucket string
	Index  string
	Value  string
	End    string
	Query  url.Values
}

func (o QueryIndexOp) describe() (Descriptor, error) {
	return Descriptor{
		Name:  "QueryIndexes",
		Route: RouteSecondaryIndexes,
		Substitutions: []Substitution{
			{Placeholder: PlaceholderBucket, Value: o.Bucket},
			{Placeholder: PlaceholderIndexName, Value: o.Index},
			{Placeholder: PlaceholderIndexValue, Value: o.Value},
			{Placeholder: PlaceholderIndexEnd, Value: o.End},
		},
		Method: http.MethodGet,
		Header: make(http.Header),
		Query:  cloneQuery(o.Query),
	}, nil
}

// MapReduceOp submits an already encoded JSON map-reduce job.
type MapReduceOp struct {
	Query string
}

func (o MapReduceOp) describe() (Descriptor, error) {
	d := Descriptor{
		Name:   "QueryMapReduce",
		Route:  RouteMapReduce,
		Method: http.MethodPost,
		Header: make(http.Header),
		Query:  make(url.Values),
		Body:   []byte(o.Query),
	}
	d.Header.Set("Content-Type", contentTypeJSON)
	return d, nil
}

// QueryLinksOp walks links starting at an object, one phase per LinkSpec.
type QueryLinksOp struct {
	Bucket string
	Key    string
	Links  []LinkSpec
}

func (o QueryLinksOp) describe() (Descriptor, error) {
	d := Descriptor{
		Name:          "QueryLinks",
		Route:         RouteLinkWalking,
		Substitutions: objectSubs(o.Bucket, o.Key),
		Links:         append([]LinkSpec(nil), o.Links...),
		Method:        http.MethodGet,
		Header:        make(http.Header),
		Query:         make(url.Values),
		Multipart:     true,
	}
	d.Header.Set("Content-Type", contentTypeMultipartMixed)
	return d, nil
}
