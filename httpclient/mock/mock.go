package mock

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/tarmac-project/riak-sdk/httpclient"
)

// MockClient implements httpclient.Client with configurable responses and
// call recording for tests.
//
// revive:disable:exported // Name mirrors package for discoverability; stutter is acceptable here.
type MockClient struct {
	// responses maps "METHOD URL" keys to predefined responses.
	responses map[string]*Response

	// DefaultResponse is returned when no method/URL-specific response exists.
	DefaultResponse *Response

	// Calls records each request observed by the mock client.
	Calls []Call
}

// revive:enable:exported

// Response describes a synthetic HTTP response used by the mock.
type Response struct {
	// StatusCode is the HTTP status code to return.
	StatusCode int
	// Status is the HTTP status text to return. Empty falls back to
	// http.StatusText(StatusCode).
	Status string
	// Body is the raw payload returned to callers.
	Body []byte
	// Header holds headers to include in the response.
	Header http.Header
	// Error, when set, is returned instead of a successful response.
	Error error
}

// Call captures a single client operation issued through the mock.
type Call struct {
	// Method is the HTTP method used.
	Method string
	// URL is the requested URL with any Request.Query merged in.
	URL string
	// Body contains the request body, if provided.
	Body []byte
	// Header holds request headers passed by the caller.
	Header http.Header
}

// Config controls construction of a MockClient.
type Config struct {
	// DefaultResponse is used when no specific response has been configured.
	DefaultResponse *Response
}

// New creates a new mock HTTP client.
func New(config Config) *MockClient {
	defaultResp := config.DefaultResponse
	if defaultResp == nil {
		defaultResp = &Response{
			StatusCode: http.StatusOK,
			Status:     "OK",
			Header:     make(http.Header),
		}
	}
	if defaultResp.Header == nil {
		defaultResp.Header = make(http.Header)
	}

	return &MockClient{
		responses:       make(map[string]*Response),
		DefaultResponse: defaultResp,
		Calls:           []Call{},
	}
}

// LastCall returns the most recent call, or false when nothing was recorded.
func (m *MockClient) LastCall() (Call, bool) {
	if len(m.Calls) == 0 {
		return Call{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}

func (m *MockClient) responseFor(method, url string) *Response {
	if resp, ok := m.responses[method+" "+url]; ok {
		return resp
	}
	return m.DefaultResponse
}

// toClientResponse converts a mock Response into an httpclient.Response with copied headers.
func toClientResponse(r *Response) *httpclient.Response {
	resp := &httpclient.Response{
		StatusCode: r.StatusCode,
		Status:     r.Status,
		Header:     make(http.Header),
	}
	if resp.Status == "" {
		resp.Status = http.StatusText(r.StatusCode)
	}
	for k, values := range r.Header {
		for _, v := range values {
			resp.Header.Add(k, v)
		}
	}
	if len(r.Body) > 0 {
		resp.Body = io.NopCloser(bytes.NewReader(r.Body))
	}
	return resp
}

func readAll(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return b, nil
}

// On starts configuration of a response for a given method and URL.
// It returns a builder used to define the returned response or error.
func (m *MockClient) On(method, url string) *ResponseBuilder {
	return &ResponseBuilder{
		client: m,
		key:    method + " " + url,
	}
}

// Get records and returns the configured response for a GET request.
func (m *MockClient) Get(url string) (*httpclient.Response, error) {
	return m.shortcut(http.MethodGet, url, "", nil)
}

// Post records and returns the configured response for a POST request.
func (m *MockClient) Post(url, contentType string, body io.Reader) (*httpclient.Response, error) {
	return m.shortcut(http.MethodPost, url, contentType, body)
}

// Put records and returns the configured response for a PUT request.
func (m *MockClient) Put(url, contentType string, body io.Reader) (*httpclient.Response, error) {
	return m.shortcut(http.MethodPut, url, contentType, body)
}

// Delete records and returns the configured response for a DELETE request.
func (m *MockClient) Delete(url string) (*httpclient.Response, error) {
	return m.shortcut(http.MethodDelete, url, "", nil)
}

func (m *MockClient) shortcut(method, url, contentType string, body io.Reader) (*httpclient.Response, error) {
	req, err := httpclient.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return m.Do(req)
}

// Do records and returns the configured response for an arbitrary request.
func (m *MockClient) Do(req *httpclient.Request) (*httpclient.Response, error) {
	if req == nil {
		return nil, httpclient.ErrNilRequest
	}

	bodyBytes, err := readAll(req.Body)
	if err != nil {
		return nil, err
	}

	url := req.FullURL()
	m.Calls = append(m.Calls, Call{
		Method: req.Method,
		URL:    url,
		Body:   bodyBytes,
		Header: req.Header.Clone(),
	})

	resp := m.responseFor(req.Method, url)
	if resp.Error != nil {
		return nil, resp.Error
	}
	return toClientResponse(resp), nil
}

// Compile-time check: ensure MockClient implements the httpclient.Client interface.
var _ httpclient.Client = (*MockClient)(nil)

// ResponseBuilder helps configure a response for a specific method and URL.
type ResponseBuilder struct {
	client *MockClient
	key    string
}

// Return sets the response for the configured method and URL.
func (r *ResponseBuilder) Return(response *Response) *MockClient {
	if response.Header == nil {
		response.Header = make(http.Header)
	}
	r.client.responses[r.key] = response
	return r.client
}

// ReturnError configures an error response for the configured method and URL.
func (r *ResponseBuilder) ReturnError(err error) *MockClient {
	r.client.responses[r.key] = &Response{Error: err}
	return r.client
}
