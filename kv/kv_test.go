package kv_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/tarmac-project/riak-sdk"
	"github.com/tarmac-project/riak-sdk/hostmock"
	"github.com/tarmac-project/riak-sdk/httpclient"
	httpmock "github.com/tarmac-project/riak-sdk/httpclient/mock"
	kvpkg "github.com/tarmac-project/riak-sdk/kv"
	"github.com/tarmac-project/riak-sdk/riak"
)

const dsn = "http://riak.local:8098"

// fakeRiak serves one bucket's object and key-listing endpoints from memory.
type fakeRiak struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	types   map[string]string
}

func newFakeRiak(bucket string, seed map[string][]byte) *fakeRiak {
	f := &fakeRiak{bucket: bucket, objects: map[string][]byte{}, types: map[string]string{}}
	for k, v := range seed {
		f.objects[k] = v
	}
	return f
}

func reply(code int, body []byte) *httpclient.Response {
	r := &httpclient.Response{StatusCode: code, Status: http.StatusText(code), Header: make(http.Header)}
	if len(body) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(body))
	}
	return r
}

func (f *fakeRiak) Get(string) (*httpclient.Response, error) { return nil, errors.New("unused") }
func (f *fakeRiak) Post(string, string, io.Reader) (*httpclient.Response, error) {
	return nil, errors.New("unused")
}
func (f *fakeRiak) Put(string, string, io.Reader) (*httpclient.Response, error) {
	return nil, errors.New("unused")
}
func (f *fakeRiak) Delete(string) (*httpclient.Response, error) { return nil, errors.New("unused") }

func (f *fakeRiak) Do(req *httpclient.Request) (*httpclient.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := "/buckets/" + f.bucket + "/keys"
	if !strings.HasPrefix(req.URL.Path, prefix) {
		return reply(http.StatusBadRequest, nil), nil
	}
	key := strings.TrimPrefix(strings.TrimPrefix(req.URL.Path, prefix), "/")

	switch {
	case key == "" && req.Method == http.MethodGet:
		listing := struct {
			Keys []string `json:"keys"`
		}{Keys: []string{}}
		for k := range f.objects {
			listing.Keys = append(listing.Keys, k)
		}
		b, _ := json.Marshal(listing)
		return reply(http.StatusOK, b), nil
	case req.Method == http.MethodGet:
		v, ok := f.objects[key]
		if !ok {
			return reply(http.StatusNotFound, []byte("not found\n")), nil
		}
		return reply(http.StatusOK, v), nil
	case req.Method == http.MethodPut:
		var body []byte
		if req.Body != nil {
			body, _ = io.ReadAll(req.Body)
		}
		f.objects[key] = body
		f.types[key] = req.Header.Get("Content-Type")
		return reply(http.StatusNoContent, nil), nil
	case req.Method == http.MethodDelete:
		if _, ok := f.objects[key]; !ok {
			return reply(http.StatusNotFound, nil), nil
		}
		delete(f.objects, key)
		return reply(http.StatusNoContent, nil), nil
	}
	return reply(http.StatusMethodNotAllowed, nil), nil
}

func newRiak(t testing.TB, hc httpclient.Client) *riak.Client {
	t.Helper()
	c, err := riak.New(riak.Config{
		DSN:        dsn,
		HTTPClient: hc,
		HostCall:   func(string, string, string, []byte) ([]byte, error) { return nil, nil },
	})
	require.NoError(t, err)
	return c
}

// InterfaceTestCase defines a test case structure for KV interface operations.
type InterfaceTestCase struct {
	Name           string
	Key            string
	Value          []byte
	ExpectedErrors map[string]error
}

func TestKVClient(t *testing.T) {
	backend := newFakeRiak("things", nil)
	kv, err := kvpkg.New(kvpkg.Config{Riak: newRiak(t, backend), Bucket: "things"})
	require.NoError(t, err)
	defer kv.Close() //nolint:errcheck

	tt := []InterfaceTestCase{
		{
			Name:  "Valid Key/Value",
			Key:   "key1",
			Value: []byte("boring"),
			ExpectedErrors: map[string]error{
				"SET":    nil,
				"GET":    nil,
				"DELETE": nil,
			},
		},
		{
			Name:  "Empty Key",
			Key:   "",
			Value: []byte("less_boring"),
			ExpectedErrors: map[string]error{
				"SET":    kvpkg.ErrInvalidKey,
				"GET":    kvpkg.ErrInvalidKey,
				"DELETE": kvpkg.ErrInvalidKey,
			},
		},
		{
			Name:  "Empty Value",
			Key:   "key3",
			Value: nil,
			ExpectedErrors: map[string]error{
				"SET":    kvpkg.ErrInvalidValue,
				"GET":    kvpkg.ErrKeyNotFound,
				"DELETE": kvpkg.ErrKeyNotFound,
			},
		},
		{
			Name:  "Zero Length Value",
			Key:   "key4",
			Value: []byte{},
			ExpectedErrors: map[string]error{
				"SET":    nil,
				"GET":    nil,
				"DELETE": nil,
			},
		},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			t.Run("SET", func(t *testing.T) {
				err := kv.Set(tc.Key, tc.Value)
				require.ErrorIs(t, err, tc.ExpectedErrors["SET"])
				if tc.ExpectedErrors["SET"] == nil {
					require.NoError(t, err)
				}
			})

			t.Run("GET", func(t *testing.T) {
				value, err := kv.Get(tc.Key)
				if tc.ExpectedErrors["GET"] != nil {
					require.ErrorIs(t, err, tc.ExpectedErrors["GET"])
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tc.Value, value)
			})

			t.Run("DELETE", func(t *testing.T) {
				err := kv.Delete(tc.Key)
				if tc.ExpectedErrors["DELETE"] != nil {
					require.ErrorIs(t, err, tc.ExpectedErrors["DELETE"])
					return
				}
				require.NoError(t, err)
			})
		})
	}

	t.Run("KEYS", func(t *testing.T) {
		backend := newFakeRiak("things", map[string][]byte{
			"e": []byte("5"),
			"a": []byte("1"),
			"c": []byte("3"),
			"b": []byte("2"),
			"d": []byte("4"),
		})
		kv, err := kvpkg.New(kvpkg.Config{Riak: newRiak(t, backend), Bucket: "things"})
		require.NoError(t, err)

		keys, err := kv.Keys()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, keys)
	})

	t.Run("content type", func(t *testing.T) {
		require.NoError(t, kv.Set("typed", []byte("x")))
		assert.Equal(t, "application/octet-stream", backend.types["typed"])

		custom, err := kvpkg.New(kvpkg.Config{Riak: newRiak(t, backend), Bucket: "things", ContentType: "application/json"})
		require.NoError(t, err)
		require.NoError(t, custom.Set("json", []byte(`{}`)))
		assert.Equal(t, "application/json", backend.types["json"])
	})
}

func TestNewValidation(t *testing.T) {
	c := newRiak(t, httpmock.New(httpmock.Config{}))

	tt := []struct {
		name string
		cfg  kvpkg.Config
	}{
		{"missing client", kvpkg.Config{Bucket: "b"}},
		{"missing bucket", kvpkg.Config{Riak: c}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			_, err := kvpkg.New(tc.cfg)
			require.ErrorIs(t, err, kvpkg.ErrInvalidConfig)
		})
	}
}

func TestStatusMapping(t *testing.T) {
	tt := []struct {
		name    string
		method  string
		url     string
		status  int
		body    string
		call    func(kvpkg.KV) error
		wantErr error
	}{
		{
			name: "get sibling conflict", method: http.MethodGet, url: dsn + "/buckets/b/keys/k",
			status: http.StatusMultipleChoices,
			call:   func(kv kvpkg.KV) error { _, err := kv.Get("k"); return err },
			wantErr: kvpkg.ErrUnexpectedStatus,
		},
		{
			name: "set server error", method: http.MethodPut, url: dsn + "/buckets/b/keys/k",
			status:  http.StatusInternalServerError,
			call:    func(kv kvpkg.KV) error { return kv.Set("k", []byte("v")) },
			wantErr: kvpkg.ErrUnexpectedStatus,
		},
		{
			name: "set created", method: http.MethodPut, url: dsn + "/buckets/b/keys/k",
			status: http.StatusCreated,
			call:   func(kv kvpkg.KV) error { return kv.Set("k", []byte("v")) },
		},
		{
			name: "delete ok", method: http.MethodDelete, url: dsn + "/buckets/b/keys/k",
			status: http.StatusOK,
			call:   func(kv kvpkg.KV) error { return kv.Delete("k") },
		},
		{
			name: "keys not json", method: http.MethodGet, url: dsn + "/buckets/b/keys?keys=true",
			status: http.StatusOK, body: "nope",
			call:    func(kv kvpkg.KV) error { _, err := kv.Keys(); return err },
			wantErr: kvpkg.ErrDecodeKeys,
		},
		{
			name: "keys missing bucket", method: http.MethodGet, url: dsn + "/buckets/b/keys?keys=true",
			status:  http.StatusNotFound,
			call:    func(kv kvpkg.KV) error { _, err := kv.Keys(); return err },
			wantErr: kvpkg.ErrKeyNotFound,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			hc := httpmock.New(httpmock.Config{})
			hc.On(tc.method, tc.url).Return(&httpmock.Response{StatusCode: tc.status, Body: []byte(tc.body)})

			kv, err := kvpkg.New(kvpkg.Config{Riak: newRiak(t, hc), Bucket: "b"})
			require.NoError(t, err)

			err = tc.call(kv)
			if tc.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.wantErr)
			}
			require.Len(t, hc.Calls, 1)
		})
	}
}

func TestEmptyKeyListing(t *testing.T) {
	hc := httpmock.New(httpmock.Config{})
	hc.On(http.MethodGet, dsn+"/buckets/b/keys?keys=true").Return(&httpmock.Response{StatusCode: http.StatusOK, Body: []byte(`{"keys":[]}`)})

	kv, err := kvpkg.New(kvpkg.Config{Riak: newRiak(t, hc), Bucket: "b"})
	require.NoError(t, err)

	keys, err := kv.Keys()
	require.NoError(t, err)
	assert.NotNil(t, keys)
	assert.Empty(t, keys)
}

func TestClosed(t *testing.T) {
	hc := httpmock.New(httpmock.Config{})
	kv, err := kvpkg.New(kvpkg.Config{Riak: newRiak(t, hc), Bucket: "b"})
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	_, err = kv.Get("k")
	require.ErrorIs(t, err, kvpkg.ErrClosed)
	require.ErrorIs(t, kv.Set("k", []byte("v")), kvpkg.ErrClosed)
	require.ErrorIs(t, kv.Delete("k"), kvpkg.ErrClosed)
	_, err = kv.Keys()
	require.ErrorIs(t, err, kvpkg.ErrClosed)
	assert.Empty(t, hc.Calls)
}

func TestHostFailure(t *testing.T) {
	host, err := hostmock.New(hostmock.Config{Fail: true, Error: errors.New("host failure")})
	require.NoError(t, err)

	c, err := riak.New(riak.Config{DSN: dsn, HostCall: host.HostCall})
	require.NoError(t, err)

	kv, err := kvpkg.New(kvpkg.Config{Riak: c, Bucket: "b"})
	require.NoError(t, err)

	_, err = kv.Get("k")
	require.ErrorIs(t, err, sdk.ErrHostCall)
	assert.Len(t, host.CallsTo("httpclient"), 1)
}
