package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync/atomic"

	"github.com/tarmac-project/riak-sdk/httpclient"
	"github.com/tarmac-project/riak-sdk/riak"
)

const defaultContentType = "application/octet-stream"

// KV is a minimal key-value store.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

// Config configures a Riak-backed KV.
type Config struct {
	// Riak is the client used for every request. Required.
	Riak *riak.Client

	// Bucket holds the keys. Required.
	Bucket string

	// ContentType is stored with each value. Defaults to application/octet-stream.
	ContentType string
}

var (
	// ErrInvalidKey is returned for an empty key.
	ErrInvalidKey = errors.New("key is invalid")

	// ErrInvalidValue is returned for a nil value.
	ErrInvalidValue = errors.New("value is invalid")

	// ErrInvalidConfig is returned by New when the client or bucket is missing.
	ErrInvalidConfig = errors.New("kv config is invalid")

	// ErrKeyNotFound is returned when Riak has no object for the key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrUnexpectedStatus is returned when Riak answers with a status the
	// operation does not accept.
	ErrUnexpectedStatus = errors.New("unexpected riak status")

	// ErrDecodeKeys wraps failures while decoding a key listing.
	ErrDecodeKeys = errors.New("failed to decode key listing")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("kv client is closed")
)

type bucketKV struct {
	riak        *riak.Client
	bucket      string
	contentType string
	closed      atomic.Bool
}

// New returns a KV over cfg.Bucket.
func New(cfg Config) (KV, error) {
	if cfg.Riak == nil || cfg.Bucket == "" {
		return nil, ErrInvalidConfig
	}
	if cfg.ContentType == "" {
		cfg.ContentType = defaultContentType
	}
	return &bucketKV{riak: cfg.Riak, bucket: cfg.Bucket, contentType: cfg.ContentType}, nil
}

// Close marks the client closed. It never fails.
func (c *bucketKV) Close() error {
	c.closed.Store(true)
	return nil
}

// Get returns the value stored under key.
func (c *bucketKV) Get(key string) ([]byte, error) {
	if err := c.check(key); err != nil {
		return nil, err
	}

	resp, err := c.riak.Do(riak.FetchObjectOp{Bucket: c.bucket, Key: key})
	if err != nil {
		return nil, err
	}
	if err := status(resp, http.StatusOK); err != nil {
		return nil, err
	}

	value, err := resp.ReadBody()
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Set stores value under key, replacing any existing value.
func (c *bucketKV) Set(key string, value []byte) error {
	if err := c.check(key); err != nil {
		return err
	}
	if value == nil {
		return ErrInvalidValue
	}

	resp, err := c.riak.Do(riak.StoreObjectOp{
		Bucket:      c.bucket,
		Key:         key,
		Content:     value,
		ContentType: c.contentType,
	})
	if err != nil {
		return err
	}
	return status(resp, http.StatusOK, http.StatusCreated, http.StatusNoContent)
}

// Delete removes key.
func (c *bucketKV) Delete(key string) error {
	if err := c.check(key); err != nil {
		return err
	}

	resp, err := c.riak.Do(riak.DeleteObjectOp{Bucket: c.bucket, Key: key})
	if err != nil {
		return err
	}
	return status(resp, http.StatusOK, http.StatusNoContent)
}

// Keys lists every key in the bucket in lexical order.
func (c *bucketKV) Keys() ([]string, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	resp, err := c.riak.Do(riak.ListBucketKeysOp{Bucket: c.bucket})
	if err != nil {
		return nil, err
	}
	if err := status(resp, http.StatusOK); err != nil {
		return nil, err
	}

	body, err := resp.ReadBody()
	if err != nil {
		return nil, errors.Join(ErrDecodeKeys, err)
	}

	var listing struct {
		Keys []string `json:"keys"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, errors.Join(ErrDecodeKeys, err)
	}

	keys := listing.Keys
	if keys == nil {
		keys = []string{}
	}
	sort.Strings(keys)
	return keys, nil
}

func (c *bucketKV) check(key string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}

// status maps a Riak response onto the KV error set.
func status(resp *httpclient.Response, accepted ...int) error {
	for _, code := range accepted {
		if resp.StatusCode == code {
			return nil
		}
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrKeyNotFound
	}
	return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, resp.Status)
}
