/*
Package riak is a client for the Riak HTTP API, usable from Tarmac WebAssembly
functions.

A Client turns operations into HTTP requests against a route table of path
templates. Each operation is a value of one of the *Op types (StoreObjectOp,
FetchObjectOp, QueryLinksOp, ...), executed with Client.Do; the Client also
offers one convenience method per operation.

	client, err := riak.New(riak.Config{DSN: "http://riak:8098"})
	if err != nil {
		return err
	}
	resp, err := client.StoreObject("users", "alice", []byte(`{"age":30}`), nil,
		http.Header{"Content-Type": {"application/json"}})

Responses are returned as received: a 404 or 500 is a response, not an
error. Only executor failures and client-side problems (unknown routes,
unresolved placeholders in strict mode, undecodable link-walking bodies) are
errors.

Path values are substituted as given. Callers that pass keys containing
reserved characters should set Config.EscapePathSegments.

Link walking returns a composite response whose Parts hold one response per
walk phase, each in turn split into one part per matched object.
*/
package riak
