/*
Package httpclient issues HTTP requests from Tarmac WebAssembly functions.

Requests are serialized as protobuf messages and handed to the host's
"httpclient" capability over waPC; the host performs the network call and
returns status, headers and body. Get, Post, Put and Delete are shortcuts over
Do. Request.Query is merged into the URL and encoded by Do, so callers that
build paths by hand never need to encode query strings themselves.

Host failures are reported with the sentinel errors of the root sdk package
(sdk.ErrHostCall, sdk.ErrHostError, sdk.ErrHostResponseInvalid) joined with the
underlying cause. An HTTP status code, including 4xx and 5xx, is never an
error: it is returned on the Response for the caller to inspect.
*/
package httpclient
