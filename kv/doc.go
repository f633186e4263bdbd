/*
Package kv provides a key-value view of a single Riak bucket for WebAssembly
guest functions.

The client maps Get, Set, Delete and Keys onto Riak object operations through
a riak.Client, so every request travels over the Tarmac httpclient host
capability. Riak statuses are translated here: a missing key is reported as
ErrKeyNotFound and any other unexpected status as ErrUnexpectedStatus.

Typical usage is to build a riak.Client, wrap it with New for one bucket, and
call Set, Get, Delete and Keys. Tests can back the riak.Client with the
httpclient mock to script Riak responses.
*/
package kv
