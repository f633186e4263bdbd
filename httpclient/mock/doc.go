/*
Package mock provides a lightweight mock implementation of the httpclient Client.

Tests configure responses per method and fully rendered URL (query included),
set a default response, and inspect the recorded Calls without touching the
waPC host. The riak and kv packages use it to assert the exact requests a
Riak operation produces.
*/
package mock
