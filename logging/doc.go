/*
Package logging offers a client for emitting log entries from Tarmac WebAssembly
functions to the host runtime.

Each level method (Info, Warn, Error, Debug, Trace) takes a format string and
arguments in the style of fmt.Printf and forwards the rendered line to the
host's "logging" capability. Config.Level drops entries below a threshold
before they cross the host boundary, and Config.Prefix tags every line so
output from a shared component, such as the Riak client, is easy to find.

Logging is best-effort: host failures are ignored and never reach the caller.
*/
package logging
