/*
Package metrics provides a client for creating custom metrics through the
Tarmac host runtime.

Counter, Gauge, and Histogram handles are created once per name and cached on
the client, so hot paths such as per-request instrumentation can look a handle
up by name without re-validating it. Each emission is a protobuf payload sent
over a waPC host call.

Emission methods follow Prometheus-style ergonomics: Inc, Dec, Observe and
ObserveSince are best-effort and do not return errors. Marshal or host-call
failures are swallowed so instrumentation never changes caller control flow.
*/
package metrics
