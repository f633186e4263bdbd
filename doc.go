/*
Package sdk is the entry point for Tarmac WebAssembly functions that talk to
Riak.

New registers the function handler with waPC and captures a RuntimeConfig.
The same RuntimeConfig is handed to every capability client in this module
(httpclient, logging, metrics) and to the riak client built on top of them, so
all host calls issued by one function share a namespace. DefaultNamespace is
used when none is given.
*/
package sdk
