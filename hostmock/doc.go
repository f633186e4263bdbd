/*
Package hostmock provides a pretend waPC host for tests.

Every capability client in this module (httpclient, logging, metrics) accepts a
HostCall override. Plugging Mock.HostCall into it lets a test check what a
component sends to the Tarmac host without a real host running.

	m, _ := hostmock.New(hostmock.Config{
		ExpectedCapability: "httpclient",
		ExpectedFunction:   "call",
		PayloadValidator: func(p []byte) error {
			// Unmarshal and assert fields here
			return nil
		},
		Response: func() []byte { return encodedResponse },
	})

	client, _ := httpclient.New(httpclient.Config{HostCall: m.HostCall})

Behavior

  - If Fail is true and Error is set, HostCall returns that error.
  - If Fail is true and Error is nil, HostCall returns ErrOperationFailed.
  - Otherwise the Expected* fields that are set are enforced, PayloadValidator
    runs when provided, and Response (when set) supplies the return bytes.
  - Empty Expected* fields are wildcards, so one Mock can serve a riak client
    that logs, records metrics and issues HTTP calls in the same test.
  - Every call is recorded, including failed ones. Use Calls or CallsTo to
    assert on them.
*/
package hostmock
