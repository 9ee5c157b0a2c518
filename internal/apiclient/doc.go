// Package apiclient is the HTTP client shared by every API call.
//
// Each attempt targets the resolver's current base URL and carries the
// stored bearer token. A logical request is driven by a small state machine
// (initial -> retried_once -> failed|succeeded):
//
//   - a connection-level failure in development mode, on the first attempt,
//     forces an endpoint refresh and re-issues the request once;
//   - a 401 on a request that was not retried clears the stored token and
//     is returned to the caller;
//   - anything else is returned unchanged.
//
// Concurrent requests are independent; each may trigger its own refresh.
package apiclient
