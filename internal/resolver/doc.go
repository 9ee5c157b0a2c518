// Package resolver produces the backend base URL used by the API client.
//
// In production mode the configured URL is returned as is. In development
// mode the resolver trusts a cached URL only after a fresh health probe,
// and otherwise discovers the backend:
//
//  1. infer the local IP from the dev-server host URI (default "localhost");
//  2. GET http://<local-ip>:<port>/health and probe each network interface
//     address the backend reports, returning the first healthy one;
//  3. fall back to http://<local-ip>:<port>/api untested.
//
// Discovered URLs are cached in secure storage. Every probe is bounded by
// the configured probe timeout and no resolver operation returns an error.
package resolver
