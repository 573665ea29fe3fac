// Package httpclient provides the HTTP client implementations benchrace
// compares against each other.
//
// Two implementations with deliberately different connection behavior are
// available:
//   - [Pooled]: one shared client with a tuned transport, connections are
//     reused across requests.
//   - [Basic]: a fresh client with its own transport per dispatch, idle
//     connections closed after each request.
//
// # Construction
//
// Use [ForName] to resolve an implementation by its plan name:
//
//	client, err := httpclient.ForName("pooled", httpclient.Config{
//		ProxyURL: cfg.ProxyURL,
//	})
//
// # Payload Contract
//
// Every dispatch settles into a JSON payload suitable for
// [github.com/benchrace/benchrace/internal/outcome.Classify]: the HTTP
// status, an exception record when anything went wrong (Timeout, HttpError,
// HttpStatusError), and timing metadata carrying the request tag. The two
// implementations encode this shape differently on the wire, which is part
// of what the classifier is exercised against. The only hard failure, a Raw
// with Err set and no payload, is batch-level context cancellation.
package httpclient
