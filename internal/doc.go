// Package internal contains private implementation details for the Lokalise
// sync module. These packages are not intended for external use and may
// change without notice.
//
// The internal packages are organized as follows:
//   - api: remote API boundary and its REST implementation
//   - retry: bounded exponential backoff with jitter
//   - fanout: order-preserving bounded concurrency
//   - poller: process polling with a wall-clock budget
//   - scanner: local file collection with glob filtering
//   - archive: safe bundle extraction
//   - langid: content-based language detection
//   - pool: memory management optimizations
package internal
