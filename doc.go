// Package lokalisesync provides a resilient Go client for exchanging
// localization files with the Lokalise translation-management API.
// It wraps the remote API with bounded retry, concurrent batch uploads,
// queued-process polling, and safe extraction of downloaded bundles.
//
// The module emphasizes predictable failure handling: batch uploads never
// abort because one file failed, polling never errors on a wall-clock
// timeout, and every archive entry is validated before any byte is written.
//
// Key features:
//   - Exponential backoff with jitter for rate-limited remote calls
//   - Bounded-concurrency fan-out with per-file result capture
//   - Queued-process tracking to a terminal state under a time budget
//   - Streaming zip extraction with path-traversal protection
//   - Progressive configuration through functional options
//
// Example usage:
//
//	client, err := lokalisesync.New("123.abc", token,
//	    lokalisesync.WithConcurrency(8),
//	)
//	if err != nil {
//	    return err
//	}
//
//	// Upload every translation file under ./locales
//	result, err := client.UploadDirectory(ctx, "./locales",
//	    lokalisesync.WithUploadPoll(true),
//	)
//	if err != nil {
//	    return err
//	}
package lokalisesync
