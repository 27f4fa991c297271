// Package logstream provides line feeds for the watcher.
//
// A Feed yields one raw line per ReadLine call, including its trailing
// newline, the way a blocking readline does. An empty string means the feed
// has ended and will never produce another line.
//
// Stream runs the macOS unified log as a subprocess:
//   - `/usr/bin/log stream [--style S] --predicate P`, or an override command
//   - its own process group, so signals reach the whole tree
//   - SIGINT on Close, SIGKILL if it does not exit in time
//   - stderr forwarded to the logger
//
// ReaderFeed wraps any io.Reader and is used for replaying captured logs.
package logstream
