package authsync

import "github.com/goliatone/go-logger/glog"

// DefaultLogger returns a structured logger named after the component.
// Callers that already carry a Logger should inject it instead.
func DefaultLogger(name string) Logger {
	return glog.NewLogger(
		glog.WithName(name),
		glog.WithAddSource(false),
	)
}
