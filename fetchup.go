// Package fetchup provides a top-level convenience entry point for issuing
// concurrent HTTP requests through a process-wide default dispatcher.
//
// Usage:
//
//	import "github.com/BaSui01/fetchup"
//
//	env, err := fetchup.Request[map[string]any](ctx, fetchup.URL("https://example.com/a"))
//	envs, err := fetchup.RequestAll[map[string]any](ctx, []fetchup.Descriptor{
//		fetchup.URL("https://example.com/a"),
//		fetchup.NewRequest("https://example.com/b", fetchup.Options{Method: "POST"}),
//	})
//	fetchup.Abort()
//
// This is a thin wrapper around [dispatch]; construct a [dispatch.Dispatcher]
// directly when you need an isolated cancellation domain.
package fetchup

import (
	"context"
	"sync"

	"github.com/BaSui01/fetchup/config"
	"github.com/BaSui01/fetchup/dispatch"
)

// Descriptor specifies one request. See [dispatch.Descriptor].
type Descriptor = dispatch.Descriptor

// Options are the transport options of a structured descriptor.
type Options = dispatch.Options

var (
	defaultOnce       sync.Once
	defaultDispatcher *dispatch.Dispatcher
)

// Default returns the process-wide dispatcher, creating it on first use.
func Default() *dispatch.Dispatcher {
	defaultOnce.Do(func() {
		defaultDispatcher = dispatch.New(config.DefaultDispatcherConfig(), nil)
	})
	return defaultDispatcher
}

// URL returns a descriptor for a default GET request.
var URL = dispatch.URL

// NewRequest returns a structured descriptor.
var NewRequest = dispatch.Request

// Request dispatches one descriptor on the default dispatcher.
func Request[T any](ctx context.Context, desc Descriptor) (dispatch.Envelope[T], error) {
	return dispatch.Dispatch[T](ctx, Default(), desc)
}

// RequestAll dispatches descs concurrently on the default dispatcher and
// returns one envelope per descriptor, in input order.
func RequestAll[T any](ctx context.Context, descs []Descriptor) ([]dispatch.Envelope[T], error) {
	return dispatch.DispatchAll[T](ctx, Default(), descs)
}

// Abort cancels every request in flight on the default dispatcher.
func Abort() {
	Default().Abort()
}
