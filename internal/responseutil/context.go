// Package responseutil carries the request's error writer through the context.
// It sits below response so packages that response imports can still reach it.
package responseutil

import (
	"context"
	"net/http"
)

// ErrorWriter renders an error as the API envelope
type ErrorWriter interface {
	WriteError(w http.ResponseWriter, r *http.Request, err error)
}

type builderKey struct{}

// WithBuilder returns a context carrying the writer
func WithBuilder(ctx context.Context, builder ErrorWriter) context.Context {
	return context.WithValue(ctx, builderKey{}, builder)
}

// Builder returns the writer stored by WithBuilder, or nil
func Builder(ctx context.Context) ErrorWriter {
	builder, _ := ctx.Value(builderKey{}).(ErrorWriter)
	return builder
}
