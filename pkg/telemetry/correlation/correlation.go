// Package correlation carries the id that ties one request or scheduler run
// to its log lines, spans and activity entries.
package correlation

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type key struct{}

// New returns a fresh, lexically sortable id.
func New() string {
	return ulid.Make().String()
}

func ExtractCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(key{}).(string)
	return id
}

// ContextWithCorrelationID is a no-op for an empty id.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, key{}, id)
}

// EnsureCorrelationID keeps an existing id and mints one otherwise.
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	if ctx == nil {
		ctx = context.Background()
	}
	if id := ExtractCorrelationID(ctx); id != "" {
		return ctx, id
	}
	id := New()
	return context.WithValue(ctx, key{}, id), id
}
