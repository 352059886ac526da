// Package runid carries the identifier of a single job run through a context.
package runid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the message header name used to propagate the run id.
const Header = "X-Run-ID"

type ctxKey struct{}

// New generates a time-ordered run id.
func New() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the run id stored in ctx, if any.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
