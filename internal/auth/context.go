package auth

import (
	"context"

	"github.com/erazemk/findersfee/internal/model"
)

type contextKey struct{}

// WithIdentity attaches the signed-in identity to ctx.
func WithIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom returns the signed-in identity, or nil for anonymous requests.
func IdentityFrom(ctx context.Context) *model.Identity {
	id, _ := ctx.Value(contextKey{}).(*model.Identity)
	return id
}
