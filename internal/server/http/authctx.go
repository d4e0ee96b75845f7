package httpserver

import (
	"context"

	"github.com/and161185/bloglist/internal/model"
)

type ctxKey string

const identityKey ctxKey = "bl.identity"

// WithIdentity stores the resolved caller identity in context.
func WithIdentity(ctx context.Context, who model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, who)
}

// IdentityFromCtx fetches the caller identity from context.
func IdentityFromCtx(ctx context.Context) (model.Identity, bool) {
	who, ok := ctx.Value(identityKey).(model.Identity)
	return who, ok
}
