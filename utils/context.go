package utils

import (
	"context"

	"github.com/google/uuid"
)

type rqIDKey struct{}

func GetRequestIDFromCtx(ctx context.Context) string {
	rqID, ok := ctx.Value(rqIDKey{}).(string)
	if !ok {
		return ""
	}
	return rqID
}

// CreateCtxWithRqID returns a context carrying rqID, generating one when empty.
func CreateCtxWithRqID(ctx context.Context, rqID string) context.Context {
	if rqID == "" {
		rqID = uuid.NewString()
	}
	return context.WithValue(ctx, rqIDKey{}, rqID)
}

// EnsureRqID keeps an existing request id or attaches a fresh one.
func EnsureRqID(ctx context.Context) context.Context {
	if GetRequestIDFromCtx(ctx) != "" {
		return ctx
	}
	return CreateCtxWithRqID(ctx, "")
}
