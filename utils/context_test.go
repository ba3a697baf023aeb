package utils

import (
	"context"
	"testing"
)

func TestRequestID(t *testing.T) {
	if got := GetRequestIDFromCtx(context.Background()); got != "" {
		t.Errorf("GetRequestIDFromCtx(empty) = %q, want empty", got)
	}

	ctx := CreateCtxWithRqID(context.Background(), "rq-1")
	if got := GetRequestIDFromCtx(ctx); got != "rq-1" {
		t.Errorf("GetRequestIDFromCtx() = %q, want rq-1", got)
	}

	if got := GetRequestIDFromCtx(EnsureRqID(ctx)); got != "rq-1" {
		t.Errorf("EnsureRqID() replaced id with %q", got)
	}

	generated := GetRequestIDFromCtx(EnsureRqID(context.Background()))
	if len(generated) != 36 {
		t.Errorf("generated rqID = %q, want uuid", generated)
	}
}
