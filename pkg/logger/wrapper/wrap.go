package wrap

import (
	"context"
	"errors"
)

// errorWithLogCtx carries the LogCtx that was active where the error happened,
// so the boundary can log it with the origin's action and ids.
type errorWithLogCtx struct {
	err    error
	logCtx LogCtx
}

func (e *errorWithLogCtx) Error() string {
	return e.err.Error()
}

func (e *errorWithLogCtx) Unwrap() error {
	return e.err
}

// Error wraps an error with the current LogCtx from the context.
// When err already carries a LogCtx the outermost one wins in ErrorCtx.
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	return &errorWithLogCtx{
		err:    err,
		logCtx: FromContext(ctx),
	}
}

// ErrorCtx returns ctx with the LogCtx recovered from err, keeping the
// request id of ctx when the error did not record one.
func ErrorCtx(ctx context.Context, err error) context.Context {
	var e *errorWithLogCtx
	if !errors.As(err, &e) || e == nil {
		return ctx
	}

	lc := e.logCtx
	if lc.RequestID == "" {
		lc.RequestID = FromContext(ctx).RequestID
	}
	return context.WithValue(ctx, LogCtxKey, lc)
}
