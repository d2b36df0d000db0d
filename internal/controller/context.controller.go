package controller

import (
	"context"

	"golang.org/x/time/rate"
)

type contextKey int

const (
	connIdCtxKey contextKey = iota
	limiterCtxKey
)

func (c controller) getConnIdFromCtx(ctx context.Context) string {
	connId, ok := ctx.Value(connIdCtxKey).(string)
	if !ok {
		return ""
	}

	return connId
}

func (c controller) getLimiterFromCtx(ctx context.Context) *rate.Limiter {
	limiter, _ := ctx.Value(limiterCtxKey).(*rate.Limiter)
	return limiter
}
