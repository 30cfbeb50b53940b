// Package session carries the authenticated user through a request context.
package session

import "context"

type ctxKey struct{}

type Info struct {
	UserID    uint
	SessionID string
	Token     string
}

func WithInfo(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

func InfoFrom(ctx context.Context) (Info, bool) {
	info, ok := ctx.Value(ctxKey{}).(Info)
	if !ok || info.UserID == 0 {
		return Info{}, false
	}
	return info, true
}

func UserIDFrom(ctx context.Context) (uint, bool) {
	info, ok := InfoFrom(ctx)
	return info.UserID, ok
}
