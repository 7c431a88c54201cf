package middleware

import "context"

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxClubID   contextKey = "club_id"
	ctxTerminal contextKey = "terminal"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func ClubIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxClubID).(int64); ok {
		return v
	}
	return 0
}

func TerminalFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxTerminal).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the operator identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithClubID injects the club identifier into the context for downstream handlers.
func WithClubID(ctx context.Context, clubID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClubID, clubID)
}

// WithTerminal injects the terminal identifier into the context.
func WithTerminal(ctx context.Context, terminal string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTerminal, terminal)
}
