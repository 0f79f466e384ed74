package middleware

import "context"

type contextKey string

const (
	ctxRole       contextKey = "terminal_role"
	ctxSalesmanID contextKey = "salesman_id"
)

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func SalesmanIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSalesmanID).(string); ok {
		return v
	}
	return ""
}

// WithRole injects the terminal role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// WithSalesmanID injects the terminal identifier into the context.
func WithSalesmanID(ctx context.Context, salesmanID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSalesmanID, salesmanID)
}
