package common

import "context"

type contextKey string

const (
	operatorIDKey   contextKey = "operatorID"
	operatorRoleKey contextKey = "operatorRole"
)

// WithOperator stores the authenticated operator's identity in the context.
func WithOperator(ctx context.Context, id, role string) context.Context {
	ctx = context.WithValue(ctx, operatorIDKey, id)
	return context.WithValue(ctx, operatorRoleKey, role)
}

// OperatorID extracts the operator id set by the auth middleware.
func OperatorID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(operatorIDKey).(string)
	return id, ok && id != ""
}

// OperatorRole extracts the operator role set by the auth middleware.
func OperatorRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(operatorRoleKey).(string)
	return role, ok && role != ""
}
