package logger

import "context"

type requestIDKey struct{}

// WithRequestID guarda el ID de correlación de la petición en el contexto.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID devuelve el ID de correlación del contexto, o "" si no hay.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
