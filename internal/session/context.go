package session

import "context"

type recordContextKey struct{}

// ContextWithRecord stores the identity record in context.
func ContextWithRecord(ctx context.Context, rec *Record) context.Context {
	return context.WithValue(ctx, recordContextKey{}, rec)
}

// RecordFromContext extracts the identity record from context.
func RecordFromContext(ctx context.Context) *Record {
	rec, _ := ctx.Value(recordContextKey{}).(*Record)
	return rec
}

// FromContext derives the resolved session view for the current request.
func FromContext(ctx context.Context) Session {
	return RecordFromContext(ctx).Snapshot()
}
