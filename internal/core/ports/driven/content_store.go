package driven

import "context"

// ContentStore persists raw document bytes in the object store.
// The pipeline's write discipline is storage bytes before catalog row,
// so a catalog row never points at a missing blob.
type ContentStore interface {
	// Put writes an object into a bucket and returns its storage path.
	Put(ctx context.Context, bucket, object string, data []byte) (string, error)

	// Remove deletes an object. Used to compensate an orphaned blob when
	// the catalog insert after a successful Put fails.
	Remove(ctx context.Context, bucket, object string) error

	// Ping checks if the object store is reachable.
	Ping(ctx context.Context) error
}
