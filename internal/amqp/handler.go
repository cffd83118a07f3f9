package amqp

import (
	"context"

	"fintrack/internal/cache"
	"fintrack/internal/log"
)

// Invalidator is the part of cache.Manager a consumer needs.
type Invalidator interface {
	Invalidate(ctx context.Context, key cache.Key)
}

// InvalidationHandler applies a remote message to the local caches. Keys this
// build does not know are skipped so mixed-version fleets keep working.
func InvalidationHandler(inv Invalidator) func(context.Context, *InvalidationMessage) error {
	return func(ctx context.Context, msg *InvalidationMessage) error {
		for _, raw := range msg.Keys {
			key, ok := cache.ParseKey(raw)
			if !ok {
				log.FromContext(ctx).WarnContext(ctx, "Ignoring unknown cache key", log.FieldCacheKey, raw, "source", msg.Source)
				continue
			}
			inv.Invalidate(ctx, key)
		}
		return nil
	}
}
