package dedup

import (
	"time"

	"go.uber.org/zap"
)

// DefaultTTL matches the inbound transport's typical retry window.
const DefaultTTL = 600 * time.Second

// Store is the backing state for the deduplicator: a check-and-set mapping
// with expiry. CheckAndSet must be atomic so two concurrent deliveries of the
// same key cannot both pass; it records key at now unless a live entry
// (younger than ttl) already exists, and reports whether one did. Expired
// entries are reaped lazily during the call.
type Store interface {
	CheckAndSet(key string, now time.Time, ttl time.Duration) (seen bool, err error)
}

// Deduplicator decides whether an inbound event was already processed.
type Deduplicator struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// New creates a deduplicator over the given store. A non-positive ttl falls
// back to DefaultTTL.
func New(store Store, ttl time.Duration, logger *zap.Logger) *Deduplicator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Deduplicator{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// IsDuplicate reports whether eventID was already seen within the TTL window,
// recording it as seen when it was not. Events without an identity key and
// store failures are treated as never-duplicate: dropping a real expense is
// worse than letting a rare double-send through.
func (d *Deduplicator) IsDuplicate(eventID string) bool {
	if eventID == "" {
		return false
	}

	seen, err := d.store.CheckAndSet(eventID, d.now(), d.ttl)
	if err != nil {
		d.logger.Warn("Dedup store check failed, treating event as new",
			zap.String("event_id", eventID),
			zap.Error(err))
		return false
	}
	return seen
}
