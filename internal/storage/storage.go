package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ObjectStore is a durable, link-addressable destination for relayed files.
// Upload stores content under name and returns an object identifier;
// PublicLink creates or reuses an anyone-with-link read reference for it.
type ObjectStore interface {
	Upload(ctx context.Context, name, contentType string, content []byte) (string, error)
	PublicLink(ctx context.Context, objectID string) (string, error)
}

// ObjectName derives a store-unique object name from a display name. The
// nanosecond timestamp prefix keeps colliding display names from unrelated
// uploads apart, so an existing object is never overwritten.
func ObjectName(displayName string, now time.Time) string {
	base := filepath.Base(strings.TrimSpace(displayName))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "attachment"
	}
	return fmt.Sprintf("%d_%s", now.UnixNano(), base)
}
