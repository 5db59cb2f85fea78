package relay

import (
	"context"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/sgarlapa/expense-ledger-bot/internal/slack"
	"github.com/sgarlapa/expense-ledger-bot/internal/storage"
)

// Fetcher retrieves attachment bytes from the inbound transport. It returns
// the content together with the transport-reported content type, which may
// be empty.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// Relay copies a file from the inbound transport to the durable object store
// and returns a shareable link. Every failure past construction degrades to
// an empty reference; records are still produced without one.
type Relay struct {
	fetcher Fetcher
	store   storage.ObjectStore
	now     func() time.Time
	logger  *zap.Logger
}

// New creates an attachment relay.
func New(fetcher Fetcher, store storage.ObjectStore, logger *zap.Logger) *Relay {
	return &Relay{
		fetcher: fetcher,
		store:   store,
		now:     time.Now,
		logger:  logger,
	}
}

// Relay downloads the attachment, republishes it to the store and returns the
// public link, or "" when any step fails.
func (r *Relay) Relay(ctx context.Context, att slack.Attachment) string {
	if att.DownloadURL == "" {
		return ""
	}

	content, contentType, err := r.fetcher.Fetch(ctx, att.DownloadURL)
	if err != nil {
		r.logger.Warn("Attachment download failed, record will carry no reference",
			zap.String("name", att.Name),
			zap.Error(err))
		return ""
	}

	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(content).String()
	}

	name := storage.ObjectName(att.Name, r.now())
	objectID, err := r.store.Upload(ctx, name, contentType, content)
	if err != nil {
		r.logger.Warn("Attachment upload failed, record will carry no reference",
			zap.String("name", name),
			zap.Error(err))
		return ""
	}

	link, err := r.store.PublicLink(ctx, objectID)
	if err != nil {
		r.logger.Warn("Attachment link creation failed, record will carry no reference",
			zap.String("object_id", objectID),
			zap.Error(err))
		return ""
	}

	r.logger.Info("Attachment relayed",
		zap.String("name", name),
		zap.String("link", link))

	return link
}
